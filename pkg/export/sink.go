package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user declines or interrupts an overwrite.
var ErrAborted = errors.New("export aborted")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// SurveyConfirmer asks on the controlling terminal.
type SurveyConfirmer struct{}

// Confirm implements Confirmer.
func (SurveyConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var ok bool
	prompt := &survey.Confirm{Message: message}
	if err := survey.AskOne(prompt, &ok); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, ErrAborted
		}
		return false, err
	}
	return ok, nil
}

// FileSink writes artifacts into a directory.
type FileSink struct {
	Dir string
	// Force overwrites existing files without asking.
	Force bool
	// Confirm is asked before overwriting. Nil means SurveyConfirmer.
	Confirm Confirmer
}

// Path returns where an artifact will be written.
func (s *FileSink) Path(a *Artifact) string {
	return filepath.Join(s.Dir, a.Name)
}

// Save writes the artifact through a temporary file that is always removed.
func (s *FileSink) Save(ctx context.Context, a *Artifact) error {
	path := s.Path(a)

	if _, err := os.Stat(path); err == nil && !s.Force {
		confirm := s.Confirm
		if confirm == nil {
			confirm = SurveyConfirmer{}
		}
		ok, err := confirm.Confirm(ctx, fmt.Sprintf("%s already exists. Overwrite?", path))
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, "."+a.Name+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriterSink streams artifact content to W.
type WriterSink struct {
	W io.Writer
}

// Save implements Sink.
func (s WriterSink) Save(_ context.Context, a *Artifact) error {
	_, err := s.W.Write(a.Content)
	return err
}
