package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/bpmngen/pkg/domain"
)

const (
	metaFile   = "latest.json"
	markupFile = "latest.bpmn"
)

type metadata struct {
	Token      uint64    `json:"token"`
	Name       string    `json:"name,omitempty"`
	CompiledAt time.Time `json:"compiled_at"`
}

// Store implements ports.DiagramStore on the local filesystem.
// The markup is kept in its own file so it is stored byte-for-byte.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".bpmngen".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = ".bpmngen"
	}
	return &Store{BasePath: basePath}
}

// Save writes the markup first and the metadata last, each through a rename,
// so a reader never sees metadata pointing at a partially written diagram.
func (s *Store) Save(ctx context.Context, diagram *domain.Diagram) error {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	if err := writeAtomic(filepath.Join(s.BasePath, markupFile), []byte(diagram.Markup)); err != nil {
		return fmt.Errorf("failed to write diagram: %w", err)
	}

	meta, err := json.MarshalIndent(metadata{
		Token:      diagram.Token,
		Name:       diagram.Name,
		CompiledAt: diagram.CompiledAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagram metadata: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.BasePath, metaFile), meta); err != nil {
		return fmt.Errorf("failed to write diagram metadata: %w", err)
	}
	return nil
}

// Latest loads the stored diagram.
func (s *Store) Latest(ctx context.Context) (*domain.Diagram, error) {
	raw, err := os.ReadFile(filepath.Join(s.BasePath, metaFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNoDiagram
		}
		return nil, fmt.Errorf("failed to read diagram metadata: %w", err)
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagram metadata: %w", err)
	}

	markup, err := os.ReadFile(filepath.Join(s.BasePath, markupFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNoDiagram
		}
		return nil, fmt.Errorf("failed to read diagram: %w", err)
	}

	return &domain.Diagram{
		Token:      meta.Token,
		Name:       meta.Name,
		Markup:     string(markup),
		CompiledAt: meta.CompiledAt,
	}, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
