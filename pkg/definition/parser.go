package definition

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The raw types mirror the authoring format and remember where each entry
// started so that issues can point back at the text.

type rawDefinition struct {
	Name  string    `yaml:"name"`
	Pools []rawPool `yaml:"pools"`
}

type rawPool struct {
	ID    string    `yaml:"id"`
	Name  string    `yaml:"name"`
	Lanes []rawLane `yaml:"lanes"`
	Flows []rawFlow `yaml:"flows"`
	line  int
}

func (p *rawPool) UnmarshalYAML(n *yaml.Node) error {
	type plain rawPool
	if err := n.Decode((*plain)(p)); err != nil {
		return err
	}
	p.line = n.Line
	return nil
}

type rawLane struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Elements []rawElement `yaml:"elements"`
	line     int
}

func (l *rawLane) UnmarshalYAML(n *yaml.Node) error {
	type plain rawLane
	if err := n.Decode((*plain)(l)); err != nil {
		return err
	}
	l.line = n.Line
	return nil
}

type rawElement struct {
	ID         string         `yaml:"id"`
	Type       string         `yaml:"type"`
	Name       string         `yaml:"name"`
	Attributes map[string]any `yaml:",inline"`
	line       int
}

func (e *rawElement) UnmarshalYAML(n *yaml.Node) error {
	type plain rawElement
	if err := n.Decode((*plain)(e)); err != nil {
		return err
	}
	e.line = n.Line
	return nil
}

type rawFlow struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Source    string `yaml:"source"`
	Target    string `yaml:"target"`
	Condition string `yaml:"condition"`
	line      int
}

func (f *rawFlow) UnmarshalYAML(n *yaml.Node) error {
	type plain rawFlow
	if err := n.Decode((*plain)(f)); err != nil {
		return err
	}
	f.line = n.Line
	return nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// parse decodes raw text into the raw model. Any failure is a *SyntaxError.
func parse(raw []byte) (*rawDefinition, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Message: "definition is empty"}
		}
		return nil, syntaxError(err)
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, &SyntaxError{Message: "definition must be a mapping", Line: doc.Line}
	}

	var def rawDefinition
	if err := doc.Decode(&def); err != nil {
		return nil, syntaxError(err)
	}
	return &def, nil
}

func syntaxError(err error) *SyntaxError {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	se := &SyntaxError{Message: msg}
	if m := yamlLine.FindStringSubmatch(msg); m != nil {
		se.Line, _ = strconv.Atoi(m[1])
	}
	return se
}
