// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompts loads the prompt catalog: a YAML file mapping prompt
// names to a system-text/template-text pair. The catalog is read once at
// startup and is read-only afterwards, so it is safe to share across
// workers.
package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// Prompt names used by the pipeline.
const (
	QueryPrompt         = "pubmed_query"
	RelevancePrompt     = "relevance"
	SummarizationPrompt = "summarization"
	SynthesisPrompt     = "synthesis"
)

// Parts of a prompt entry.
const (
	PartSystem   = "system"
	PartTemplate = "template"
)

type entry struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
}

type catalogFile struct {
	Prompts map[string]entry `yaml:"prompts"`
}

// Catalog is an immutable name → (system, template) lookup.
type Catalog struct {
	prompts map[string]entry
}

// Load reads and parses the catalog file. An unreadable or malformed
// file wraps types.ErrConfiguration: the service cannot run without its
// prompts.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading prompt catalog %s: %v", types.ErrConfiguration, path, err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: parsing prompt catalog %s: %v", types.ErrConfiguration, path, err)
	}
	if len(cf.Prompts) == 0 {
		return nil, fmt.Errorf("%w: prompt catalog %s contains no prompts", types.ErrConfiguration, path)
	}

	return &Catalog{prompts: cf.Prompts}, nil
}

// Get returns the requested part of a named prompt. An unknown name or
// part wraps types.ErrConfiguration.
func (c *Catalog) Get(name, part string) (string, error) {
	e, ok := c.prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown prompt %q", types.ErrConfiguration, name)
	}
	switch part {
	case PartSystem:
		return e.System, nil
	case PartTemplate:
		return e.Template, nil
	default:
		return "", fmt.Errorf("%w: unknown prompt part %q for %q", types.ErrConfiguration, part, name)
	}
}

// Render looks up a prompt and executes its user template with data,
// returning the system text and the rendered user text.
func (c *Catalog) Render(name string, data any) (system, user string, err error) {
	system, err = c.Get(name, PartSystem)
	if err != nil {
		return "", "", err
	}
	tmplText, err := c.Get(name, PartTemplate)
	if err != nil {
		return "", "", err
	}

	tmpl, err := template.New(name).Parse(tmplText)
	if err != nil {
		return "", "", fmt.Errorf("%w: parsing template for prompt %q: %v", types.ErrConfiguration, name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("%w: rendering prompt %q: %v", types.ErrConfiguration, name, err)
	}
	return system, buf.String(), nil
}
