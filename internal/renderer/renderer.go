package renderer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/llm-prompts/internal/errors"
)

// Renderer loads templates from a filesystem and executes them.
// Includes ({{template "name" .}}) resolve to files relative to the
// including template's directory.
type Renderer struct {
	fs afero.Fs
}

// NewRenderer creates a new renderer instance
func NewRenderer(fs afero.Fs) *Renderer {
	return &Renderer{fs: fs}
}

// Render is shorthand for NewRenderer(fs).Render(templatePath, data)
func Render(fs afero.Fs, templatePath string, data map[string]interface{}) (string, error) {
	return NewRenderer(fs).Render(templatePath, data)
}

// Render executes the template at templatePath with data and returns the text
func (r *Renderer) Render(templatePath string, data map[string]interface{}) (string, error) {
	tmpl, err := r.load(templatePath)
	if err != nil {
		return "", errors.TemplateError(templatePath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.TemplateError(templatePath, fmt.Errorf("failed to execute template: %w", err))
	}

	return buf.String(), nil
}

func (r *Renderer) load(templatePath string) (*template.Template, error) {
	dir := filepath.Dir(templatePath)
	name := filepath.Base(templatePath)

	root := template.New(name).Funcs(FuncMap())
	if err := r.parseInto(root, dir, name); err != nil {
		return nil, err
	}

	// Load included files until every referenced name is defined
	walked := make(map[string]bool)
	for {
		loaded := false
		for _, t := range root.Templates() {
			if walked[t.Name()] || t.Tree == nil {
				continue
			}
			walked[t.Name()] = true
			for _, ref := range includes(t.Tree.Root) {
				if root.Lookup(ref) != nil {
					continue
				}
				if err := r.parseInto(root.New(ref), dir, ref); err != nil {
					return nil, fmt.Errorf("include %q: %w", ref, err)
				}
				loaded = true
			}
		}
		if !loaded {
			return root, nil
		}
	}
}

func (r *Renderer) parseInto(t *template.Template, dir, name string) error {
	content, err := afero.ReadFile(r.fs, filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		return err
	}
	if _, err := t.Parse(string(content)); err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return nil
}

// includes returns the template names referenced by {{template}} actions
func includes(node parse.Node) []string {
	var names []string
	var walk func(parse.Node)
	walk = func(n parse.Node) {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, child := range n.Nodes {
				walk(child)
			}
		case *parse.TemplateNode:
			names = append(names, n.Name)
		case *parse.IfNode:
			walk(n.List)
			walk(n.ElseList)
		case *parse.RangeNode:
			walk(n.List)
			walk(n.ElseList)
		case *parse.WithNode:
			walk(n.List)
			walk(n.ElseList)
		}
	}
	walk(node)
	return names
}

// FuncMap returns the helpers available to every template
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"csv":        csvField,
		"yamlString": yamlString,
		"indent":     indent,
		"default":    defaultValue,
		"trimPrefix": func(prefix, s string) string { return strings.TrimPrefix(s, prefix) },
		"replace":    func(old, new, s string) string { return strings.ReplaceAll(s, old, new) },
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
	}
}

// csvField quotes a value as a single RFC 4180 field
func csvField(v interface{}) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{toString(v)}); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// yamlString encodes a value as a YAML double-quoted scalar
func yamlString(v interface{}) (string, error) {
	node := yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.DoubleQuotedStyle,
		Value: toString(v),
	}
	out, err := yaml.Marshal(&node)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// indent prefixes every line after the first with n spaces
func indent(n int, v interface{}) string {
	pad := strings.Repeat(" ", n)
	return strings.ReplaceAll(toString(v), "\n", "\n"+pad)
}

func defaultValue(fallback, v interface{}) interface{} {
	if v == nil || toString(v) == "" {
		return fallback
	}
	return v
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}
