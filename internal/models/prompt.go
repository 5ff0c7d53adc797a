package models

import (
	"fmt"
	"strings"
)

// Well-known record keys
const (
	KeyTrigger     = "trigger"
	KeyReplace     = "replace"
	KeyLabel       = "label"
	KeyDescription = "description"
	KeyFilename    = "_filename" // Derived at load time, never read from the file
)

// TriggerPrefix is the authoring prefix stripped from triggers on load
const TriggerPrefix = ":"

// Prompt is one snippet definition decoded from a YAML file.
//
// Templates address raw keys with {{.trigger}} and the accessor methods
// with {{.Trigger}}; Get returns "" for keys the file does not define.
type Prompt map[string]interface{}

// Get returns the string form of a key, or "" when it is absent
func (p Prompt) Get(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Trigger returns the text typed to invoke the expansion
func (p Prompt) Trigger() string {
	return p.Get(KeyTrigger)
}

// Replace returns the expansion body
func (p Prompt) Replace() string {
	return p.Get(KeyReplace)
}

// Filename returns the base name of the source file without extension
func (p Prompt) Filename() string {
	return p.Get(KeyFilename)
}

// NormalizeTrigger strips one leading TriggerPrefix from a string trigger.
// Non-string triggers are left alone.
func (p Prompt) NormalizeTrigger() {
	trigger, ok := p[KeyTrigger].(string)
	if !ok {
		return
	}
	p[KeyTrigger] = strings.TrimPrefix(trigger, TriggerPrefix)
}

// FilterValue returns the value used for fuzzy matching
func (p Prompt) FilterValue() string {
	return cleanString(strings.Join([]string{p.Trigger(), p.Get(KeyLabel), p.Filename()}, " "))
}

// Title returns the label, falling back to the trigger
func (p Prompt) Title() string {
	if label := p.Get(KeyLabel); label != "" {
		return cleanString(label)
	}
	return cleanString(p.Trigger())
}

// Description returns a one-line summary suitable for a table cell
func (p Prompt) Description() string {
	summary := p.Get(KeyDescription)
	if summary == "" {
		summary = p.Replace()
	}
	summary = cleanString(summary)

	maxSummaryLength := 60
	if len([]rune(summary)) > maxSummaryLength {
		summary = string([]rune(summary)[:maxSummaryLength-3]) + "..."
	}
	return summary
}

// PromptSet is the ordered collection produced by one load pass
type PromptSet []Prompt

// String satisfies fuzzy.Source
func (s PromptSet) String(i int) string {
	return s[i].FilterValue()
}

// Len satisfies fuzzy.Source
func (s PromptSet) Len() int {
	return len(s)
}

// Triggers returns the triggers in load order
func (s PromptSet) Triggers() []string {
	triggers := make([]string, 0, len(s))
	for _, p := range s {
		triggers = append(triggers, p.Trigger())
	}
	return triggers
}

// cleanString removes characters that break single-line rendering
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
