// Package validation checks loaded prompts for the fields the output templates need.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the lint layer of the tool. Deploy runs do not call it; the
// `check` command does, so authors can catch incomplete prompts before shipping.
//
// KEY RESPONSIBILITIES:
// - Apply required-field rules to every prompt with go-playground/validator
// - Report missing or invalid fields per file as errors
// - Report triggers defined in more than one file as warnings (deployers emit duplicates as-is)
// - Summarize the outcome as a Report
//
// INTEGRATION POINTS:
// - internal/service/service.go: CheckPrompts runs the Validator over the loaded PromptSet
// - internal/cli/commands.go: the check command prints the Report issues
// - internal/errors/errors.go: Report.ToAppError() converts failures to a VALIDATION_ERROR
//
// VALIDATION FLOW:
// 1. Prompts are loaded from the prompts directory
// 2. Each prompt map is validated against the rule set
// 3. Failures become Issues naming the file and field
// 4. Triggers are compared across files for duplicates
// 5. The Report decides the exit status of `check`
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dpshade/llm-prompts/internal/errors"
	"github.com/dpshade/llm-prompts/internal/models"
)

// IssueSeverity distinguishes blocking problems from advisories
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding about one prompt
type Issue struct {
	Filename string        `json:"filename"`
	Field    string        `json:"field"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Report is the outcome of checking a prompt collection
type Report struct {
	Checked int     `json:"checked"`
	Issues  []Issue `json:"issues,omitempty"`
}

// Valid reports whether no error-level issue was found
func (r *Report) Valid() bool {
	return r.Errors() == 0
}

// Errors counts error-level issues
func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings counts warning-level issues
func (r *Report) Warnings() int {
	return len(r.Issues) - r.Errors()
}

// ToAppError converts a failing report into a VALIDATION_ERROR
func (r *Report) ToAppError() *errors.AppError {
	if r.Valid() {
		return nil
	}
	return errors.ValidationError(fmt.Sprintf("%d of %d prompts failed validation", r.failedPrompts(), r.Checked)).
		WithDetails(fmt.Sprintf("%d errors, %d warnings", r.Errors(), r.Warnings()))
}

func (r *Report) failedPrompts() int {
	seen := make(map[string]bool)
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			seen[issue.Filename] = true
		}
	}
	return len(seen)
}

// DefaultRules are the validator tags applied to every prompt
var DefaultRules = map[string]interface{}{
	models.KeyTrigger: "required",
	models.KeyReplace: "required",
}

// Validator checks prompts against a rule set
type Validator struct {
	validate *validator.Validate
	rules    map[string]interface{}
}

// NewValidator creates a validator using DefaultRules
func NewValidator() *Validator {
	return NewValidatorWithRules(DefaultRules)
}

// NewValidatorWithRules creates a validator with custom validator tags per key
func NewValidatorWithRules(rules map[string]interface{}) *Validator {
	return &Validator{
		validate: validator.New(),
		rules:    rules,
	}
}

// Check validates every prompt and flags repeated triggers
func (v *Validator) Check(prompts models.PromptSet) *Report {
	report := &Report{Checked: len(prompts)}

	owners := make(map[string][]string)
	for _, prompt := range prompts {
		report.Issues = append(report.Issues, v.checkPrompt(prompt)...)
		if trigger := prompt.Trigger(); trigger != "" {
			owners[trigger] = append(owners[trigger], prompt.Filename())
		}
	}

	triggers := make([]string, 0, len(owners))
	for trigger, files := range owners {
		if len(files) > 1 {
			triggers = append(triggers, trigger)
		}
	}
	sort.Strings(triggers)
	for _, trigger := range triggers {
		files := owners[trigger]
		for _, file := range files {
			report.Issues = append(report.Issues, Issue{
				Filename: file,
				Field:    models.KeyTrigger,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("trigger %q is also defined in %s", trigger, strings.Join(others(files, file), ", ")),
			})
		}
	}

	return report
}

func (v *Validator) checkPrompt(prompt models.Prompt) []Issue {
	failures := v.validate.ValidateMap(map[string]interface{}(prompt), v.rules)

	fields := make([]string, 0, len(failures))
	for field := range failures {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	issues := make([]Issue, 0, len(fields))
	for _, field := range fields {
		issues = append(issues, Issue{
			Filename: prompt.Filename(),
			Field:    field,
			Severity: SeverityError,
			Message:  describe(field, failures[field]),
		})
	}
	return issues
}

func describe(field string, failure interface{}) string {
	if errs, ok := failure.(validator.ValidationErrors); ok && len(errs) > 0 {
		if errs[0].Tag() == "required" {
			return fmt.Sprintf("%s is required", field)
		}
		return fmt.Sprintf("%s failed %q", field, errs[0].Tag())
	}
	return fmt.Sprintf("%s is invalid: %v", field, failure)
}

func others(files []string, self string) []string {
	var out []string
	skipped := false
	for _, f := range files {
		if f == self && !skipped {
			skipped = true
			continue
		}
		out = append(out, f)
	}
	return out
}
