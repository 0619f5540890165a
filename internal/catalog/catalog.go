// Package catalog reads and validates the YAML metadata that describes each
// built-in security check.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed checks.yaml
var defaultCatalog []byte

// idPattern matches valid check IDs: lowercase alphanumeric and underscores.
var idPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Entry is the static metadata for one security check.
type Entry struct {
	// ID links the entry to a built-in probe.
	ID string `yaml:"id" validate:"required,check_id"`

	// Name is a human-readable name for the check.
	Name string `yaml:"name" validate:"required,min=3,max=100"`

	// Description states what the check verifies.
	Description string `yaml:"description" validate:"required"`

	// Rationale explains why the setting matters.
	Rationale string `yaml:"rationale" validate:"required"`

	// ManualSteps describes how to apply the fix by hand.
	ManualSteps string `yaml:"manual_steps" validate:"required"`

	// Severity indicates the importance of a finding.
	Severity string `yaml:"severity" validate:"required,oneof=info low medium high critical"`

	// Category groups related checks.
	Category string `yaml:"category" validate:"required"`

	// References are URLs to documentation.
	References []string `yaml:"references,omitempty" validate:"omitempty,dive,url"`

	// Tags are optional labels for filtering.
	Tags []string `yaml:"tags,omitempty"`
}

type document struct {
	Checks []Entry `yaml:"checks" validate:"required,min=1,dive"`
}

// Loader parses catalog documents and validates them against the schema and
// the set of check IDs that have a built-in probe.
type Loader struct {
	validate *validator.Validate
	knownIDs map[string]struct{}
}

// New creates a Loader that accepts only the given check IDs.
func New(knownIDs []string) *Loader {
	v := validator.New()

	_ = v.RegisterValidation("check_id", func(fl validator.FieldLevel) bool {
		return idPattern.MatchString(fl.Field().String())
	})

	ids := make(map[string]struct{}, len(knownIDs))
	for _, id := range knownIDs {
		ids[id] = struct{}{}
	}

	return &Loader{validate: v, knownIDs: ids}
}

// Default parses the embedded catalog.
func (l *Loader) Default() ([]Entry, error) {
	entries, err := l.Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return entries, nil
}

// LoadFile reads and parses a catalog file.
func (l *Loader) LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	entries, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes and validates a catalog document.
func (l *Loader) Parse(data []byte) ([]Entry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := l.validate.Struct(doc); err != nil {
		return nil, formatValidationErrors(err)
	}

	seen := make(map[string]int, len(doc.Checks))
	for i, e := range doc.Checks {
		if _, ok := l.knownIDs[e.ID]; !ok {
			return nil, fmt.Errorf("entry %d: unknown check ID %q (known: %s)", i+1, e.ID, l.knownIDList())
		}
		if prev, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate check ID %q: entries %d and %d", e.ID, prev+1, i+1)
		}
		seen[e.ID] = i
	}

	return doc.Checks, nil
}

// Load returns the embedded catalog with entries from overridePath replacing
// those with the same ID. Order follows the embedded catalog. An empty
// overridePath returns the embedded catalog unchanged.
func (l *Loader) Load(overridePath string) ([]Entry, error) {
	base, err := l.Default()
	if err != nil {
		return nil, err
	}
	if overridePath == "" {
		return base, nil
	}

	overrides, err := l.LoadFile(overridePath)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Entry, len(overrides))
	for _, e := range overrides {
		byID[e.ID] = e
	}
	for i, e := range base {
		if o, ok := byID[e.ID]; ok {
			base[i] = o
		}
	}
	return base, nil
}

// formatValidationErrors converts validator errors into user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	for _, fe := range validationErrors {
		messages = append(messages, formatFieldError(fe))
	}

	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// formatFieldError converts a single field validation error to a human-readable message.
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "check_id":
		return fmt.Sprintf("%s must be lowercase alphanumeric with underscores only", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// knownIDList returns a comma-separated list of known check IDs.
func (l *Loader) knownIDList() string {
	ids := make([]string, 0, len(l.knownIDs))
	for id := range l.knownIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}
