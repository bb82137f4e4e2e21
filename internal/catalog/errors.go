package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotBuilt is returned by lookups made before Build succeeded.
	ErrNotBuilt = errors.New("catalog: not built")

	// ErrOptionNotFound is returned when a name cannot be resolved to a leaf option.
	ErrOptionNotFound = errors.New("catalog: option not found")
)

// ValidationError describes one malformed node of the trait hierarchy.
type ValidationError struct {
	// Path is the slash-joined location of the node, starting at its category.
	Path   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog: %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors is the batch of problems found by one Build.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "catalog: no validation errors"
	case 1:
		return v[0].Error()
	}
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("catalog: %d validation errors:\n  %s", len(v), strings.Join(msgs, "\n  "))
}

func (v ValidationErrors) Unwrap() []error {
	out := make([]error, len(v))
	for i, e := range v {
		out[i] = e
	}
	return out
}
