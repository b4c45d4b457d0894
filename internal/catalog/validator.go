package catalog

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/tracksearch/pkg/errors"
)

const maxIDLength = 255

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Line   int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k, e.Fields[k]))
	}
	return fmt.Sprintf("line %d: %s", e.Line, strings.Join(parts, "; "))
}

// Validator checks records and enforces one record per identifier. It is
// not safe for concurrent use.
type Validator struct {
	seen map[string]int
}

func NewValidator() *Validator {
	return &Validator{seen: make(map[string]int)}
}

// Validate returns a *ValidationError for a malformed record and an error
// wrapping apperrors.ErrDuplicateRecord for a repeated identifier.
func (v *Validator) Validate(rec Record) error {
	errs := make(map[string]string)
	id := strings.TrimSpace(rec.ID)
	switch {
	case id == "":
		errs["id"] = "id is required"
	case id != rec.ID:
		errs["id"] = "id must not have surrounding whitespace"
	case len(id) > maxIDLength:
		errs["id"] = fmt.Sprintf("id must be at most %d characters", maxIDLength)
	}
	if strings.TrimSpace(rec.Name) == "" {
		errs["name"] = "name is required"
	}
	if len(errs) > 0 {
		return &ValidationError{Line: rec.Line, Fields: errs}
	}

	if first, dup := v.seen[rec.ID]; dup {
		return fmt.Errorf("%w: %q on line %d, first seen on line %d",
			apperrors.ErrDuplicateRecord, rec.ID, rec.Line, first)
	}
	v.seen[rec.ID] = rec.Line
	return nil
}
