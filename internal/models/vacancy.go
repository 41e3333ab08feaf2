package models

import (
	"bytes"
	"encoding/json"

	apperrors "hh-vacancies-go/internal/errors"
)

// Vacancy is the normalized job vacancy held by every storage backend.
// It has no identifier: filtering and deletion match on field values.
type Vacancy struct {
	Title        string  `json:"title"`
	Link         string  `json:"link"`
	Salary       *Salary `json:"salary"`
	Description  string  `json:"description"`
	Requirements string  `json:"requirements"`
}

// Salary is the optional pay range of a vacancy. Both bounds are nullable.
type Salary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency,omitempty"`
	Gross    *bool  `json:"gross,omitempty"`
}

// Field names understood by Vacancy.Field.
const (
	FieldTitle        = "title"
	FieldLink         = "link"
	FieldSalary       = "salary"
	FieldDescription  = "description"
	FieldRequirements = "requirements"
)

// Fields lists the record fields in their serialized column order.
var Fields = []string{FieldTitle, FieldLink, FieldSalary, FieldDescription, FieldRequirements}

// EffectiveSalary derives a single figure from the salary range: the average when
// both bounds are set, the single bound when only one is, 0 otherwise.
// A zero bound is treated as unset, so 0 means "unspecified" as well as a real zero.
func (v Vacancy) EffectiveSalary() int {
	if v.Salary == nil {
		return 0
	}
	from := deref(v.Salary.From)
	to := deref(v.Salary.To)

	switch {
	case from != 0 && to != 0:
		return (from + to) / 2
	case from != 0:
		return from
	case to != 0:
		return to
	default:
		return 0
	}
}

// HasSalary reports whether at least one non-zero salary bound is present.
func (v Vacancy) HasSalary() bool {
	return v.Salary != nil && (deref(v.Salary.From) != 0 || deref(v.Salary.To) != 0)
}

// Field returns the value of a named field as text. Salary is returned in its
// encoded token form. ok is false for unknown names.
func (v Vacancy) Field(name string) (value string, ok bool) {
	switch name {
	case FieldTitle:
		return v.Title, true
	case FieldLink:
		return v.Link, true
	case FieldSalary:
		return EncodeSalary(v.Salary), true
	case FieldDescription:
		return v.Description, true
	case FieldRequirements:
		return v.Requirements, true
	default:
		return "", false
	}
}

// rawItem mirrors one element of the hh.ru "items" array.
type rawItem struct {
	Name         *string         `json:"name"`
	AlternateURL *string         `json:"alternate_url"`
	Salary       json.RawMessage `json:"salary"`
	Description  *string         `json:"description"`
	Snippet      *struct {
		Requirement *string `json:"requirement"`
	} `json:"snippet"`
}

// FromRaw validates one raw source item and builds a Vacancy from it.
// Missing text fields default to empty text. A salary that is present but not an
// object is a validation error.
func FromRaw(item json.RawMessage) (Vacancy, error) {
	var raw rawItem
	if err := json.Unmarshal(item, &raw); err != nil {
		return Vacancy{}, apperrors.Validation("item is not a vacancy object", err)
	}

	salary, err := decodeSalary(raw.Salary)
	if err != nil {
		return Vacancy{}, err
	}

	v := Vacancy{
		Title:       NormalizeText(deref(raw.Name)),
		Link:        deref(raw.AlternateURL),
		Salary:      salary,
		Description: NormalizeText(deref(raw.Description)),
	}
	if raw.Snippet != nil {
		v.Requirements = NormalizeText(deref(raw.Snippet.Requirement))
	}
	return v, nil
}

// EncodeSalary renders a salary as the single text token used by the tabular and
// line backends. An absent salary encodes as empty text.
func EncodeSalary(s *Salary) string {
	if s == nil {
		return ""
	}
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeSalary parses a salary token produced by EncodeSalary.
func DecodeSalary(token string) (*Salary, error) {
	if token == "" {
		return nil, nil
	}
	return decodeSalary(json.RawMessage(token))
}

func decodeSalary(data json.RawMessage) (*Salary, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, apperrors.Validation("salary must be an object or null", nil)
	}

	var s Salary
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, apperrors.Validation("salary bounds must be integers or null", err)
	}
	return &s, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// storedVacancy is the on-disk shape written by the document backends.
type storedVacancy struct {
	Title        string          `json:"title"`
	Link         string          `json:"link"`
	Salary       json.RawMessage `json:"salary"`
	Description  string          `json:"description"`
	Requirements string          `json:"requirements"`
}

// FromStored rebuilds a Vacancy from an element previously written by a backend,
// applying the same salary validation as FromRaw.
func FromStored(data json.RawMessage) (Vacancy, error) {
	var row storedVacancy
	if err := json.Unmarshal(data, &row); err != nil {
		return Vacancy{}, apperrors.Validation("stored element is not a vacancy object", err)
	}

	salary, err := decodeSalary(row.Salary)
	if err != nil {
		return Vacancy{}, err
	}

	return Vacancy{
		Title:        row.Title,
		Link:         row.Link,
		Salary:       salary,
		Description:  row.Description,
		Requirements: row.Requirements,
	}, nil
}
