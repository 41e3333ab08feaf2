package storage

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "hh-vacancies-go/internal/errors"
	"hh-vacancies-go/internal/models"
)

// Special criterion keys. Any other key names a record field.
const (
	KeyKeyword   = "keyword"
	KeyMinSalary = "min_salary"
)

// Criterion is a single key/value filter condition.
type Criterion struct {
	Key   string
	Value any
}

// Criteria is an ordered conjunction of conditions. Empty criteria match every record.
type Criteria []Criterion

// Keyword matches records whose description or requirements contain s, ignoring case.
func Keyword(s string) Criterion {
	return Criterion{Key: KeyKeyword, Value: s}
}

// MinSalary matches records whose effective salary is at least n.
func MinSalary(n int) Criterion {
	return Criterion{Key: KeyMinSalary, Value: n}
}

// Field matches records whose named field equals value exactly.
func Field(name, value string) Criterion {
	return Criterion{Key: name, Value: value}
}

// Match reports whether v satisfies every criterion.
func (c Criteria) Match(v models.Vacancy) bool {
	for _, cr := range c {
		if !cr.match(v) {
			return false
		}
	}
	return true
}

func (cr Criterion) match(v models.Vacancy) bool {
	switch cr.Key {
	case KeyKeyword:
		kw, ok := cr.Value.(string)
		if !ok {
			return false
		}
		kw = strings.ToLower(kw)
		return strings.Contains(strings.ToLower(v.Description), kw) ||
			strings.Contains(strings.ToLower(v.Requirements), kw)
	case KeyMinSalary:
		floor, ok := cr.Value.(int)
		if !ok {
			return false
		}
		return v.EffectiveSalary() >= floor
	default:
		got, ok := v.Field(cr.Key)
		if !ok {
			return false
		}
		want, ok := cr.Value.(string)
		if !ok {
			want = fmt.Sprint(cr.Value)
		}
		return got == want
	}
}

// ParseCriteria builds criteria from "key=value" pairs. min_salary must be an integer.
func ParseCriteria(pairs []string) (Criteria, error) {
	criteria := make(Criteria, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("criterion %q must be key=value", pair), nil)
		}

		switch key {
		case KeyMinSalary:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, apperrors.InvalidInput(fmt.Sprintf("min_salary must be an integer, got %q", value), err)
			}
			criteria = append(criteria, MinSalary(n))
		case KeyKeyword:
			criteria = append(criteria, Keyword(value))
		default:
			criteria = append(criteria, Field(key, value))
		}
	}
	return criteria, nil
}

func filter(vacancies []models.Vacancy, c Criteria) []models.Vacancy {
	out := make([]models.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		if c.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

// reject returns the records that do not match c.
func reject(vacancies []models.Vacancy, c Criteria) []models.Vacancy {
	out := make([]models.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		if !c.Match(v) {
			out = append(out, v)
		}
	}
	return out
}
