package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hh-vacancies-go/internal/errors"
)

func intPtr(v int) *int { return &v }

func TestEffectiveSalary(t *testing.T) {
	tests := []struct {
		name   string
		salary *Salary
		want   int
	}{
		{"both bounds", &Salary{From: intPtr(100000), To: intPtr(200000)}, 150000},
		{"only from", &Salary{From: intPtr(120000)}, 120000},
		{"only to", &Salary{To: intPtr(90000)}, 90000},
		{"no salary", nil, 0},
		{"empty range", &Salary{}, 0},
		{"integer division", &Salary{From: intPtr(1), To: intPtr(2)}, 1},
		{"zero bound counts as unset", &Salary{From: intPtr(0), To: intPtr(80000)}, 80000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Vacancy{Title: "Dev", Salary: tt.salary}
			assert.Equal(t, tt.want, v.EffectiveSalary())
		})
	}
}

func TestHasSalary(t *testing.T) {
	assert.False(t, Vacancy{}.HasSalary())
	assert.False(t, Vacancy{Salary: &Salary{}}.HasSalary())
	assert.True(t, Vacancy{Salary: &Salary{To: intPtr(1)}}.HasSalary())
}

func TestFromRaw(t *testing.T) {
	item := json.RawMessage(`{
		"name": "Python Dev",
		"alternate_url": "https://hh.ru/vacancy/1",
		"salary": {"from": 100000, "to": 150000, "currency": "RUR", "gross": false},
		"description": "Backend services",
		"snippet": {"requirement": "Experience with <highlighttext>Django</highlighttext> &amp; SQL"}
	}`)

	v, err := FromRaw(item)
	require.NoError(t, err)

	assert.Equal(t, "Python Dev", v.Title)
	assert.Equal(t, "https://hh.ru/vacancy/1", v.Link)
	assert.Equal(t, "Backend services", v.Description)
	assert.Equal(t, "Experience with Django & SQL", v.Requirements)
	require.NotNil(t, v.Salary)
	assert.Equal(t, "RUR", v.Salary.Currency)
	assert.Equal(t, 125000, v.EffectiveSalary())
}

func TestFromRaw_MissingFields(t *testing.T) {
	v, err := FromRaw(json.RawMessage(`{"name": "Tester"}`))
	require.NoError(t, err)

	assert.Equal(t, "Tester", v.Title)
	assert.Empty(t, v.Link)
	assert.Empty(t, v.Description)
	assert.Empty(t, v.Requirements)
	assert.Nil(t, v.Salary)
	assert.Equal(t, 0, v.EffectiveSalary())
}

func TestFromRaw_NullFields(t *testing.T) {
	v, err := FromRaw(json.RawMessage(`{"name": "Ops", "salary": null, "description": null, "snippet": {"requirement": null}}`))
	require.NoError(t, err)

	assert.Nil(t, v.Salary)
	assert.Empty(t, v.Description)
	assert.Empty(t, v.Requirements)
}

func TestFromRaw_InvalidSalary(t *testing.T) {
	tests := []struct {
		name string
		item string
	}{
		{"text scalar", `{"name": "Dev", "salary": "100000"}`},
		{"number scalar", `{"name": "Dev", "salary": 100000}`},
		{"array", `{"name": "Dev", "salary": [1, 2]}`},
		{"non-integer bound", `{"name": "Dev", "salary": {"from": "a lot"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRaw(json.RawMessage(tt.item))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation), "got %v", err)
		})
	}
}

func TestFromRaw_NotAnObject(t *testing.T) {
	_, err := FromRaw(json.RawMessage(`"just text"`))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestSalaryToken(t *testing.T) {
	assert.Equal(t, "", EncodeSalary(nil))

	s := &Salary{From: intPtr(70000)}
	token := EncodeSalary(s)
	assert.JSONEq(t, `{"from": 70000, "to": null}`, token)

	decoded, err := DecodeSalary(token)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)

	decoded, err = DecodeSalary("")
	require.NoError(t, err)
	assert.Nil(t, decoded)

	_, err = DecodeSalary(`"70000"`)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestFromStored(t *testing.T) {
	v, err := FromStored(json.RawMessage(`{"title": "QA", "link": "l", "salary": {"from": null, "to": 90000}, "description": "d", "requirements": "r"}`))
	require.NoError(t, err)
	assert.Equal(t, "QA", v.Title)
	assert.Equal(t, 90000, v.EffectiveSalary())

	_, err = FromStored(json.RawMessage(`{"title": "QA", "salary": "high"}`))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestField(t *testing.T) {
	v := Vacancy{Title: "t", Link: "l", Description: "d", Requirements: "r"}

	for name, want := range map[string]string{
		FieldTitle: "t", FieldLink: "l", FieldDescription: "d", FieldRequirements: "r", FieldSalary: "",
	} {
		got, ok := v.Field(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := v.Field("company")
	assert.False(t, ok)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "plain & simple", "plain & simple"},
		{"empty", "", ""},
		{"highlight markup", "<highlighttext>Go</highlighttext> and Kafka", "Go and Kafka"},
		{"entities", "Django &amp; SQL &lt;3", "Django & SQL <3"},
		{"generic parameter", "Опыт с C<T> дженериками", "Опыт с C<T> дженериками"},
		{"comparison signs", "a<b and c>d", "a<b and c>d"},
		{"other tags kept", "<b>bold</b> <highlighttext>hit</highlighttext>", "<b>bold</b> hit"},
		{"surrounding space kept", "  padded  ", "  padded  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestFromRaw_KeepsTextThatLooksLikeMarkup(t *testing.T) {
	v, err := FromRaw(json.RawMessage(`{"name": "C++ dev, List<T>", "description": "a<b and c>d", "snippet": {"requirement": "Опыт с C<T> дженериками"}}`))
	require.NoError(t, err)

	assert.Equal(t, "C++ dev, List<T>", v.Title)
	assert.Equal(t, "a<b and c>d", v.Description)
	assert.Equal(t, "Опыт с C<T> дженериками", v.Requirements)
}
