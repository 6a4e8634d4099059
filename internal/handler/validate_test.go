package handler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckEmail(t *testing.T) {
	for _, v := range []string{"a@b.co", "  user@example.com  ", "first.last@sub.domain.org"} {
		errs := fieldErrors{}
		got := checkEmail(errs, v)
		assert.True(t, errs.ok(), "input %q: %v", v, errs)
		assert.Equal(t, strings.TrimSpace(v), got)
	}
	for _, v := range []string{"", "plain", "@example.com", "a@b", "two words@example.com"} {
		errs := fieldErrors{}
		checkEmail(errs, v)
		assert.Contains(t, errs, "email", "input %q", v)
	}
}

func TestCheckPassword(t *testing.T) {
	errs := fieldErrors{}
	checkPassword(errs, "password123")
	assert.True(t, errs.ok())

	errs = fieldErrors{}
	checkPassword(errs, "short")
	assert.Contains(t, errs, "password")

	errs = fieldErrors{}
	checkPassword(errs, "   ")
	assert.Contains(t, errs, "password")
}

func TestCheckShortStr(t *testing.T) {
	errs := fieldErrors{}
	assert.Equal(t, "Ada", checkShortStr(errs, "name", "  Ada  "))
	assert.True(t, errs.ok())

	errs = fieldErrors{}
	checkShortStr(errs, "name", " ")
	assert.Contains(t, errs, "name")

	errs = fieldErrors{}
	checkShortStr(errs, "name", strings.Repeat("x", 51))
	assert.Contains(t, errs, "name")
}

func TestCheckGender(t *testing.T) {
	for _, v := range []string{"m", "f"} {
		errs := fieldErrors{}
		checkGender(errs, v)
		assert.True(t, errs.ok(), "input %q", v)
	}
	for _, v := range []string{"", "x", "male", "M"} {
		errs := fieldErrors{}
		checkGender(errs, v)
		assert.Contains(t, errs, "gender", "input %q", v)
	}
}

func TestCheckDateOfBirth(t *testing.T) {
	errs := fieldErrors{}
	checkDateOfBirth(errs, "1990-12-10")
	assert.True(t, errs.ok())

	for name, v := range map[string]string{
		"malformed": "10/12/1990",
		"future":    "2100-01-01",
		"underage":  time.Now().AddDate(-10, 0, 0).Format("2006-01-02"),
	} {
		errs := fieldErrors{}
		checkDateOfBirth(errs, v)
		assert.Contains(t, errs, "date_of_birth", "case %s", name)
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		dob  string
		want int
	}{
		{"2008-08-28", 18}, // birthday today
		{"2008-08-29", 17}, // birthday tomorrow
		{"2008-08-27", 18},
		{"1990-12-10", 35},
	}
	for _, tc := range cases {
		dob, err := time.Parse("2006-01-02", tc.dob)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, age(dob, now), "dob %s", tc.dob)
	}
}
