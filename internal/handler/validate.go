package handler

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Request validation mirrors the API contract: short string limits,
// gender m/f, adults only. Failures collect into a field->message map
// surfaced as a 422.

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	maxNameLen = 50
	maxBioLen  = 5000
	maxURLLen  = 255
	minPassLen = 8
	minAge     = 18
)

type fieldErrors map[string]string

func (f fieldErrors) ok() bool { return len(f) == 0 }

func checkEmail(errs fieldErrors, v string) string {
	v = strings.TrimSpace(v)
	if !emailRx.MatchString(v) {
		errs["email"] = "invalid email address"
	}
	return v
}

func checkPassword(errs fieldErrors, v string) {
	if strings.TrimSpace(v) == "" {
		errs["password"] = "password cannot be empty"
	} else if len(v) < minPassLen {
		errs["password"] = fmt.Sprintf("password must be at least %d characters", minPassLen)
	}
}

// checkShortStr enforces the trimmed 1..50 limit shared by name, surname,
// country and city.
func checkShortStr(errs fieldErrors, field, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		errs[field] = field + " cannot be empty"
	} else if len(v) > maxNameLen {
		errs[field] = fmt.Sprintf("%s must not exceed %d characters", field, maxNameLen)
	}
	return v
}

func checkGender(errs fieldErrors, v string) string {
	v = strings.TrimSpace(v)
	if v != "m" && v != "f" {
		errs["gender"] = "gender must be m or f"
	}
	return v
}

func checkBio(errs fieldErrors, v string) string {
	if len(v) > maxBioLen {
		errs["bio"] = fmt.Sprintf("bio must not exceed %d characters", maxBioLen)
	}
	return v
}

func checkDateOfBirth(errs fieldErrors, v string) string {
	v = strings.TrimSpace(v)
	dob, err := time.Parse("2006-01-02", v)
	if err != nil {
		errs["date_of_birth"] = "date_of_birth must be YYYY-MM-DD"
		return v
	}
	today := time.Now().UTC()
	if dob.After(today) {
		errs["date_of_birth"] = "date of birth cannot be in the future"
		return v
	}
	if age(dob, today) < minAge {
		errs["date_of_birth"] = fmt.Sprintf("user must be at least %d years old", minAge)
	}
	return v
}

func checkLongStr(errs fieldErrors, field, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		errs[field] = field + " cannot be empty"
	} else if len(v) > maxURLLen {
		errs[field] = fmt.Sprintf("%s must not exceed %d characters", field, maxURLLen)
	}
	return v
}

func age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
