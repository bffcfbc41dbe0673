package handler

import (
	"regexp"
	"time"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateUser applies the field rules and parses the birthday. The returned
// slice is empty when the request is valid.
func validateUser(req userReq) (time.Time, []string) {
	var errs []string

	if len(req.Name) < 3 {
		errs = append(errs, "Name must be at least 3 characters long")
	}
	if !emailRe.MatchString(req.Email) {
		errs = append(errs, "Email is not valid")
	}

	birthday, err := time.Parse(birthdayLayout, req.Birthday)
	if err != nil {
		errs = append(errs, "Birthday must be in YYYY-MM-DD format")
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil || req.Timezone == "Local" {
		errs = append(errs, "Invalid timezone")
	}

	return birthday, errs
}
