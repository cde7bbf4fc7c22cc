// Package validate contains simple input validation helpers.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

// emailRe is deliberately loose: one @ with something on both sides.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// Signup validates account creation fields: every field must be non-empty
// and the email must look like an address.
func Signup(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}
	if !emailRe.MatchString(email) {
		return errors.New("invalid email")
	}
	if password == "" {
		return errors.New("password is required")
	}
	return nil
}

// ID validates a positive database identifier.
func ID(v int64) error {
	if v <= 0 {
		return errors.New("invalid id")
	}
	return nil
}
