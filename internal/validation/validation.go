package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	idRegex    = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-.:]*$`)
)

const (
	maxDisplayName = 40
	maxID          = 128
)

// ValidationError reports a single invalid field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateDisplayName checks the name shown in summaries. Empty is allowed.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxDisplayName {
		return ValidationError{Field: "displayName", Message: fmt.Sprintf("must be at most %d characters", maxDisplayName)}
	}
	for _, r := range name {
		if r < ' ' {
			return ValidationError{Field: "displayName", Message: "contains control characters"}
		}
	}
	return nil
}

// ValidatePlayerID checks a player id taken from a token subject
func ValidatePlayerID(id string) error {
	if id == "" {
		return ValidationError{Field: "playerId", Message: "player id is required"}
	}
	if len(id) > maxID || !idRegex.MatchString(id) {
		return ValidationError{Field: "playerId", Message: "invalid player id"}
	}
	return nil
}
