package store

import (
	"regexp"
	"time"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9]+[\._]?[a-z0-9]+[@]\w+[.]\w+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s]+$`)
)

// BirthdayLayout is the on-disk format of Contact.Birthday.
const BirthdayLayout = time.DateOnly

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidBirthday accepts an empty string or a YYYY-MM-DD calendar date.
func ValidBirthday(birthday string) bool {
	if birthday == "" {
		return true
	}
	_, err := time.Parse(BirthdayLayout, birthday)
	return err == nil
}

// validateContact checks email, phone and birthday in that order and
// returns the first failure.
func validateContact(c Contact) error {
	if !ValidEmail(c.Email) {
		return &ValidationError{Field: "email", Value: c.Email}
	}
	if !ValidPhone(c.Phone) {
		return &ValidationError{Field: "phone", Value: c.Phone}
	}
	if !ValidBirthday(c.Birthday) {
		return &ValidationError{Field: "birthday", Value: c.Birthday}
	}
	return nil
}

// validatePatch checks only the fields the patch supplies.
func validatePatch(p ContactPatch) error {
	if p.Email != nil && !ValidEmail(*p.Email) {
		return &ValidationError{Field: "email", Value: *p.Email}
	}
	if p.Phone != nil && !ValidPhone(*p.Phone) {
		return &ValidationError{Field: "phone", Value: *p.Phone}
	}
	if p.Birthday != nil && !ValidBirthday(*p.Birthday) {
		return &ValidationError{Field: "birthday", Value: *p.Birthday}
	}
	return nil
}
