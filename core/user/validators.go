package user

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/shule/core"
)

const (
	pwdMinLength     = 8
	pwdMaxSimilarity = 0.7
)

var commonPasswords = []string{
	"123456", "password", "12345678", "qwerty", "123456789", "12345", "1234",
	"111111", "1234567", "dragon", "123123", "baseball", "abc123", "football",
	"monkey", "letmein", "shadow", "master", "666666", "qwertyuiop", "123321",
	"mustang", "1234567890", "michael", "654321", "superman", "1qaz2wsx",
	"7777777", "121212", "000000", "qazwsx", "123qwe", "password1", "welcome",
}

// ValidatePassword applies all password validators and returns a
// core.ValidationError listing every failure.
func ValidatePassword(pwd string, usr *User) error {
	var flds []core.FieldError
	if len(pwd) < pwdMinLength {
		flds = append(flds, core.FieldError{Field: "password", Error: "password is too short, must contain at least 8 characters"})
	}
	if isCommonPassword(pwd) {
		flds = append(flds, core.FieldError{Field: "password", Error: "password is too common"})
	}
	if usr != nil && isSimilarToUserAttrs(pwd, usr) {
		flds = append(flds, core.FieldError{Field: "password", Error: "password is too similar to personal information"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func isCommonPassword(pwd string) bool {
	lowered := strings.ToLower(pwd)
	for _, common := range commonPasswords {
		if lowered == common {
			return true
		}
	}
	return false
}

func isSimilarToUserAttrs(pwd string, usr *User) bool {
	lowered := strings.ToLower(pwd)
	for _, attr := range []string{usr.Username, usr.Name, usr.Email} {
		if attr == "" {
			continue
		}
		for _, part := range strings.FieldsFunc(strings.ToLower(attr), func(r rune) bool { return r == ' ' || r == '@' || r == '.' || r == '-' || r == '_' }) {
			if part == "" {
				continue
			}
			matcher := difflib.NewMatcher(strings.Split(lowered, ""), strings.Split(part, ""))
			if matcher.QuickRatio() >= pwdMaxSimilarity && matcher.Ratio() >= pwdMaxSimilarity {
				return true
			}
		}
	}
	return false
}
