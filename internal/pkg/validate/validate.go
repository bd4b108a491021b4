package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	pinRe      = regexp.MustCompile(`^\d{4}$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9\s\-().]+$`)
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

func init() {
	_ = v.RegisterValidation("username_fmt", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return pinRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone_fmt", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	})
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// Var validates a single value against a tag expression, for callers that need
// a field-specific failure message.
func Var(field interface{}, tag string) error {
	return v.Var(field, tag)
}

// Username reports whether s is 3-20 chars of letters, digits, or underscores.
func Username(s string) bool { return usernameRe.MatchString(s) }

// Pin reports whether s is exactly four digits.
func Pin(s string) bool { return pinRe.MatchString(s) }

// Phone accepts permissive formats — +, digits, spaces, dashes, parens —
// as long as at least 10 digits remain after stripping punctuation.
func Phone(s string) bool {
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}

// Email checks the simple local@domain.tld shape.
func Email(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot < 1 || dot == len(domain)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t")
}

var instagramRe = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

// Instagram validates a handle after NormalizeInstagram.
func Instagram(s string) bool { return instagramRe.MatchString(s) }

// NormalizeInstagram strips a leading @ and surrounding whitespace.
func NormalizeInstagram(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
