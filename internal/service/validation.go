package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	// text columns cannot store NUL
	_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
	return v
}

// messages are keyed by struct field and failed tag.
var messages = map[string]string{
	"Name.required":        "Name is required",
	"Name.min":             "Name is required",
	"Name.max":             "Name must be at most 50 characters",
	"Email.required":       "Valid email is required",
	"Email.email":          "Valid email is required",
	"Email.max":            "Email must be at most 254 characters",
	"Password.required":    "Password is required",
	"Password.min":         "Password must be at least 6 characters",
	"Title.required":       "Title is required",
	"Title.min":            "Title is required",
	"Title.max":            "Title must be at most 100 characters",
	"Description.required": "Description is required",
	"Description.min":      "Description is required",
	"Description.max":      "Description must be at most 500 characters",
	"Status.oneof":         "Status must be one of pending, in-progress, completed",
	"Priority.oneof":       "Priority must be one of low, medium, high",
	"DueDate.isodate":      "Invalid date format",
	"Name.nonul":           "Name must not contain NUL characters",
	"Title.nonul":          "Title must not contain NUL characters",
	"Description.nonul":    "Description must not contain NUL characters",
}

// validateStruct runs the struct tags and converts the first failure into a
// ValidationError. Fields are checked in declaration order.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = "Invalid value for " + strings.ToLower(fe.Field())
	}
	return invalid(fe.Field(), msg)
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC
// midnight).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// OptionalDate distinguishes an absent JSON field (Set false) from an
// explicit null (Set true, Value nil).
type OptionalDate struct {
	Set   bool
	Value *string
}

func (o *OptionalDate) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
