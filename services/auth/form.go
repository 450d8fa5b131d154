package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Mode selects which provider operation a form submission runs.
type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

var (
	ErrInvalidForm = errors.New("invalid input data")
	ErrUnknownMode = errors.New("unknown auth mode")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Form holds the email/password credentials entered by the user.
type Form struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// InitForm returns an empty form.
func InitForm() *Form {
	return &Form{}
}

// FieldError is a user-facing validation message for one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failing field of a form. It matches
// ErrInvalidForm with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return ErrInvalidForm.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

// Validate checks the form and returns one message per failing field.
func (f *Form) Validate() []FieldError {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "form", Message: ErrInvalidForm.Error()}}
	}

	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: strings.ToLower(fe.Field()), Message: fieldMessage(fe)})
	}
	return out
}

// Valid reports whether the form passes validation.
func (f *Form) Valid() bool {
	return len(f.Validate()) == 0
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Please provide a valid email address"
	case "Password":
		switch fe.Tag() {
		case "min":
			return "Password must be at least 6 characters long"
		case "max":
			return "Password must be at most 72 characters long"
		}
		return "Password is required"
	}
	return ErrInvalidForm.Error()
}
