package notes

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

const (
	minNameLength        = 3
	minPasswordLength    = 5
	maxPasswordLength    = 72
	minTitleLength       = 3
	minDescriptionLength = 5
)

var (
	nameRules = []validation.Rule{
		validation.Length(minNameLength, 0).Error("Name must be at least 3 characters"),
	}
	passwordRules = []validation.Rule{
		validation.Length(minPasswordLength, maxPasswordLength).Error("password must have 5 to 72 characters"),
	}
	titleRules = []validation.Rule{
		validation.Length(minTitleLength, 0).Error("Enter a valid title"),
	}
	descriptionRules = []validation.Rule{
		validation.Length(minDescriptionLength, 0).Error("Description must be at least 5 characters"),
	}
)

func rules(required bool, msg string, r []validation.Rule) []validation.Rule {
	if !required {
		return r
	}
	return append([]validation.Rule{validation.Required.Error(msg)}, r...)
}

// RegisterPayload is the body of the registration routes
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, rules(true, "Name is required", nameRules)...),
		validation.Field(&p.Email,
			validation.Required.Error("Enter a valid email address"),
			is.Email.Error("Enter a valid email address"),
		),
		validation.Field(&p.Password, rules(true, "password must have 5 to 72 characters", passwordRules)...),
	)
}

// LoginPayload is the body of the login routes
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email,
			validation.Required.Error("Enter a valid email address"),
			is.Email.Error("Enter a valid email address"),
		),
		validation.Field(&p.Password, validation.Required.Error("Password cannot be blank")),
	)
}

// UpdateProfilePayload changes name and/or password. Absent fields are left
// untouched, present fields are validated.
type UpdateProfilePayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (p UpdateProfilePayload) Validate() error {
	if p.Name == "" && p.Password == "" {
		return fieldValidationError(map[string]string{
			"name": "Provide a name or a password to update",
		}, nil)
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, nameRules...),
		validation.Field(&p.Password, passwordRules...),
	)
}

// NotePayload is the body of the note creation route
type NotePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

func (p NotePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, rules(true, "Enter a valid title", titleRules)...),
		validation.Field(&p.Description, rules(true, "Description must be at least 5 characters", descriptionRules)...),
	)
}

// NoteUpdatePayload carries the note fields to change
type NoteUpdatePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

func (p NoteUpdatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, titleRules...),
		validation.Field(&p.Description, descriptionRules...),
	)
}

// InfoPayload is the body of the audit log route
type InfoPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (p InfoPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, rules(true, "Enter a valid title", titleRules)...),
		validation.Field(&p.Description, rules(true, "Description must be at least 5 characters", descriptionRules)...),
	)
}

// Validate runs v.Validate and maps failures into ErrValidation
func Validate(v validation.Validatable) error {
	return asValidationError(v.Validate())
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e
	}

	var verrs validation.Errors
	if goerrors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			if ferr != nil {
				fields[field] = ferr.Error()
			}
		}
		return fieldValidationError(fields, err)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "validation failed unexpectedly")
}

// fieldValidationError returns a copy of ErrValidation carrying one message
// per field, sorted by field name.
func fieldValidationError(fields map[string]string, source error) *goerrors.Error {
	e := derive(ErrValidation, "", source)
	e.ValidationErrors = make(goerrors.ValidationErrors, 0, len(fields))
	for field, msg := range fields {
		e.ValidationErrors = append(e.ValidationErrors, goerrors.FieldError{Field: field, Message: msg})
	}
	sort.Slice(e.ValidationErrors, func(i, j int) bool {
		return e.ValidationErrors[i].Field < e.ValidationErrors[j].Field
	})
	return e
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
