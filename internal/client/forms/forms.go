// Package forms validates user input before any request is made.
package forms

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/mlplayground/internal/client/models"
)

const (
	MsgLoginRequired    = "Both fields are required."
	MsgSignupRequired   = "All fields are required."
	MsgPasswordMismatch = "Passwords doesn't match!"
	MsgDatasetName      = "Dataset name must be non-empty and contain no path separators."
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError carries the message shown to the user and the names of
// the offending fields.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

type Login struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

func (f Login) Validate() error {
	return check(f, func(tag string) string { return MsgLoginRequired })
}

type Signup struct {
	Name      string `validate:"required"`
	Email     string `validate:"required"`
	Password  string `validate:"required"`
	Password2 string `validate:"eqfield=Password"`
}

// Validate reports missing fields before a password mismatch. An empty
// confirmation counts as a mismatch.
func (f Signup) Validate() error {
	return check(f, func(tag string) string {
		if tag == "eqfield" {
			return MsgPasswordMismatch
		}
		return MsgSignupRequired
	})
}

func (f Signup) Request() models.RegisterRequest {
	return models.RegisterRequest{Name: f.Name, Email: f.Email, Password: f.Password, Password2: f.Password2}
}

type DatasetName struct {
	Name string `validate:"required,excludesall=/\\,ne=.,ne=.."`
}

func (f DatasetName) Validate() error {
	return check(f, func(string) string { return MsgDatasetName })
}

// check runs the struct validator and turns the failures into one
// ValidationError. message picks the text from the first failing tag, with
// "required" failures taking precedence over the rest.
func check(form any, message func(tag string) string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	tag := verrs[0].Tag()
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fe.Field())
		if fe.Tag() == "required" {
			tag = "required"
		}
	}
	out.Message = message(tag)
	return out
}
