package identity

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/adminpanel/internal/common"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type registerInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func validateRegister(name, email, password string) error {
	in := registerInput{Name: name, Email: email, Password: password}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

type profileInput struct {
	Name  *string `validate:"omitempty,min=1"`
	Email *string `validate:"omitempty,email"`
}

func validateProfileUpdate(upd ProfileUpdate) error {
	in := profileInput{Name: upd.Name, Email: upd.Email}
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
	}
	return nil
}
