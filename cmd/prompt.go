package cmd

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// promptCredentials asks for whichever of email and password is empty.
func promptCredentials(title string, email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email).
			Validate(required("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...).Title(title)).Run()
}

// confirm asks a yes/no question unless yes is already set.
func confirm(question string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().Title(question).Value(&ok).Run()
	return ok, err
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}
