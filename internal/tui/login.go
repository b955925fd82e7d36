package tui

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
)

// LoginInput holds the values collected by the login form
type LoginInput struct {
	Email    string
	Password string
	Tenant   string
}

// ValidateEmail rejects empty and malformed addresses
func ValidateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

// ValidatePassword rejects empty passwords; strength is the backend's call
func ValidatePassword(s string) error {
	if s == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateTenant rejects empty tenant names
func ValidateTenant(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("tenant is required")
	}
	return nil
}

// RunLoginForm collects credentials interactively. Prefilled fields from
// defaults (flags or config) become the form's initial values.
func RunLoginForm(defaults LoginInput) (LoginInput, error) {
	input := defaults

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Placeholder("operator@example.com").
			Value(&input.Email).
			Validate(ValidateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&input.Password).
			Validate(ValidatePassword),
		huh.NewInput().
			Title("Tenant").
			Placeholder("root").
			Value(&input.Tenant).
			Validate(ValidateTenant),
	))

	if err := form.Run(); err != nil {
		return LoginInput{}, fmt.Errorf("login prompt failed: %w", err)
	}

	input.Email = strings.TrimSpace(input.Email)
	input.Tenant = strings.TrimSpace(input.Tenant)
	return input, nil
}
