package ux

import (
	"errors"
	"fmt"
	"strings"

	nexerrors "github.com/qualitasnexus/nexctl/internal/errors"
)

// RenderError produces the message shown to the operator for a failed
// command: the error text plus any recovery suggestions it carries.
func RenderError(err error) string {
	if err == nil {
		return ""
	}

	var coded *nexerrors.NexctlError
	if !errors.As(err, &coded) {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", coded.Message, coded.Code)
	for _, s := range coded.Suggestions {
		fmt.Fprintf(&b, "\n  💡 %s", s)
	}
	return b.String()
}

// EnhanceError attaches command-level recovery suggestions to errors that
// arrive without any.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var coded *nexerrors.NexctlError
	if !errors.As(err, &coded) || len(coded.Suggestions) > 0 {
		return err
	}

	// WithSuggestion mutates the coded error in place, so the caller's
	// wrapping is preserved.
	switch coded.Code {
	case nexerrors.ErrCodeSessionExpired, nexerrors.ErrCodeNotLoggedIn, nexerrors.ErrCodeRefreshFailed:
		coded.WithSuggestion("Run 'nexctl login' to start a new session")
	case nexerrors.ErrCodeForbidden, nexerrors.ErrCodePermissionDenied:
		coded.WithSuggestion("Ask a tenant administrator to grant the role that carries this permission")
	case nexerrors.ErrCodeAPIUnreachable:
		coded.WithSuggestion("Check api_url in ~/.nexctl/config.yaml and that the identity backend is up")
	case nexerrors.ErrCodeConfigNotFound, nexerrors.ErrCodeConfigInvalid:
		coded.WithSuggestion("Fix or remove ~/.nexctl/config.yaml; defaults apply when it is absent")
	}
	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
