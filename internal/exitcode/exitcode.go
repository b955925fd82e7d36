package exitcode

import (
	"errors"
	"os"

	nexerrors "github.com/qualitasnexus/nexctl/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates the session is missing, expired, or rejected
	AuthError = 3

	// PermissionDenied indicates the session lacks a required permission
	PermissionDenied = 4

	// NetworkError indicates the identity backend could not be reached
	NetworkError = 5

	// ConfigError indicates an unusable configuration file
	ConfigError = 6

	// Interrupted indicates the user cancelled the operation
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code via its error code.
// Errors without a code fall through to GeneralError.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var coded *nexerrors.NexctlError
	if !errors.As(err, &coded) {
		return GeneralError
	}

	switch coded.Code {
	case nexerrors.ErrCodeInvalidCredentials,
		nexerrors.ErrCodeSessionExpired,
		nexerrors.ErrCodeNotLoggedIn,
		nexerrors.ErrCodeRefreshFailed,
		nexerrors.ErrCodeForbidden:
		return AuthError
	case nexerrors.ErrCodePermissionDenied:
		return PermissionDenied
	case nexerrors.ErrCodeAPIUnreachable:
		return NetworkError
	case nexerrors.ErrCodeConfigNotFound, nexerrors.ErrCodeConfigInvalid:
		return ConfigError
	case nexerrors.ErrCodeValidationFailed:
		return UsageError
	default:
		return GeneralError
	}
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case AuthError:
		return "Authentication error"
	case PermissionDenied:
		return "Permission denied"
	case NetworkError:
		return "Network error"
	case ConfigError:
		return "Configuration error"
	default:
		return "Unknown error"
	}
}
