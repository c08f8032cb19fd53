package cli

import (
	"errors"
	"strings"

	"github.com/JonMunkholm/pex/internal/loader"
)

// Exit codes returned by the pexload binary.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 10
	ExitLoadError    = 11
)

// ErrInvalidConfig wraps environment configuration failures.
var ErrInvalidConfig = errors.New("invalid configuration")

var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
	"if any flags in the group",
}

// ExitCodeForError returns the process exit code for err.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrInvalidConfig) {
		return ExitConfigError
	}

	errStr := err.Error()
	for _, p := range usagePatterns {
		if strings.Contains(errStr, p) {
			return ExitUsageError
		}
	}

	if loader.IsUserFacing(err) {
		return ExitLoadError
	}
	return ExitGeneralError
}
