package loader

// messages.go maps load errors to user-facing messages with codes that can
// be quoted to support.
//
//	FILE001  file not found             FILE002  unsupported file type
//	FILE004  no file provided           FILE005  empty file
//	FILE006  file too large             FORM001  invalid form field
//	LOAD001  malformed delimited text   LOAD002  invalid delimiter
//	LOAD003  header names mismatch      LOAD004  no reader engine
//	LOAD005  workbook could not be opened
//	LOAD006  sheet exceeds size limits
//	SHEET001 sheet not found
//	TYPE001  value does not match requested dtype
//	PROF001  invalid load profile
//	UPL001   too many concurrent loads  UPL004   request cancelled
//	UPL005   request timed out
//	RATE001  rate limited
//	ERR000   fallback
//
// Sentinel errors are matched with errors.Is first; the remaining entries
// are matched case-insensitively on the error text. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

// ErrTooManyLoads is returned when every load slot is busy.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

var errorPatterns = []errorPattern{
	{
		target: ErrFileNotFound,
		msg: UserMessage{
			Message: "The file does not exist",
			Action:  "Check the path and try again",
			Code:    "FILE001",
		},
	},
	{
		target: ErrUnsupportedFileType,
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Use csv, xls, xlsx, xlsm, ods, odt, or odf",
			Code:    "FILE002",
		},
	},
	{
		target: ErrEmptyFile,
		msg: UserMessage{
			Message: "The file has no columns to load",
			Action:  "Check that the file (or sheet) contains data",
			Code:    "FILE005",
		},
	},
	{
		target: ErrSheetNotFound,
		msg: UserMessage{
			Message: "The requested sheet does not exist",
			Action:  "List the workbook's sheets and pick one by name or position",
			Code:    "SHEET001",
		},
	},
	{
		target: ErrInvalidDelimiter,
		msg: UserMessage{
			Message: "The delimiter must be a single character",
			Action:  "Use a value such as \",\", \";\", \"|\" or \"\\t\"",
			Code:    "LOAD002",
		},
	},
	{
		target: ErrHeaderNamesMismatch,
		msg: UserMessage{
			Message: "The number of header names does not match the number of columns",
			Action:  "Provide one name per column",
			Code:    "LOAD003",
		},
	},
	{
		target: ErrEngineUnavailable,
		msg: UserMessage{
			Message: "This spreadsheet format cannot be read",
			Action:  "Save the workbook as .xlsx or .ods",
			Code:    "LOAD004",
		},
	},
	{
		target: ErrSheetTooLarge,
		msg: UserMessage{
			Message: "The sheet is larger than this loader accepts",
			Action:  "Split the sheet or remove unused rows and columns",
			Code:    "LOAD006",
		},
	},
	{
		target: ErrTooManyLoads,
		msg: UserMessage{
			Message: "Too many files are being loaded",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to load",
			Code:    "FILE004",
		},
	},
	{
		pattern: "too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE006",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "The file is not valid delimited text",
			Action:  "Check quoting and that the delimiter matches the file",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "fields in line",
		msg: UserMessage{
			Message: "A row has more fields than the header",
			Action:  "Check the delimiter or fix the offending line",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The workbook could not be opened",
			Action:  "Check that the file is not corrupted or password protected",
			Code:    "LOAD005",
		},
	},
	{
		pattern: "in column",
		msg: UserMessage{
			Message: "A value does not match the type requested for its column",
			Action:  "Fix the value or change the column's dtype",
			Code:    "TYPE001",
		},
	},
	{
		pattern: "invalid profile",
		msg: UserMessage{
			Message: "The load profile is invalid",
			Action:  "Fix the listed profile fields",
			Code:    "PROF001",
		},
	},
	{
		pattern: "parse profile",
		msg: UserMessage{
			Message: "The load profile is not valid YAML",
			Action:  "Fix the profile syntax",
			Code:    "PROF001",
		},
	},
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "Some of the load settings could not be read",
			Action:  "Check the submitted fields and try again",
			Code:    "FORM001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a load error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
		if ep.pattern != "" && strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError wraps err with its mapped message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
