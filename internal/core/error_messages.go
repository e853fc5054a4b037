package core

// Error codes reference
//
// Every error surfaced to users carries a code that support staff can look
// up here.
//
//	IMP001 - A line does not match the kind's format (exchange.ErrInvalidRecordFormat)
//	IMP002 - A value could not be parsed (exchange.ErrInflation)
//	IMP003 - A field failed validation (exchange.ErrInvalidFieldValue)
//	DB001  - Duplicate natural key (store.ErrDuplicate)
//	DB002  - Referenced record missing (store.ErrNotFound)
//	DB004  - Connection refused
//	DB005  - Connection reset
//	DB006  - Timeout
//	DB007  - Database busy or deadlocked
//	JOB001 - Too many jobs (ErrJobsBusy)
//	JOB002 - Job not found (ErrJobNotFound)
//	JOB003 - Job cancelled (context.Canceled)
//	JOB004 - Job timed out (context.DeadlineExceeded)
//	KND001 - Unknown kind (ErrUnknownKind)
//	FILE001 - File not found
//	FILE002 - File too large
//	FILE004 - No file provided
//	ERR000 - Anything else; check the logs for the technical error
//
// Typed errors are matched with errors.Is first, in table order. Driver
// errors that are not wrapped in a sentinel fall back to case-insensitive
// substring patterns.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/shiprec/internal/exchange"
	"github.com/JonMunkholm/shiprec/internal/store"
)

// ErrUnknownKind is returned for a kind key that is not registered.
var ErrUnknownKind = errors.New("unknown kind")

// ErrJobNotFound is returned for a job id the service does not track.
var ErrJobNotFound = errors.New("job not found")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
	Detail  string `json:"detail,omitempty"`
}

type typedError struct {
	target error
	msg    UserMessage
	// detail copies err.Error() into the message; set for errors whose text
	// is already written for users.
	detail bool
}

var typedErrors = []typedError{
	{
		target: exchange.ErrInvalidRecordFormat,
		msg: UserMessage{
			Message: "A line does not match the expected format",
			Action:  "Check quoting, column count and field formats against an exported file",
			Code:    "IMP001",
		},
		detail: true,
	},
	{
		target: exchange.ErrInflation,
		msg: UserMessage{
			Message: "A value could not be read",
			Action:  "Check numbers and dates (DD-Mon-YYYY) on the reported line",
			Code:    "IMP002",
		},
		detail: true,
	},
	{
		target: exchange.ErrInvalidFieldValue,
		msg: UserMessage{
			Message: "A field has an invalid value or refers to missing reference data",
			Action:  "Correct the value or import the reference data first",
			Code:    "IMP003",
		},
		detail: true,
	},
	{
		target: store.ErrDuplicate,
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Remove duplicate rows from your file; earlier rows were already saved",
			Code:    "DB001",
		},
	},
	{
		target: store.ErrNotFound,
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure reference data is imported first",
			Code:    "DB002",
		},
	},
	{
		target: ErrJobsBusy,
		msg: UserMessage{
			Message: "Another job for this kind is already running",
			Action:  "Please wait a moment and try again",
			Code:    "JOB001",
		},
	},
	{
		target: ErrJobNotFound,
		msg: UserMessage{
			Message: "Job not found",
			Action:  "The job may have expired. Check the job history instead",
			Code:    "JOB002",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Job was cancelled",
			Action:  "Start a new job when ready",
			Code:    "JOB003",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Job timed out",
			Action:  "Split the file into smaller parts or raise the job timeout",
			Code:    "JOB004",
		},
	},
	{
		target: ErrUnknownKind,
		msg: UserMessage{
			Message: "Unknown kind",
			Action:  "Use one of the kinds listed by /api/kinds",
			Code:    "KND001",
		},
	},
	{
		target: os.ErrNotExist,
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file path",
			Code:    "FILE001",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages. The first match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller parts",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Send the CSV as the request body or as the 'file' form field",
			Code:    "FILE004",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := fmt.Errorf("persist record 3: %w", store.ErrDuplicate)
//	msg := MapError(err)
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, te := range typedErrors {
		if errors.Is(err, te.target) {
			msg := te.msg
			if te.detail {
				msg.Detail = detailOf(err, te.target)
			}
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// detailOf returns the text of the innermost typed exchange error so that
// wrapping context does not leak into user messages.
func detailOf(err, target error) string {
	var formatErr *exchange.FormatError
	var fieldErr *exchange.FieldError
	var inflErr *exchange.InflationError
	switch {
	case target == exchange.ErrInvalidRecordFormat && errors.As(err, &formatErr):
		return formatErr.Error()
	case target == exchange.ErrInvalidFieldValue && errors.As(err, &fieldErr):
		return fieldErr.Error()
	case target == exchange.ErrInflation && errors.As(err, &inflErr):
		return inflErr.Error()
	}
	return err.Error()
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Detail != "" {
		return fmt.Sprintf("%s: %s (Code: %s). %s", msg.Message, msg.Detail, msg.Code, msg.Action)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
