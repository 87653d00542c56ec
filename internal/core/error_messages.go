package core

// # Error Codes Reference
//
// User-facing messages with codes for support reference. Users quote the
// code; support looks it up here.
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//	DB007 - Deadlock: Database was busy with conflicting operations
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid request: A field failed validation
//	VAL002 - Invalid currency: Currency code is not a valid ISO 4217 code
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: "Maximum file size 50MB"
//	FILE002 - Wrong structure: "Table structure is wrong. Please download sample and follow it's structure."
//	FILE004 - No file: No file was selected
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Upload superseded by a newer file
//	UPL002 - System busy: Too many uploads in progress
//	UPL003 - Session expired: Upload session not found
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//	UPL006 - Not ready: Upload has not finished processing
//	UPL007 - Already confirmed: Upload was already added to a list
//
// # List Errors (LST001-LST099)
//
//	LST001 - Unknown list target
//	LST002 - List is awaiting approval and read-only
//	LST003 - Item not found
//	LST004 - Shopping list not found
//
// # Quote (QTE) / Masquerade (MSQ) / Enrichment (ENR) / Tips (TIP)
//
//	QTE001 - Quote note too long
//	MSQ001 - Company not found
//	MSQ002 - No sales rep on the request
//	ENR001 - Product lookup unavailable
//	TIP001 - Tip already dismissed
//
// # Rate Limiting (RATE001) and Default (ERR000)
//
// # Matching
//
// Sentinel errors are matched with errors.Is first, so wrapped errors keep
// their code. Anything else falls back to case-insensitive substring
// patterns; the first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	// =========================================================================
	// File Errors
	// =========================================================================
	{ErrFileTooLarge, UserMessage{
		Message: "Maximum file size 50MB",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}},
	{ErrFileStructure, UserMessage{
		Message: "Table structure is wrong. Please download sample and follow it's structure.",
		Action:  "Upload a .csv file that follows the sample",
		Code:    "FILE002",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}},

	// =========================================================================
	// Upload Errors
	// =========================================================================
	{ErrSuperseded, UserMessage{
		Message: "Upload was replaced by a newer file",
		Action:  "Wait for the latest upload to finish",
		Code:    "UPL001",
	}},
	{ErrTooManyUploads, UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{ErrSessionNotFound, UserMessage{
		Message: "Upload session not found",
		Action:  "The upload may have expired. Please start a new upload",
		Code:    "UPL003",
	}},
	{ErrSessionBusy, UserMessage{
		Message: "Upload is still processing",
		Action:  "Wait for the current file to finish or re-upload",
		Code:    "UPL002",
	}},
	{ErrConfirmed, UserMessage{
		Message: "This upload was already added to a list",
		Action:  "Upload the file again to add it once more",
		Code:    "UPL007",
	}},
	{ErrNotReady, UserMessage{
		Message: "Upload has not finished processing",
		Action:  "Wait for the file to finish processing, then confirm",
		Code:    "UPL006",
	}},

	// =========================================================================
	// List, Quote, Masquerade, Enrichment
	// =========================================================================
	{ErrUnknownTarget, UserMessage{
		Message: "Unknown list",
		Action:  "Choose a shopping list or quote",
		Code:    "LST001",
	}},
	{ErrListReadOnly, UserMessage{
		Message: "This shopping list is waiting for approval and cannot be changed",
		Action:  "Ask an approver to review the list first",
		Code:    "LST002",
	}},
	{ErrItemNotFound, UserMessage{
		Message: "Item not found",
		Action:  "Refresh the list and try again",
		Code:    "LST003",
	}},
	{ErrListNotFound, UserMessage{
		Message: "Shopping list not found",
		Action:  "Check the list still exists and try again",
		Code:    "LST004",
	}},
	{ErrNoteTooLong, UserMessage{
		Message: "Quote note is too long",
		Action:  fmt.Sprintf("Keep the note under %d characters", MaxQuoteNoteLength),
		Code:    "QTE001",
	}},
	{ErrCompanyNotFound, UserMessage{
		Message: "Company not found",
		Action:  "Refresh the company list and try again",
		Code:    "MSQ001",
	}},
	{ErrNoSalesRep, UserMessage{
		Message: "Only sales reps can masquerade",
		Action:  "Sign in as a sales rep",
		Code:    "MSQ002",
	}},
	{ErrTipNotFound, UserMessage{
		Message: "Notification already dismissed",
		Action:  "Refresh the page",
		Code:    "TIP001",
	}},
	{ErrEnrichment, UserMessage{
		Message: "Product lookup is unavailable",
		Action:  "Please upload the file again",
		Code:    "ENR001",
	}},
	{ErrInvalidCurrency, UserMessage{
		Message: "Invalid currency code",
		Action:  "Use a three-letter ISO currency code",
		Code:    "VAL002",
	}},
	{ErrInvalidInput, UserMessage{
		Message: "Invalid request",
		Action:  "Check the highlighted fields and try again",
		Code:    "VAL001",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors from drivers and the runtime that have no
// sentinel. Specific patterns come before general ones.
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
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
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

// defaultMessage is returned when nothing matches (ERR000). Support should
// check application logs for the original technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	err := fmt.Errorf("start upload: %w", ErrFileTooLarge)
//	msg := MapError(err)
//	// msg.Code == "FILE001"
//	// msg.Message == "Maximum file size 50MB"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
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

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
