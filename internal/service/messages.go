package service

// messages.go turns technical errors into messages a reviewer can act on.
//
// # Error Codes Reference
//
// Users quote the code to support; the code identifies the category and the
// check that fired.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File exceeds the upload size limit
//	FILE002 - File could not be parsed (fallback for any FormatError)
//	FILE003 - Unsupported file extension
//	FILE004 - No file in the request
//	FILE005 - File is empty
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Supplier name missing
//	VAL002 - No product name column could be identified
//	VAL003 - Catalog file has no accounting code column
//	VAL004 - Markup file has no item elements, or none with a name
//	VAL005 - Invalid request parameter
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - Too many uploads in progress
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//
// # Matching Errors (MATCH001-MATCH099)
//
//	MATCH001 - Another matching run holds the lock
//	MATCH002 - Supplier item not found
//	MATCH003 - Master item not found
//	MATCH004 - Run lock lost before the outcomes were saved
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Nothing matched yet, nothing to export
//	EXP002 - Unsupported export format
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key
//	DB002 - Foreign key violation
//	DB003 - Connection refused
//	DB004 - Connection reset
//	DB005 - Deadlock
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Typed errors are checked first with errors.Is/As. Remaining errors are
// matched by case-insensitive substring, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/runlock"
)

// ErrInvalidParameter marks a malformed request parameter.
var ErrInvalidParameter = errors.New("invalid parameter")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the price list into smaller files",
		Code:    "FILE001",
	}
	msgUnparsable = UserMessage{
		Message: "The file could not be read",
		Action:  "Check that the file is a valid CSV, Excel or XML price list",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a price list to upload",
		Code:    "FILE004",
	}
	msgSupplier = UserMessage{
		Message: "Supplier name is required",
		Action:  "Enter the supplier name before uploading",
		Code:    "VAL001",
	}
	msgInvalidParam = UserMessage{
		Message: "A request parameter is invalid",
		Action:  "Check the request and try again",
		Code:    "VAL005",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or run matching again",
		Code:    "UPL005",
	}
	msgRunInProgress = UserMessage{
		Message: "A matching run is already in progress",
		Action:  "Wait for it to finish, then refresh the results",
		Code:    "MATCH001",
	}
	msgLeaseLost = UserMessage{
		Message: "The matching run was stopped before saving results",
		Action:  "Run matching again",
		Code:    "MATCH004",
	}
	msgRecordNotFound = UserMessage{
		Message: "Supplier item not found",
		Action:  "Refresh the results list",
		Code:    "MATCH002",
	}
	msgEntryNotFound = UserMessage{
		Message: "Master item not found",
		Action:  "Search the catalog again and pick another item",
		Code:    "MATCH003",
	}
	msgEmptyExport = UserMessage{
		Message: "No matched items to export",
		Action:  "Run matching or confirm matches before exporting",
		Code:    "EXP001",
	}
	msgExportFormat = UserMessage{
		Message: "Unsupported export format",
		Action:  "Use format=csv or format=xml",
		Code:    "EXP002",
	}
)

// typedMessages is consulted before the string patterns.
var typedMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrNoFile, msgNoFile},
	{ErrSupplierRequired, msgSupplier},
	{ErrInvalidParameter, msgInvalidParam},
	{ErrTooManyUploads, msgBusy},
	{runlock.ErrLocked, msgRunInProgress},
	{runlock.ErrLeaseLost, msgLeaseLost},
	{domain.ErrEmptyExport, msgEmptyExport},
	{domain.ErrUnsupportedExportFormat, msgExportFormat},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern maps a lowercase substring of err.Error() to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific patterns before general ones.
var errorPatterns = []errorPattern{
	// Ingestion reasons carried by FormatError.
	{"unsupported file format", UserMessage{
		Message: "This file type is not supported",
		Action:  "Upload a .csv, .xlsx or .xml price list",
		Code:    "FILE003",
	}},
	{"unsupported catalog format", UserMessage{
		Message: "This catalog file type is not supported",
		Action:  "Upload the catalog as .csv or .xlsx",
		Code:    "FILE003",
	}},
	{"file is empty", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a price list with data rows",
		Code:    "FILE005",
	}},
	{"no name column", UserMessage{
		Message: "No product name column was found",
		Action:  "Add a header such as Наименование or Name",
		Code:    "VAL002",
	}},
	{"no accounting code column", UserMessage{
		Message: "The catalog has no accounting code column",
		Action:  "Add a Код1С or code_1c column",
		Code:    "VAL003",
	}},
	{"no item", UserMessage{
		Message: "No products were found in the XML file",
		Action:  "Check that items are <Item> or <Товар> elements with a name",
		Code:    "VAL004",
	}},

	// Database.
	{"duplicate key", UserMessage{
		Message: "A record with this key already exists",
		Action:  "Check the file for duplicate accounting codes",
		Code:    "DB001",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Refresh and try again",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB003",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB005",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message.
// It returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, tm := range typedMessages {
		if errors.Is(err, tm.target) {
			return tm.msg
		}
	}

	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		if nf.Resource == domain.ResourceEntry {
			return msgEntryNotFound
		}
		return msgRecordNotFound
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.Is(err, domain.ErrFormat) {
		return msgUnparsable
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
