/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat and Content Errors
	ErrMessageEmpty:      {Code: ErrMessageEmpty, Message: "Message is empty."},
	ErrMessageTooLong:    {Code: ErrMessageTooLong, Message: "Message too long (max %d characters)."},
	ErrAccountRestricted: {Code: ErrAccountRestricted, Message: "Your account is restricted."},
	ErrTypingBlocked:     {Code: ErrTypingBlocked, Message: "Your typing has been blocked due to repeated violations. Contact admin for help."},
	ErrMessageSendFailed: {Code: ErrMessageSendFailed, Message: "Failed to send message."},

	// 3xxx: User, Session, and Security Errors
	ErrInvalidCredentials:     {Code: ErrInvalidCredentials, Message: "Invalid email or password.", Status: http.StatusUnauthorized},
	ErrEmailAlreadyRegistered: {Code: ErrEmailAlreadyRegistered, Message: "Email already registered.", Status: http.StatusBadRequest},
	ErrEmailNotVerified:       {Code: ErrEmailNotVerified, Message: "Please verify your email first.", Status: http.StatusUnauthorized},
	ErrAlreadyVerified:        {Code: ErrAlreadyVerified, Message: "Email already verified.", Status: http.StatusBadRequest},
	ErrOTPInvalid:             {Code: ErrOTPInvalid, Message: "Invalid OTP.", Status: http.StatusBadRequest},
	ErrOTPExpired:             {Code: ErrOTPExpired, Message: "OTP has expired. Please request a new one.", Status: http.StatusBadRequest},
	ErrOTPMissing:             {Code: ErrOTPMissing, Message: "No OTP found. Please request a new one.", Status: http.StatusBadRequest},
	ErrUserNotFound:           {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrAccountBlocked:         {Code: ErrAccountBlocked, Message: "Your account is blocked.", Status: http.StatusForbidden},
	ErrAccountDeleted:         {Code: ErrAccountDeleted, Message: "Your account has been deleted.", Status: http.StatusUnauthorized},
	ErrUnauthorized:           {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrAdminOnly:              {Code: ErrAdminOnly, Message: "Administrator access required.", Status: http.StatusForbidden},
	ErrAdminProtected:         {Code: ErrAdminProtected, Message: "This action cannot be applied to an administrator account.", Status: http.StatusBadRequest},
	ErrInvalidBlockType:       {Code: ErrInvalidBlockType, Message: "Invalid block type.", Status: http.StatusBadRequest},
	ErrPasswordTooShort:       {Code: ErrPasswordTooShort, Message: "Password must be at least %d characters.", Status: http.StatusBadRequest},
	ErrPasswordMismatch:       {Code: ErrPasswordMismatch, Message: "Passwords do not match.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:        {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageFailure: {Code: ErrStorageFailure, Message: "Service temporarily unavailable. Please try again.", Status: http.StatusInternalServerError},
}
