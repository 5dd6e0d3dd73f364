/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Chat and Content Errors
const (
	// ErrMessageEmpty indicates that the message content was empty after trimming.
	ErrMessageEmpty = 2101

	// ErrMessageTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageTooLong = 2102

	// ErrAccountRestricted indicates the sender's account is blocked or deleted.
	ErrAccountRestricted = 2103

	// ErrTypingBlocked indicates the sender's typing has been locked after repeated violations.
	ErrTypingBlocked = 2104

	// ErrMessageSendFailed indicates the message could not be persisted or delivered.
	ErrMessageSendFailed = 2105
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidCredentials indicates a failed email/password login attempt.
	ErrInvalidCredentials = 3001

	// ErrEmailAlreadyRegistered indicates the email is taken by a verified account.
	ErrEmailAlreadyRegistered = 3002

	// ErrEmailNotVerified indicates the account has not completed OTP verification.
	ErrEmailNotVerified = 3003

	// ErrAlreadyVerified indicates the account is already verified.
	ErrAlreadyVerified = 3004

	// ErrOTPInvalid indicates the provided OTP code did not match.
	ErrOTPInvalid = 3005

	// ErrOTPExpired indicates the OTP code is past its expiry.
	ErrOTPExpired = 3006

	// ErrOTPMissing indicates no OTP has been issued for the account.
	ErrOTPMissing = 3007

	// ErrUserNotFound indicates that the referenced user account does not exist.
	ErrUserNotFound = 3008

	// ErrAccountBlocked indicates the account is currently blocked.
	ErrAccountBlocked = 3009

	// ErrAccountDeleted indicates the account has been soft-deleted.
	ErrAccountDeleted = 3010

	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = 3011

	// ErrAdminOnly indicates the caller lacks administrator privileges.
	ErrAdminOnly = 3012

	// ErrAdminProtected indicates a forbidden enforcement action against an admin account.
	ErrAdminProtected = 3013

	// ErrInvalidBlockType indicates an unknown block type was requested.
	ErrInvalidBlockType = 3014

	// ErrPasswordTooShort indicates the password failed the minimum length check.
	ErrPasswordTooShort = 3015

	// ErrPasswordMismatch indicates password and confirmation do not match.
	ErrPasswordMismatch = 3016
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailure indicates the persistence layer was unavailable or failed.
	ErrStorageFailure = 5001
)
