/*
Package errs defines the application error codes and the CustomError type
handlers use to report a failure to the user.
*/
package errs

// 1xxx: General request handling errors
const (
	// ErrFormParseFailed indicates the form body could not be parsed.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates the client sent too many requests.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Watchlist errors
const (
	// ErrInvalidSymbol indicates the symbol could not be resolved to a quote.
	ErrInvalidSymbol = 2101

	// ErrAlreadyTracking indicates the symbol is already on the watchlist.
	ErrAlreadyTracking = 2102

	// ErrSymbolRequired indicates no symbol was selected on the remove form.
	ErrSymbolRequired = 2103

	// ErrNotTracking indicates the submitted symbol is not on the watchlist.
	ErrNotTracking = 2104
)

// 3xxx: Account and session errors
const (
	// ErrInvalidCredentials is the single login failure, whatever the cause.
	ErrInvalidCredentials = 3001

	// ErrPasswordMismatch indicates the confirmation differs from the password.
	ErrPasswordMismatch = 3002

	// ErrInvalidUsernameAndPassword indicates both fields failed their charset check.
	ErrInvalidUsernameAndPassword = 3003

	// ErrInvalidUsername indicates the username failed its charset check.
	ErrInvalidUsername = 3004

	// ErrInvalidPassword indicates the password failed its charset check.
	ErrInvalidPassword = 3005

	// ErrUsernameTaken indicates another account already uses the username.
	ErrUsernameTaken = 3006

	// ErrUnauthorized indicates the request needs a signed-in session.
	ErrUnauthorized = 3007

	// ErrPasswordTooLong indicates the password exceeds what bcrypt can hash.
	ErrPasswordTooLong = 3008

	// ErrUsernameTooLong indicates the username exceeds the stored column width.
	ErrUsernameTooLong = 3009
)

// 5xxx: Internal system errors
const (
	// ErrUnknown represents an unclassified server error.
	ErrUnknown = 5000
)
