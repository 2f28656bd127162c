package errs

import "net/http"

// errorMap holds the user-facing message and HTTP status of every code.
// A zero Status means the error is rendered back into the page with 200 OK.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to read the submitted form.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx
	ErrInvalidSymbol:   {Code: ErrInvalidSymbol, Message: "Stock symbol is not a valid symbol."},
	ErrAlreadyTracking: {Code: ErrAlreadyTracking, Message: "You are already tracking this stock."},
	ErrSymbolRequired:  {Code: ErrSymbolRequired, Message: "Please choose a stock symbol."},
	ErrNotTracking:     {Code: ErrNotTracking, Message: "You are not tracking %s."},

	// 3xxx
	ErrInvalidCredentials:         {Code: ErrInvalidCredentials, Message: "Invalid username or password."},
	ErrPasswordMismatch:           {Code: ErrPasswordMismatch, Message: "Passwords do not match."},
	ErrInvalidUsernameAndPassword: {Code: ErrInvalidUsernameAndPassword, Message: "Username and password contain invalid characters."},
	ErrInvalidUsername:            {Code: ErrInvalidUsername, Message: "Username may only contain letters and spaces."},
	ErrInvalidPassword:            {Code: ErrInvalidPassword, Message: "Password contains invalid characters."},
	ErrUsernameTaken:              {Code: ErrUsernameTaken, Message: "Username is already in use."},
	ErrUnauthorized:               {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrPasswordTooLong:            {Code: ErrPasswordTooLong, Message: "Password must be at most 72 characters."},
	ErrUsernameTooLong:            {Code: ErrUsernameTooLong, Message: "Username must be at most 64 characters."},

	// 5xxx
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
