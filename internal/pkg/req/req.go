/*
Package req parses HTML form submissions with a bounded body size.
*/
package req

import (
	"errors"
	"net/http"
	"strings"

	"stockwatch/internal/pkg/errs"
)

// MaxFormBytes bounds a form body. The forms carry a few short fields.
const MaxFormBytes int64 = 64 << 10

// ParseForm reads an urlencoded or multipart form body into r.Form.
func ParseForm(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(MaxFormBytes)
	} else {
		err = r.ParseForm()
	}

	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}

// FormValue returns the whitespace-trimmed value of a parsed form field.
func FormValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
