package req

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/pkg/errs"
)

func postForm(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseForm(t *testing.T) {
	r := postForm(url.Values{"symbol": {"  aapl \n"}}.Encode())

	require.Nil(t, ParseForm(httptest.NewRecorder(), r))
	assert.Equal(t, "aapl", FormValue(r, "symbol"))
	assert.Equal(t, "", FormValue(r, "missing"))
}

func TestParseForm_TooLarge(t *testing.T) {
	r := postForm("symbol=" + strings.Repeat("A", int(MaxFormBytes)+1))

	customErr := ParseForm(httptest.NewRecorder(), r)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrRequestEntityTooLarge, customErr.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, customErr.Status)
}

func TestParseForm_Malformed(t *testing.T) {
	r := postForm("symbol=%zz")

	customErr := ParseForm(httptest.NewRecorder(), r)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrFormParseFailed, customErr.Code)
}
