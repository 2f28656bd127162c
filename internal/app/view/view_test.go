package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesEveryPage(t *testing.T) {
	tmpl, err := New()
	require.NoError(t, err)

	for _, page := range []string{PageIndex, PageLogin, PageRegister, PageAdd, PageRemove} {
		var buf bytes.Buffer
		require.NoError(t, tmpl.Render(&buf, page, Page{}), page)
		assert.Contains(t, buf.String(), "<!DOCTYPE html>")
	}
}

func TestRender_UnknownPage(t *testing.T) {
	tmpl, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.Error(t, tmpl.Render(&buf, "nope", Page{}))
	assert.Zero(t, buf.Len())
}

func TestRender_EscapesMessage(t *testing.T) {
	tmpl, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Render(&buf, PageLogin, Page{Message: "<script>x</script>"}))
	assert.NotContains(t, buf.String(), "<script>x</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestRender_Dashboard(t *testing.T) {
	tmpl, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.Render(&buf, PageIndex, Page{
		Username: "alice",
		Rows: []QuoteRow{
			{Symbol: "AAPL", Name: "Apple Inc.", Price: "189.84", Change: "+0.65%", Direction: "up", Available: true},
			{Symbol: "GONE"},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Apple Inc.")
	assert.Contains(t, out, `class="up"`)
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "Log out (alice)")
}

func TestRender_RemoveListsSymbols(t *testing.T) {
	tmpl, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Render(&buf, PageRemove, Page{Username: "a", Symbols: []string{"IBM", "MSFT"}}))
	assert.Contains(t, buf.String(), `<option value="IBM">IBM</option>`)
	assert.Contains(t, buf.String(), `<option value="MSFT">MSFT</option>`)
}
