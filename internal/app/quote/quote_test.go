package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_Change(t *testing.T) {
	tests := []struct {
		text      string
		want      string
		ok        bool
		direction string
	}{
		{"+0.45%", "0.45", true, "up"},
		{"-1.20 (-0.65%)", "-0.65", true, "down"},
		{"(+2.10%)", "2.1", true, "up"},
		{"0.00%", "0", true, "flat"},
		{"1,234.5", "1234.5", true, "up"},
		{"", "0", false, ""},
		{"n/a", "0", false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			q := Quote{PercentIncrease: tc.text}
			got, ok := q.Change()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got.String())
			assert.Equal(t, tc.direction, q.Direction())
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestResult_ZeroValueIsNotOK(t *testing.T) {
	var res Result
	assert.Equal(t, Unknown, res.Outcome)
	assert.False(t, res.OK())

	assert.True(t, Result{Outcome: Found}.OK())
	assert.False(t, Result{Outcome: NotFound}.OK())
	assert.False(t, Result{Outcome: Failed}.OK())
}
