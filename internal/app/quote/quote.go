/*
Package quote fetches a ticker's display name, price and percent change from
a configurable quote page.
*/
package quote

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is the scraped view of one symbol. All fields are display text.
type Quote struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Price           string `json:"price"`
	PercentIncrease string `json:"percent_increase"`
}

// Change parses PercentIncrease into a number. It accepts the common page
// formats "+0.45%", "-1.2 (-0.45%)" and "(+0.45%)"; when a parenthesised
// part is present it wins.
func (q Quote) Change() (decimal.Decimal, bool) {
	s := q.PercentIncrease
	if open := strings.LastIndex(s, "("); open >= 0 {
		s = s[open+1:]
		if end := strings.Index(s, ")"); end >= 0 {
			s = s[:end]
		}
	}
	s = strings.NewReplacer("%", "", "+", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Direction is "up", "down" or "flat"; empty when the change cannot be parsed.
func (q Quote) Direction() string {
	d, ok := q.Change()
	if !ok {
		return ""
	}
	switch d.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	default:
		return "flat"
	}
}

// Outcome tags a fetch result.
type Outcome int

const (
	// Unknown is the zero value; no fetch has produced it.
	Unknown Outcome = iota
	// Found means every field was extracted.
	Found
	// NotFound means the page answered but did not carry the expected fields.
	NotFound
	// Failed means the page could not be retrieved.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one fetch. Quote is only meaningful when
// Outcome is Found; Err explains NotFound and Failed.
type Result struct {
	Symbol  string
	Outcome Outcome
	Quote   Quote
	Err     error
}

// OK reports whether the quote was found.
func (r Result) OK() bool {
	return r.Outcome == Found
}
