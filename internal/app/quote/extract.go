package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// ErrMissingField is returned by an Extractor when the page lacks a field
// or the field is empty.
var ErrMissingField = errors.New("quote field missing")

// Fields are the raw extracted texts of a quote page.
type Fields struct {
	Name   string
	Price  string
	Change string
}

// Selectors locate the three fields. Their syntax depends on the extractor:
// CSS selectors for HTML pages, JSONPath expressions for JSON endpoints.
type Selectors struct {
	Name   string
	Price  string
	Change string
}

// Extractor turns a fetched body into quote fields.
type Extractor interface {
	Extract(body io.Reader) (Fields, error)
}

// HTMLExtractor reads fields from an HTML page using the first element
// matching each CSS selector.
type HTMLExtractor struct {
	sel Selectors
}

func NewHTMLExtractor(sel Selectors) *HTMLExtractor {
	return &HTMLExtractor{sel: sel}
}

func (e *HTMLExtractor) Extract(body io.Reader) (Fields, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return Fields{}, fmt.Errorf("parse html: %w", err)
	}

	text := func(field, selector string) (string, error) {
		s := strings.TrimSpace(doc.Find(selector).First().Text())
		if s == "" {
			return "", fmt.Errorf("%w: %s (%s)", ErrMissingField, field, selector)
		}
		return s, nil
	}

	var f Fields
	if f.Name, err = text("name", e.sel.Name); err != nil {
		return Fields{}, err
	}
	if f.Price, err = text("price", e.sel.Price); err != nil {
		return Fields{}, err
	}
	if f.Change, err = text("change", e.sel.Change); err != nil {
		return Fields{}, err
	}
	return f, nil
}

// JSONExtractor reads fields from a JSON document with JSONPath expressions.
type JSONExtractor struct {
	sel Selectors
}

func NewJSONExtractor(sel Selectors) *JSONExtractor {
	return &JSONExtractor{sel: sel}
}

func (e *JSONExtractor) Extract(body io.Reader) (Fields, error) {
	var doc any
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return Fields{}, fmt.Errorf("decode json: %w", err)
	}

	value := func(field, path string) (string, error) {
		v, err := jsonpath.Get(path, doc)
		if err != nil {
			return "", fmt.Errorf("%w: %s (%s): %v", ErrMissingField, field, path, err)
		}
		// wildcard and slice expressions yield a list; keep the first match
		if list, ok := v.([]any); ok {
			if len(list) == 0 {
				return "", fmt.Errorf("%w: %s (%s)", ErrMissingField, field, path)
			}
			v = list[0]
		}

		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case float64:
			s = decimal.NewFromFloat(t).String()
		case nil:
		default:
			s = fmt.Sprint(t)
		}
		if s == "" {
			return "", fmt.Errorf("%w: %s (%s)", ErrMissingField, field, path)
		}
		return s, nil
	}

	var (
		f   Fields
		err error
	)
	if f.Name, err = value("name", e.sel.Name); err != nil {
		return Fields{}, err
	}
	if f.Price, err = value("price", e.sel.Price); err != nil {
		return Fields{}, err
	}
	if f.Change, err = value("change", e.sel.Change); err != nil {
		return Fields{}, err
	}
	return f, nil
}
