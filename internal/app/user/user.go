/*
Package user holds the account record of a watchlist owner and the
persistence used to look it up and edit its symbol list.
*/
package user

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is a registered account together with its tracked ticker symbols.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Symbols      []string
	CreatedAt    time.Time
}

// encodeSymbols serializes a symbol list as a JSON array; nil encodes as [].
func encodeSymbols(symbols []string) (string, error) {
	if symbols == nil {
		symbols = []string{}
	}
	raw, err := json.Marshal(symbols)
	if err != nil {
		return "", fmt.Errorf("encode symbols: %w", err)
	}
	return string(raw), nil
}

// decodeSymbols parses the stored JSON array. An empty column decodes as
// an empty list.
func decodeSymbols(raw string) ([]string, error) {
	symbols := []string{}
	if raw == "" {
		return symbols, nil
	}
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		return nil, fmt.Errorf("decode symbols %q: %w", raw, err)
	}
	return symbols, nil
}
