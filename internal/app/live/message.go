/*
Package live streams fresh quotes to a dashboard over a WebSocket.

The browser sends {"type":"refresh"}; the server answers with one "quote"
message per tracked symbol, in watchlist order, followed by "done".
*/
package live

import (
	"encoding/json"

	"stockwatch/internal/app/quote"
)

// MessageType names a frame on the live socket.
type MessageType string

const (
	TypeRefresh MessageType = "refresh"
	TypeQuote   MessageType = "quote"
	TypeDone    MessageType = "done"
	TypeError   MessageType = "error"
)

// Message is the envelope of every frame.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// QuotePayload is the body of a quote frame.
type QuotePayload struct {
	Symbol          string `json:"symbol"`
	Name            string `json:"name,omitempty"`
	Price           string `json:"price,omitempty"`
	PercentIncrease string `json:"percent_increase,omitempty"`
	Direction       string `json:"direction,omitempty"`
	Available       bool   `json:"available"`
}

// DonePayload closes a refresh.
type DonePayload struct {
	Count int `json:"count"`
}

// ErrorPayload reports a failed refresh.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewQuotePayload converts a fetch result into a frame body.
func NewQuotePayload(res quote.Result) QuotePayload {
	p := QuotePayload{Symbol: res.Symbol, Available: res.OK()}
	if p.Available {
		p.Name = res.Quote.Name
		p.Price = res.Quote.Price
		p.PercentIncrease = res.Quote.PercentIncrease
		p.Direction = res.Quote.Direction()
	}
	return p
}

// NewMessage builds an envelope around payload.
func NewMessage(t MessageType, payload any) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}
