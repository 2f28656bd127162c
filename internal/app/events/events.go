/*
Package events publishes watchlist changes so other systems can follow
which symbols users track.
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Action names a watchlist change.
type Action string

const (
	SymbolAdded   Action = "symbol_added"
	SymbolRemoved Action = "symbol_removed"
)

// Event is one watchlist change.
type Event struct {
	ID     uuid.UUID `json:"id"`
	UserID int64     `json:"user_id"`
	Symbol string    `json:"symbol"`
	Action Action    `json:"action"`
	At     time.Time `json:"at"`
}

// NewEvent stamps a change with a fresh id and the current time.
func NewEvent(userID int64, symbol string, action Action) Event {
	return Event{
		ID:     uuid.New(),
		UserID: userID,
		Symbol: symbol,
		Action: action,
		At:     time.Now().UTC(),
	}
}

// Publisher delivers watchlist events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// KafkaWriter is the part of *kafka.Writer the publisher needs.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by user id so one user's
// changes stay ordered within a partition.
type KafkaPublisher struct {
	writer KafkaWriter
}

func NewKafkaPublisher(writer KafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewKafkaWriter returns a writer for topic on brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.UserID, 10)),
		Value: payload,
		Time:  e.At,
	})
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
