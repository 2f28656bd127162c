package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"stockwatch/internal/app/quote"
	"stockwatch/internal/pkg/errs"
	"stockwatch/internal/pkg/logx"
	"stockwatch/internal/pkg/randx"
)

const (
	// timeout for a single write to the socket.
	writeWait = 10 * time.Second

	// how long to wait for a pong before giving up on the peer.
	pongWait = 60 * time.Second

	// ping interval, shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// the client only sends small control frames.
	maxMessageSize = 1024

	sendBuffer = 64
)

// SymbolLister returns the current watchlist of the connected user.
type SymbolLister func(ctx context.Context) ([]string, error)

// Client is one dashboard connection.
type Client struct {
	conn    *websocket.Conn
	symbols SymbolLister
	quotes  quote.Source

	send chan []byte

	// refreshing is set while a refresh is streaming; extra requests are dropped.
	refreshing atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection. ctx bounds every fetch the client
// starts; it is cancelled when the connection ends.
func NewClient(ctx context.Context, conn *websocket.Conn, userID int64, symbols SymbolLister, quotes quote.Source) *Client {
	clientLogger := logx.FromContext(ctx).With().
		Str("client_id", randx.UUID()).
		Int64("user_id", userID).
		Logger()

	ctx, cancel := context.WithCancel(ctx)

	return &Client{
		conn:    conn,
		symbols: symbols,
		quotes:  quotes,
		send:    make(chan []byte, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
		logger:  clientLogger,
	}
}

// Serve runs the write loop in the background and the read loop in the
// caller's goroutine until the peer goes away.
func (c *Client) Serve() {
	go c.WritePump()
	c.ReadPump()
}

// ReadPump reads control frames and keeps the read deadline fresh on pongs.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundMessage(messageBytes)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.logger.Debug().Msg("Live client disconnecting")
	c.cancel()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

func (c *Client) processInboundMessage(messageBytes []byte) {
	var inbound Message
	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case TypeRefresh:
		if !c.refreshing.CompareAndSwap(false, true) {
			c.logger.Debug().Msg("Refresh already running, request ignored")
			return
		}
		go func() {
			defer c.refreshing.Store(false)
			c.refresh()
		}()

	default:
		c.logger.Warn().Str("msg_type", string(inbound.Type)).Msg("Client sent unsupported message type")
	}
}

// refresh streams one quote frame per symbol, in order, then a done frame.
func (c *Client) refresh() {
	symbols, err := c.symbols(c.ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to load watchlist for refresh")
		c.SendError(errs.NewError(errs.ErrUnknown))
		return
	}

	for _, symbol := range symbols {
		if c.ctx.Err() != nil {
			return
		}
		res := c.quotes.Fetch(c.ctx, symbol)
		if err := c.sendMessage(TypeQuote, NewQuotePayload(res)); err != nil {
			return
		}
	}

	_ = c.sendMessage(TypeDone, DonePayload{Count: len(symbols)})
}

// WritePump drains the send queue and pings the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message := <-c.send:
			if !c.write(websocket.TextMessage, message) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}

		case <-c.ctx.Done():
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing message")
		return false
	}

	return true
}

// sendMessage queues a frame, waiting while the queue is full until the
// connection ends.
func (c *Client) sendMessage(t MessageType, payload any) error {
	msg, err := NewMessage(t, payload)
	if err != nil {
		return fmt.Errorf("build %s message: %w", t, err)
	}
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", t, err)
	}

	select {
	case c.send <- messageBytes:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// SendError queues an error frame.
func (c *Client) SendError(err error) {
	payload := ErrorPayload{Code: errs.ErrUnknown, Message: err.Error()}

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		payload.Code = customErr.Code
		payload.Message = customErr.Message
	}

	if sendErr := c.sendMessage(TypeError, payload); sendErr != nil {
		c.logger.Debug().Err(sendErr).Msg("Failed to queue error message")
	}
}
