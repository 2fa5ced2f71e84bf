package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// Connector maintains the websocket to the backend and pumps inbound
// envelopes into a bounded channel, preserving per-channel arrival order.
type Connector struct {
	addr  string
	token string

	conn    *websocket.Conn
	writeMu sync.Mutex

	Envelopes chan event.Envelope
	done      chan struct{}
}

func NewConnector(addr, token string) *Connector {
	return &Connector{
		addr:      addr,
		token:     token,
		Envelopes: make(chan event.Envelope, 256),
		done:      make(chan struct{}),
	}
}

func (c *Connector) Connect(ctx context.Context) error {
	url := fmt.Sprintf("ws://%s/ws", c.addr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.addr, err)
	}

	authMsg := struct {
		Token string `json:"token"`
	}{Token: c.token}
	if err := conn.WriteJSON(authMsg); err != nil {
		conn.Close()
		return fmt.Errorf("sending auth: %w", err)
	}

	c.conn = conn

	go c.readPump(ctx)

	return nil
}

// ConnectWithRetry attempts to connect with jittered exponential backoff.
func (c *Connector) ConnectWithRetry(ctx context.Context, maxAttempts int) error {
	backoff := 500 * time.Millisecond
	for i := 0; i < maxAttempts; i++ {
		if err := c.Connect(ctx); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff + time.Duration(rand.Intn(500))*time.Millisecond):
		}
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return fmt.Errorf("failed to connect after %d attempts", maxAttempts)
}

func (c *Connector) readPump(ctx context.Context) {
	defer func() {
		close(c.done)
		close(c.Envelopes)
		if c.conn != nil {
			c.conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("connection lost: %v", err)
			}
			return
		}

		var env event.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("dropping unreadable frame: %v", err)
			continue
		}

		select {
		case c.Envelopes <- env:
		case <-ctx.Done():
			return
		}
	}
}

// Send writes one envelope. Safe for concurrent use; request round-trips
// originate from many goroutines.
func (c *Connector) Send(env event.Envelope) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Connector) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Connector) Done() <-chan struct{} {
	return c.done
}
