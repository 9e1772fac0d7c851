// Package client provides a chat client for the relay server over TCP or
// WebSocket transports.
package client

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/tkymnr/ptt-relay/internal/relay"
	"github.com/tkymnr/ptt-relay/pkg/protocol"
)

type transport int

const (
	transportTCP transport = iota
	transportWebSocket
)

// Client represents a chat client. Incoming frames are parsed and surfaced
// on the Messages channel; the channel closes when the server goes away.
type Client struct {
	address   string
	username  string
	transport transport
	conn      ClientConnection
	messages  chan protocol.Message
	mu        sync.RWMutex
	done      chan struct{}
	doneOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates a client that connects over TCP.
func New(address, username string) *Client {
	return &Client{
		address:   address,
		username:  username,
		transport: transportTCP,
		messages:  make(chan protocol.Message, 64),
		done:      make(chan struct{}),
	}
}

// NewWebSocket creates a client that connects over WebSocket.
// The address is a ws:// URL.
func NewWebSocket(address, username string) *Client {
	c := New(address, username)
	c.transport = transportWebSocket
	return c
}

// Connect establishes the connection and starts receiving.
func (c *Client) Connect() error {
	var conn ClientConnection
	var err error
	switch c.transport {
	case transportWebSocket:
		conn, err = DialWebSocket(c.address)
	default:
		conn, err = DialTCP(c.address)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.wg.Add(1)
	go c.receiveLines()

	return nil
}

// Disconnect closes the connection to the server.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.doneOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Join performs the handshake: the first line on the wire is the nickname.
func (c *Client) Join() error {
	return c.sendLine(c.username)
}

// SendMessage sends a chat message for the server to broadcast.
func (c *Client) SendMessage(content string) error {
	return c.sendLine(protocol.FormatSend(content))
}

// SendVoice base64-encodes an audio payload into a voice frame. The relay
// forwards it verbatim to everyone, sender included.
func (c *Client) SendVoice(payload []byte) error {
	return c.sendLine(protocol.FormatVoice(base64.StdEncoding.EncodeToString(payload)))
}

// StartTalk requests the exclusive talk token. Watch Messages for either
// the STATUS:START broadcast or a STATUS:BUSY denial.
func (c *Client) StartTalk() error {
	return c.sendLine(protocol.FormatStart(c.username))
}

// StopTalk releases the talk token if this client holds it.
func (c *Client) StopTalk() error {
	return c.sendLine(protocol.FormatStop(c.username))
}

// SendRaw sends an arbitrary protocol line, for frames this client type
// does not know about.
func (c *Client) SendRaw(line string) error {
	return c.sendLine(line)
}

// Messages returns the channel for receiving parsed frames.
func (c *Client) Messages() <-chan protocol.Message {
	return c.messages
}

// sendLine writes one newline-terminated protocol line.
func (c *Client) sendLine(line string) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected to server")
	}

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// receiveLines continuously reads, reframes, and parses server output.
func (c *Client) receiveLines() {
	defer c.wg.Done()
	defer close(c.messages)

	framer := relay.NewFramer()
	for {
		select {
		case <-c.done:
			return
		default:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				return
			}

			chunk, err := conn.Read()
			if err != nil {
				if err != io.EOF {
					select {
					case <-c.done:
					default:
						log.Printf("Error reading from server: %v", err)
					}
				}
				return
			}

			for _, line := range framer.Feed(chunk) {
				select {
				case c.messages <- protocol.Parse(line):
				case <-c.done:
					return
				}
			}
		}
	}
}
