package relay

import (
	"bytes"
	"context"
	"log"
	"strings"

	"github.com/tkymnr/ptt-relay/pkg/protocol"
)

// Room wires the registry, the talk arbiter, and broadcast fan-out into a
// single chatroom. Both the TCP and WebSocket servers share one Room, so
// clients on either transport see each other.
type Room struct {
	registry *Registry
	arbiter  *Arbiter
}

// NewRoom creates an empty Room.
func NewRoom() *Room {
	r := &Room{registry: NewRegistry()}
	r.arbiter = NewArbiter(func(line string) { r.Broadcast(line, nil) })
	return r
}

// ClientCount returns the number of joined clients.
func (r *Room) ClientCount() int {
	return r.registry.Len()
}

// Talker returns the nickname currently holding the talk token, if any.
func (r *Room) Talker() string {
	return r.arbiter.Holder()
}

// Broadcast queues line to every joined client except exclude. The fan-out
// works off a registry snapshot and never blocks: a recipient whose queue
// is full has its connection closed, which drives it through the same
// teardown as any other disconnect. One bad peer never stops delivery to
// the rest.
func (r *Room) Broadcast(line string, exclude *Client) {
	data := []byte(line + "\n")
	for _, c := range r.registry.Snapshot() {
		if c == exclude {
			continue
		}
		c.enqueue(data)
	}
}

// HandleClient runs the whole lifecycle of one connection: nickname
// handshake, message dispatch, and teardown. It blocks until the
// connection is done; transports run it in its own goroutine alongside
// the client's WriteLoop.
func (r *Room) HandleClient(c *Client) {
	defer r.teardown(c)

	framer := NewFramer()
	nickname, pending, ok := r.handshake(c, framer)
	if !ok {
		return
	}

	r.registry.Join(c, nickname)
	log.Printf("%s joined from %s (conn %s)", nickname, c.Conn.RemoteAddr(), c.ID)
	r.Broadcast(protocol.FormatJoinNotice(nickname), c)
	r.Broadcast(protocol.FormatUserlist(r.registry.Nicknames()), nil)

	// Lines that arrived in the same chunk as the nickname.
	for _, line := range pending {
		r.dispatch(c, line)
	}

	for {
		chunk, err := c.Conn.Read(context.Background())
		if err != nil {
			return
		}
		for _, line := range framer.Feed(chunk) {
			r.dispatch(c, line)
		}
	}
}

// handshake reads up to the first newline and returns that line as the
// nickname, plus any complete lines from the same read. Reports false if
// the stream ends first or the first line is empty after trimming; such a
// connection never joins. The first line is taken before the framer's
// empty-line filter so a blank handshake fails instead of deferring to
// whatever the client sends next.
func (r *Room) handshake(c *Client, framer *Framer) (nickname string, pending []string, ok bool) {
	var buf []byte
	for {
		chunk, err := c.Conn.Read(context.Background())
		if err != nil {
			return "", nil, false
		}
		buf = append(buf, chunk...)
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			continue
		}
		nickname = cleanLine(buf[:i])
		if nickname == "" {
			return "", nil, false
		}
		return nickname, framer.Feed(buf[i+1:]), true
	}
}

// dispatch routes one inbound line by prefix.
//
// Talk requests are keyed to the connection's registered nickname, never
// to the nickname the client wrote into the frame: a client cannot start
// or stop a talk session on someone else's behalf.
func (r *Room) dispatch(c *Client, line string) {
	msg := protocol.Parse(line)
	switch msg.Kind {
	case protocol.KindStart:
		if msg.Sender != c.Nickname {
			log.Printf("%s requested talk as %q, using registered nickname", c.Nickname, msg.Sender)
		}
		if !r.arbiter.RequestStart(c.Nickname) {
			c.enqueue([]byte(protocol.Busy + "\n"))
		}
	case protocol.KindStop:
		if msg.Sender != c.Nickname {
			log.Printf("%s requested stop as %q, using registered nickname", c.Nickname, msg.Sender)
		}
		r.arbiter.RequestStop(c.Nickname)
	case protocol.KindChat:
		// The whole tail is the text; Parse's sender/content split is
		// for server-formatted lines and would eat text up to a ": ".
		r.Broadcast(protocol.FormatChat(c.Nickname, strings.TrimSpace(protocol.ChatTail(line))), nil)
	case protocol.KindVoice:
		// Payload-agnostic: the frame goes out byte-for-byte as received.
		r.Broadcast(line, nil)
	default:
		// Malformed STATUS frames are dropped; anything else passes
		// through verbatim for forward compatibility.
		if strings.HasPrefix(line, "STATUS:") {
			log.Printf("Dropping malformed status frame from %s: %q", c.Nickname, line)
			return
		}
		r.Broadcast(line, nil)
	}
}

// teardown runs on every exit path. It removes the client from the roster,
// tells the room, releases the talk token if this client held it, and
// closes the connection last. Safe to reach from both a normal loop exit
// and a broadcast-side eviction.
func (r *Room) teardown(c *Client) {
	c.finish()
	if nickname, joined := r.registry.Leave(c); joined {
		log.Printf("%s disconnected", nickname)
		r.Broadcast(protocol.FormatLeaveNotice(nickname), nil)
		r.Broadcast(protocol.FormatUserlist(r.registry.Nicknames()), nil)
		r.arbiter.ForceRelease(nickname)
	}
	c.Conn.Close()
}
