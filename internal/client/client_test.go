package client_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/tkymnr/ptt-relay/internal/client"
	"github.com/tkymnr/ptt-relay/internal/relay"
	"github.com/tkymnr/ptt-relay/internal/transport/tcp"
	"github.com/tkymnr/ptt-relay/pkg/protocol"
)

func startServer(t *testing.T) string {
	t.Helper()
	srv := tcp.New("127.0.0.1:0", relay.NewRoom())
	go func() {
		_ = srv.Start()
	}()
	t.Cleanup(srv.Stop)

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("server never started listening")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return srv.Addr()
}

func connectAndJoin(t *testing.T, addr, nick string) *client.Client {
	t.Helper()
	c := client.New(addr, nick)
	if err := c.Connect(); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(c.Disconnect)
	if err := c.Join(); err != nil {
		t.Fatalf("Failed to join: %v", err)
	}
	return c
}

// nextOfKind drains the client's messages until one of the wanted kind
// arrives.
func nextOfKind(t *testing.T, c *client.Client, kind protocol.Kind) protocol.Message {
	t.Helper()
	for {
		select {
		case msg, ok := <-c.Messages():
			if !ok {
				t.Fatalf("message channel closed while waiting for %v", kind)
			}
			if msg.Kind == kind {
				return msg
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for a %v frame", kind)
		}
	}
}

func TestClient_JoinReceivesRoster(t *testing.T) {
	addr := startServer(t)
	c := connectAndJoin(t, addr, "alice")

	msg := nextOfKind(t, c, protocol.KindUserlist)
	if got := msg.Users(); len(got) != 1 || got[0] != "alice" {
		t.Errorf("Users() = %v, want [alice]", got)
	}
}

func TestClient_SendMessageEchoesBack(t *testing.T) {
	addr := startServer(t)
	c := connectAndJoin(t, addr, "alice")
	nextOfKind(t, c, protocol.KindUserlist)

	if err := c.SendMessage("hello"); err != nil {
		t.Fatalf("SendMessage() failed: %v", err)
	}

	msg := nextOfKind(t, c, protocol.KindChat)
	if msg.Sender != "alice" || msg.Content != "hello" {
		t.Errorf("chat frame = %+v, want sender alice content hello", msg)
	}
}

func TestClient_TalkDeniedWhileHeld(t *testing.T) {
	addr := startServer(t)
	alice := connectAndJoin(t, addr, "alice")
	bob := connectAndJoin(t, addr, "bob")
	nextOfKind(t, alice, protocol.KindUserlist)
	nextOfKind(t, bob, protocol.KindUserlist)

	if err := alice.StartTalk(); err != nil {
		t.Fatalf("StartTalk() failed: %v", err)
	}
	start := nextOfKind(t, bob, protocol.KindStart)
	if start.Sender != "alice" {
		t.Fatalf("start frame sender = %q, want alice", start.Sender)
	}

	if err := bob.StartTalk(); err != nil {
		t.Fatalf("StartTalk() failed: %v", err)
	}
	nextOfKind(t, bob, protocol.KindBusy)

	if err := alice.StopTalk(); err != nil {
		t.Fatalf("StopTalk() failed: %v", err)
	}
	stop := nextOfKind(t, bob, protocol.KindStop)
	if stop.Sender != "alice" {
		t.Errorf("stop frame sender = %q, want alice", stop.Sender)
	}
}

func TestClient_SendVoiceEncodesBase64(t *testing.T) {
	addr := startServer(t)
	alice := connectAndJoin(t, addr, "alice")
	bob := connectAndJoin(t, addr, "bob")
	nextOfKind(t, alice, protocol.KindUserlist)
	nextOfKind(t, bob, protocol.KindUserlist)

	raw := []byte{0x01, 0x02, 0xfe, 0xff}
	if err := alice.SendVoice(raw); err != nil {
		t.Fatalf("SendVoice() failed: %v", err)
	}

	msg := nextOfKind(t, bob, protocol.KindVoice)
	decoded, err := base64.StdEncoding.DecodeString(msg.Content)
	if err != nil {
		t.Fatalf("voice payload not valid base64: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Errorf("decoded payload = %v, want %v", decoded, raw)
	}
}

func TestClient_SendWithoutConnect(t *testing.T) {
	c := client.New("127.0.0.1:1", "alice")
	if err := c.SendMessage("hello"); err == nil {
		t.Error("SendMessage() before Connect() succeeded, want error")
	}
}

func TestClient_MessagesClosedWhenServerDrops(t *testing.T) {
	srv := tcp.New("127.0.0.1:0", relay.NewRoom())
	go func() {
		_ = srv.Start()
	}()
	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("server never started listening")
		}
		time.Sleep(10 * time.Millisecond)
	}

	c := client.New(srv.Addr(), "alice")
	if err := c.Connect(); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer c.Disconnect()
	if err := c.Join(); err != nil {
		t.Fatalf("Failed to join: %v", err)
	}
	nextOfKind(t, c, protocol.KindUserlist)

	srv.Stop()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.Messages():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("message channel not closed after server stopped")
		}
	}
}
