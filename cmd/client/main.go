package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tkymnr/ptt-relay/internal/client"
	"github.com/tkymnr/ptt-relay/pkg/protocol"
)

func main() {
	serverAddr := flag.String("server", "localhost:5050", "Server address (e.g., localhost:5050)")
	username := flag.String("username", "", "Nickname for the chatroom")
	flag.Parse()

	if *username == "" {
		log.Fatal("Nickname is required. Use -username flag")
	}

	c := client.New(*serverAddr, *username)

	if err := c.Connect(); err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	defer c.Disconnect()

	log.Printf("Connected to %s as %s", *serverAddr, *username)

	if err := c.Join(); err != nil {
		log.Fatalf("Failed to join chatroom: %v", err)
	}

	var rosterMu sync.Mutex
	var roster []string

	go func() {
		for msg := range c.Messages() {
			switch msg.Kind {
			case protocol.KindChat:
				fmt.Printf("[%s]: %s\n", msg.Sender, msg.Content)
			case protocol.KindNotice:
				fmt.Printf("*** %s ***\n", msg.Content)
			case protocol.KindStart:
				fmt.Printf("*** %s is talking ***\n", msg.Sender)
			case protocol.KindStop:
				fmt.Printf("*** %s stopped talking ***\n", msg.Sender)
			case protocol.KindBusy:
				fmt.Println("*** channel busy, someone else is talking ***")
			case protocol.KindUserlist:
				rosterMu.Lock()
				roster = msg.Users()
				rosterMu.Unlock()
				renderRoster(msg.Users())
			case protocol.KindVoice:
				// A terminal has no speaker; voice frames are dropped.
			default:
				fmt.Println(msg.Content)
			}
		}
	}()

	fmt.Println("Type messages, or /talk, /stop, /users, /quit:")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var err error
		switch text {
		case "/quit", "/exit":
			return
		case "/talk":
			err = c.StartTalk()
		case "/stop":
			err = c.StopTalk()
		case "/users":
			rosterMu.Lock()
			renderRoster(roster)
			rosterMu.Unlock()
		default:
			err = c.SendMessage(text)
		}
		if err != nil {
			log.Printf("Failed to send: %v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Error reading input: %v", err)
	}
}

// renderRoster prints the current chatroom roster as a table, in the order
// the server sent it (join order).
func renderRoster(nicks []string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "nickname"})
	for i, nick := range nicks {
		t.AppendRow(table.Row{i + 1, nick})
	}
	t.Render()
}
