package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tkymnr/ptt-relay/internal/relay"
	"github.com/tkymnr/ptt-relay/internal/transport/tcp"
	"github.com/tkymnr/ptt-relay/internal/transport/ws"
)

func main() {
	tcpAddr := flag.String("tcp", ":5050", "TCP listen address (e.g., :5050)")
	wsAddr := flag.String("ws", ":5051", "WebSocket listen address (e.g., :5051), empty to disable")
	flag.Parse()

	// One room shared by every transport.
	room := relay.NewRoom()

	tcpSrv := tcp.New(*tcpAddr, room)
	errChan := make(chan error, 2)

	go func() {
		errChan <- tcpSrv.Start()
	}()

	var wsSrv *ws.Server
	if *wsAddr != "" {
		wsSrv = ws.New(*wsAddr, room)
		go func() {
			errChan <- wsSrv.Start()
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
		tcpSrv.Stop()
		if wsSrv != nil {
			wsSrv.Stop()
		}
	}

	log.Println("Relay stopped")
}
