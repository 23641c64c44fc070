package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/chessclient"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func main() {
	baseURL := os.Getenv("CHESS_BASE_URL")
	eventsURL := os.Getenv("CHESS_EVENTS_URL")
	playerID := os.Getenv("CHESS_PLAYER_ID")

	if baseURL == "" {
		log.Fatal("CHESS_BASE_URL is required")
	}
	if playerID == "" {
		playerID = "probe"
	}

	client := chessclient.NewClient(baseURL,
		chessclient.WithTimeout(8*time.Second),
		chessclient.WithEventsURL(eventsURL),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	log.Println("/healthz ok")

	st, err := client.StartGame(ctx, chessdto.StartGameRequest{PlayerID: playerID, Side: "white", Level: 1})
	if err != nil {
		log.Fatalf("start error: %v", err)
	}
	log.Printf("game %s started: %s", st.ID, st.StatusText)
	defer func() {
		if err := client.CloseGame(context.Background(), st.ID); err != nil {
			log.Printf("close error: %v", err)
		}
	}()

	if eventsURL == "" {
		log.Println("CHESS_EVENTS_URL not set; skipping event stream check")
		if st, err = client.Play(ctx, st.ID, "e2e4"); err != nil {
			log.Printf("play error: %v", err)
			return
		}
		log.Printf("played e2e4: %s", st.StatusText)
		return
	}

	wctx, wcancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer wcancel()
	done := make(chan error, 1)
	go func() {
		done <- client.Watch(wctx, st.ID, func(ev chessdto.Event) bool {
			fmt.Printf("event %s ply=%d moves=%s status=%q\n",
				ev.Type, ev.State.Ply, strings.Join(ev.State.MovesSAN, " "), ev.State.StatusText)
			return ev.Type != "engine_move"
		})
	}()

	// Give the stream a moment to deliver its snapshot before moving.
	time.Sleep(200 * time.Millisecond)
	if _, err := client.Play(ctx, st.ID, "e2e4"); err != nil {
		log.Printf("play error: %v", err)
		return
	}
	if err := <-done; err != nil {
		log.Printf("watch error: %v", err)
	}
}
