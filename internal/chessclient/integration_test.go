package chessclient_test

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/api"
	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/chessclient"
	"github.com/park285/cheese-chess/internal/msgcat"
	svcchess "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func newStack(t *testing.T) *chessclient.Client {
	t.Helper()
	svc, err := svcchess.NewService(corechess.NewEngine(3, nil), nil, svcchess.Config{DefaultLevel: 1}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(svc.Shutdown)
	srv := api.NewServer(svc, chesspresenter.NewPresenter(msgcat.MustDefault()), nil)

	ctx, cancel := context.WithCancel(context.Background())
	ln := fasthttputil.NewInmemoryListener()
	done := make(chan error, 1)
	go func() { done <- srv.ServeHTTP(ctx, ln) }()
	ts := httptest.NewServer(srv.EventsHandler())
	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
	})

	return chessclient.NewClient("http://chess.test",
		chessclient.WithDial(func(string) (net.Conn, error) { return ln.Dial() }),
		chessclient.WithEventsURL("ws"+strings.TrimPrefix(ts.URL, "http")),
		chessclient.WithTimeout(10*time.Second),
	)
}

func TestClientAgainstServer(t *testing.T) {
	c := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
	st, err := c.StartGame(ctx, chessdto.StartGameRequest{PlayerID: "alice", Side: "white", Level: 2})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if st.Level != 2 || st.HumanSide != "white" || st.State != "awaiting_human" {
		t.Fatalf("start = %+v", st)
	}

	legal, err := c.LegalMoves(ctx, st.ID, "b1")
	if err != nil || len(legal.Moves) != 2 {
		t.Fatalf("LegalMoves = %+v, %v", legal, err)
	}

	events := make(chan chessdto.Event, 16)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- c.Watch(ctx, st.ID, func(ev chessdto.Event) bool {
			events <- ev
			return ev.Type != "engine_move"
		})
	}()
	if ev := <-events; ev.Type != "snapshot" {
		t.Fatalf("first event = %s", ev.Type)
	}

	if _, err := c.Play(ctx, st.ID, "d2d4"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := <-watchDone; err != nil {
		t.Fatalf("Watch: %v", err)
	}
	close(events)
	var last chessdto.Event
	for ev := range events {
		last = ev
	}
	if last.Type != "engine_move" || last.State.Ply != 2 || last.State.LastMove == nil {
		t.Fatalf("last event = %+v", last)
	}

	_, err = c.Play(ctx, st.ID, "a1a5")
	var de chessdto.DomainError
	if !errors.As(err, &de) || de.Code != chessdto.CodeInvalidMove {
		t.Fatalf("illegal move err = %v", err)
	}

	hint, err := c.Hint(ctx, st.ID)
	if err != nil || hint.Move.UCI == "" {
		t.Fatalf("Hint = %+v, %v", hint, err)
	}
	undone, err := c.Undo(ctx, st.ID, 0)
	if err != nil || undone.Ply != 0 {
		t.Fatalf("Undo = %+v, %v", undone, err)
	}
	leveled, err := c.SetLevel(ctx, st.ID, 8)
	if err != nil || leveled.Level != 8 {
		t.Fatalf("SetLevel = %+v, %v", leveled, err)
	}

	pref, err := c.Preference(ctx, "alice")
	if err != nil || pref.Level != 8 || pref.GamesStarted != 1 {
		t.Fatalf("Preference = %+v, %v", pref, err)
	}

	if err := c.CloseGame(ctx, st.ID); err != nil {
		t.Fatalf("CloseGame: %v", err)
	}
	_, err = c.Game(ctx, st.ID)
	if !errors.As(err, &de) || de.Code != chessdto.CodeSessionNotFound {
		t.Fatalf("Game after close err = %v", err)
	}
	if err := c.Watch(ctx, st.ID, func(chessdto.Event) bool { return true }); err == nil {
		t.Fatalf("expected watch on closed game to fail")
	}
}
