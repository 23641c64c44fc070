package api

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/msgcat"
	svcchess "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func newTestServer(t *testing.T, cfg svcchess.Config) (*Server, *svcchess.Service) {
	t.Helper()
	if cfg.DefaultLevel == 0 {
		cfg.DefaultLevel = 1
	}
	svc, err := svcchess.NewService(corechess.NewEngine(7, nil), nil, cfg, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(svc.Shutdown)
	return NewServer(svc, chesspresenter.NewPresenter(msgcat.MustDefault()), nil), svc
}

type response struct {
	status int
	header *fasthttp.ResponseHeader
	body   []byte
}

func do(t *testing.T, srv *Server, method, uri, body string) response {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.Header.SetContentType(contentTypeJSON)
		req.SetBodyString(body)
	}
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	srv.Handler(&ctx)

	var hdr fasthttp.ResponseHeader
	ctx.Response.Header.CopyTo(&hdr)
	return response{
		status: ctx.Response.StatusCode(),
		header: &hdr,
		body:   append([]byte(nil), ctx.Response.Body()...),
	}
}

func decodeBody[T any](t *testing.T, r response) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(r.body, &v); err != nil {
		t.Fatalf("decode %s: %v", r.body, err)
	}
	return v
}

func expectError(t *testing.T, r response, status int, code string) {
	t.Helper()
	if r.status != status {
		t.Fatalf("status = %d, want %d (%s)", r.status, status, r.body)
	}
	de := decodeBody[chessdto.DomainError](t, r)
	if de.Code != code || de.Message == "" {
		t.Fatalf("error = %+v, want code %s", de, code)
	}
}

func startGame(t *testing.T, srv *Server, body string) chessdto.SessionState {
	t.Helper()
	r := do(t, srv, fasthttp.MethodPost, "/v1/games", body)
	if r.status != fasthttp.StatusCreated {
		t.Fatalf("start status = %d (%s)", r.status, r.body)
	}
	return decodeBody[chessdto.SessionState](t, r)
}

func waitForPly(t *testing.T, srv *Server, id string, ply int) chessdto.SessionState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		st := decodeBody[chessdto.SessionState](t, do(t, srv, fasthttp.MethodGet, "/v1/games/"+id, ""))
		if st.Ply == ply && !st.Thinking {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for ply %d; at %d", ply, st.Ply)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, svcchess.Config{})
	r := do(t, srv, fasthttp.MethodGet, "/healthz", "")
	if r.status != fasthttp.StatusOK {
		t.Fatalf("status = %d", r.status)
	}
	body := decodeBody[map[string]any](t, r)
	if body["status"] != "ok" || body["sessions"] != float64(0) {
		t.Fatalf("body = %v", body)
	}
	if ct := string(r.header.ContentType()); ct != contentTypeJSON {
		t.Fatalf("content type = %q", ct)
	}
}

func TestGameLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, svcchess.Config{EngineDelay: 0})
	st := startGame(t, srv, "")
	if st.State != "awaiting_human" || st.SideToMove != "white" || st.Board[7] != "RNBQKBNR" {
		t.Fatalf("start state = %+v", st)
	}

	r := do(t, srv, fasthttp.MethodGet, "/v1/games/"+st.ID+"/moves?square=g1", "")
	if r.status != fasthttp.StatusOK {
		t.Fatalf("moves status = %d (%s)", r.status, r.body)
	}
	legal := decodeBody[chessdto.LegalMoves](t, r)
	if legal.Square != "g1" || len(legal.Moves) != 2 {
		t.Fatalf("legal = %+v", legal)
	}

	r = do(t, srv, fasthttp.MethodPost, "/v1/games/"+st.ID+"/moves", `{"move":"e2e4"}`)
	if r.status != fasthttp.StatusOK {
		t.Fatalf("play status = %d (%s)", r.status, r.body)
	}
	played := decodeBody[chessdto.SessionState](t, r)
	if played.Ply != 1 || played.MovesSAN[0] != "e4" {
		t.Fatalf("played = %+v", played)
	}
	after := waitForPly(t, srv, st.ID, 2)
	if after.State != "awaiting_human" || len(after.MovesSAN) != 2 {
		t.Fatalf("after engine = %+v", after)
	}

	r = do(t, srv, fasthttp.MethodPost, "/v1/games/"+st.ID+"/hint", "")
	if r.status != fasthttp.StatusOK {
		t.Fatalf("hint status = %d (%s)", r.status, r.body)
	}
	hint := decodeBody[chessdto.Hint](t, r)
	if hint.Move.UCI == "" || hint.Move.SAN == "" || hint.Depth != 4 || hint.Text == "" {
		t.Fatalf("hint = %+v", hint)
	}

	r = do(t, srv, fasthttp.MethodPost, "/v1/games/"+st.ID+"/undo", `{"plies":2}`)
	if r.status != fasthttp.StatusOK {
		t.Fatalf("undo status = %d (%s)", r.status, r.body)
	}
	if undone := decodeBody[chessdto.SessionState](t, r); undone.Ply != 0 || undone.FEN != st.FEN {
		t.Fatalf("undone = %+v", undone)
	}
	expectError(t, do(t, srv, fasthttp.MethodPost, "/v1/games/"+st.ID+"/undo", ""), fasthttp.StatusConflict, chessdto.CodeUndoUnavailable)

	r = do(t, srv, fasthttp.MethodPut, "/v1/games/"+st.ID+"/level", `{"level":5}`)
	if r.status != fasthttp.StatusOK {
		t.Fatalf("level status = %d (%s)", r.status, r.body)
	}
	if leveled := decodeBody[chessdto.SessionState](t, r); leveled.Level != 5 || leveled.Preset != "level5" {
		t.Fatalf("leveled = %+v", leveled)
	}

	if r := do(t, srv, fasthttp.MethodDelete, "/v1/games/"+st.ID, ""); r.status != fasthttp.StatusNoContent {
		t.Fatalf("delete status = %d", r.status)
	}
	expectError(t, do(t, srv, fasthttp.MethodGet, "/v1/games/"+st.ID, ""), fasthttp.StatusNotFound, chessdto.CodeSessionNotFound)
}

func TestRequestErrors(t *testing.T) {
	srv, _ := newTestServer(t, svcchess.Config{})
	st := startGame(t, srv, `{"side":"white","level":3}`)
	id := st.ID

	cases := []struct {
		name   string
		method string
		uri    string
		body   string
		status int
		code   string
	}{
		{"bad json", fasthttp.MethodPost, "/v1/games", `{"level":`, fasthttp.StatusBadRequest, chessdto.CodeInvalidRequest},
		{"bad level", fasthttp.MethodPost, "/v1/games", `{"level":42}`, fasthttp.StatusBadRequest, chessdto.CodeInvalidLevel},
		{"bad side", fasthttp.MethodPost, "/v1/games", `{"side":"green"}`, fasthttp.StatusBadRequest, chessdto.CodeInvalidSide},
		{"bad fen", fasthttp.MethodPost, "/v1/games", `{"fen":"xx"}`, fasthttp.StatusBadRequest, chessdto.CodeInvalidPosition},
		{"capturable king", fasthttp.MethodPost, "/v1/games", `{"fen":"4k3/8/8/8/8/8/8/K3R3 w - - 0 1"}`, fasthttp.StatusBadRequest, chessdto.CodeInvalidPosition},
		{"missing body", fasthttp.MethodPost, "/v1/games/" + id + "/moves", "", fasthttp.StatusBadRequest, chessdto.CodeInvalidRequest},
		{"illegal move", fasthttp.MethodPost, "/v1/games/" + id + "/moves", `{"move":"e2e5"}`, fasthttp.StatusBadRequest, chessdto.CodeInvalidMove},
		{"bad square", fasthttp.MethodGet, "/v1/games/" + id + "/moves?square=z9", "", fasthttp.StatusBadRequest, chessdto.CodeInvalidSquare},
		{"level range", fasthttp.MethodPut, "/v1/games/" + id + "/level", `{"level":11}`, fasthttp.StatusBadRequest, chessdto.CodeInvalidLevel},
		{"unknown game", fasthttp.MethodGet, "/v1/games/nope", "", fasthttp.StatusNotFound, chessdto.CodeSessionNotFound},
		{"unknown route", fasthttp.MethodGet, "/v2/things", "", fasthttp.StatusNotFound, "not_found"},
		{"unknown sub route", fasthttp.MethodGet, "/v1/games/" + id + "/board", "", fasthttp.StatusNotFound, "not_found"},
		{"wrong method", fasthttp.MethodGet, "/v1/games", "", fasthttp.StatusMethodNotAllowed, "method_not_allowed"},
		{"wrong game method", fasthttp.MethodPut, "/v1/games/" + id + "/hint", "", fasthttp.StatusMethodNotAllowed, "method_not_allowed"},
		{"no preference", fasthttp.MethodGet, "/v1/players/ghost/preference", "", fasthttp.StatusNotFound, "preference_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, do(t, srv, tc.method, tc.uri, tc.body), tc.status, tc.code)
		})
	}
}

func TestFinishedGameConflicts(t *testing.T) {
	srv, _ := newTestServer(t, svcchess.Config{})
	st := startGame(t, srv, `{"fen":"4R1k1/5ppp/8/8/8/8/8/6K1 b - - 0 1"}`)
	if st.State != "game_over" || st.Outcome.Winner != "white" || st.StatusText != "Checkmate. White wins." {
		t.Fatalf("state = %+v", st)
	}
	expectError(t, do(t, srv, fasthttp.MethodPost, "/v1/games/"+st.ID+"/moves", `{"move":"g8h8"}`), fasthttp.StatusConflict, chessdto.CodeGameOver)
	expectError(t, do(t, srv, fasthttp.MethodPost, "/v1/games/"+st.ID+"/hint", ""), fasthttp.StatusConflict, chessdto.CodeGameOver)
}

func TestTooManySessionsIsRetryable(t *testing.T) {
	srv, _ := newTestServer(t, svcchess.Config{MaxSessions: 1})
	startGame(t, srv, "")
	r := do(t, srv, fasthttp.MethodPost, "/v1/games", "")
	expectError(t, r, fasthttp.StatusTooManyRequests, chessdto.CodeTooManySessions)
	if !decodeBody[chessdto.DomainError](t, r).Retryable {
		t.Fatalf("expected retryable error")
	}
	if got := string(r.header.Peek("Retry-After")); got != "1" {
		t.Fatalf("Retry-After = %q", got)
	}
}

func TestPreferenceRoute(t *testing.T) {
	srv, _ := newTestServer(t, svcchess.Config{})
	startGame(t, srv, `{"player_id":"p1","level":6,"side":"black"}`)
	r := do(t, srv, fasthttp.MethodGet, "/v1/players/p1/preference", "")
	if r.status != fasthttp.StatusOK {
		t.Fatalf("status = %d (%s)", r.status, r.body)
	}
	pref := decodeBody[chessdto.Preference](t, r)
	if pref.PlayerID != "p1" || pref.Level != 6 || pref.HumanSide != "black" || pref.GamesStarted != 1 {
		t.Fatalf("pref = %+v", pref)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		chessdto.CodeSessionNotFound: fasthttp.StatusNotFound,
		chessdto.CodeInvalidMove:     fasthttp.StatusBadRequest,
		chessdto.CodeNotYourTurn:     fasthttp.StatusConflict,
		chessdto.CodeTooManySessions: fasthttp.StatusTooManyRequests,
		chessdto.CodeHintUnavailable: fasthttp.StatusServiceUnavailable,
		chessdto.CodeUnavailable:     fasthttp.StatusServiceUnavailable,
		chessdto.CodeInternal:        fasthttp.StatusInternalServerError,
		"something_else":             fasthttp.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := statusFor(code); got != want {
			t.Fatalf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func newLocalListener() (net.Listener, error) { return net.Listen("tcp", "127.0.0.1:0") }

func TestServeHTTPStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, svcchess.Config{})
	ln := fasthttputil.NewInmemoryListener()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeHTTP(ctx, ln) }()

	client := &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
	req, resp := fasthttp.AcquireRequest(), fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI("http://chess.test/healthz")
	if err := client.DoTimeout(req, resp, 5*time.Second); err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK || string(resp.Header.Peek("Server")) != "cheese-chess" {
		t.Fatalf("status = %d server = %q", resp.StatusCode(), resp.Header.Peek("Server"))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ServeHTTP: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("ServeHTTP did not stop")
	}
}
