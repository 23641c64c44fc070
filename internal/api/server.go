package api

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	svcchess "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

const (
	maxBodySize     = 64 << 10
	shutdownTimeout = 5 * time.Second
	requestTimeout  = 30 * time.Second
	contentTypeJSON = "application/json"
)

// Server exposes the chess service over HTTP (fasthttp) and streams session
// events over websocket (net/http).
type Server struct {
	svc       *svcchess.Service
	presenter *chesspresenter.Presenter
	logger    *zap.Logger

	// OriginPatterns are passed to the websocket handshake; empty means same origin only.
	OriginPatterns []string
}

func NewServer(svc *svcchess.Service, presenter *chesspresenter.Presenter, logger *zap.Logger) *Server {
	if presenter == nil {
		presenter = chesspresenter.NewPresenter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, presenter: presenter, logger: logger}
}

// ServeHTTP serves the REST API on ln until ctx is done.
func (s *Server) ServeHTTP(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "cheese-chess",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        time.Minute,
		MaxRequestBodySize: maxBodySize,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.ShutdownWithContext(sctx); err != nil {
			return err
		}
		return <-errCh
	}
}

// Handler routes REST requests.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := strings.Trim(string(ctx.Path()), "/")
	parts := strings.Split(path, "/")
	method := string(ctx.Method())

	switch {
	case path == "healthz":
		s.health(ctx)
	case len(parts) == 2 && parts[0] == "v1" && parts[1] == "games":
		if method != fasthttp.MethodPost {
			s.methodNotAllowed(ctx)
			break
		}
		s.startGame(ctx)
	case len(parts) >= 3 && parts[0] == "v1" && parts[1] == "games":
		s.game(ctx, method, parts[2], parts[3:])
	case len(parts) == 4 && parts[0] == "v1" && parts[1] == "players" && parts[3] == "preference":
		if method != fasthttp.MethodGet {
			s.methodNotAllowed(ctx)
			break
		}
		s.preference(ctx, parts[2])
	default:
		s.notFound(ctx)
	}

	s.logger.Debug("http request",
		zap.String("method", method),
		zap.String("path", string(ctx.Path())),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *Server) game(ctx *fasthttp.RequestCtx, method, id string, rest []string) {
	route := strings.Join(rest, "/")
	switch {
	case route == "" && method == fasthttp.MethodGet:
		s.status(ctx, id)
	case route == "" && method == fasthttp.MethodDelete:
		s.closeGame(ctx, id)
	case route == "moves" && method == fasthttp.MethodGet:
		s.legalMoves(ctx, id)
	case route == "moves" && method == fasthttp.MethodPost:
		s.play(ctx, id)
	case route == "hint" && method == fasthttp.MethodPost:
		s.hint(ctx, id)
	case route == "undo" && method == fasthttp.MethodPost:
		s.undo(ctx, id)
	case route == "level" && method == fasthttp.MethodPut:
		s.setLevel(ctx, id)
	case route == "", route == "moves", route == "hint", route == "undo", route == "level":
		s.methodNotAllowed(ctx)
	default:
		s.notFound(ctx)
	}
}

func (s *Server) health(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.svc.SessionCount(),
	})
}

func (s *Server) startGame(ctx *fasthttp.RequestCtx) {
	c, cancel := callContext()
	defer cancel()
	var req chessdto.StartGameRequest
	if !s.decode(ctx, &req, true) {
		return
	}
	state, err := s.svc.StartSession(c, svcchess.StartRequest{
		PlayerID:  req.PlayerID,
		HumanSide: req.Side,
		Level:     req.Level,
		FEN:       req.FEN,
	})
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusCreated, s.presenter.State(state))
}

func (s *Server) status(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := callContext()
	defer cancel()
	state, err := s.svc.Status(c, id)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.presenter.State(state))
}

func (s *Server) legalMoves(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := callContext()
	defer cancel()
	square := string(ctx.QueryArgs().Peek("square"))
	moves, err := s.svc.LegalMoves(c, id, square)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	state, err := s.svc.Status(c, id)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.presenter.LegalMoves(square, state.FEN, moves))
}

func (s *Server) play(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := callContext()
	defer cancel()
	var req chessdto.PlayMoveRequest
	if !s.decode(ctx, &req, false) {
		return
	}
	state, err := s.svc.Play(c, id, req.Move)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.presenter.State(state))
}

func (s *Server) hint(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := callContext()
	defer cancel()
	res, err := s.svc.Hint(c, id)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.presenter.Hint(res))
}

func (s *Server) undo(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := callContext()
	defer cancel()
	var req chessdto.UndoRequest
	if !s.decode(ctx, &req, true) {
		return
	}
	state, err := s.svc.Undo(c, id, req.Plies)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.presenter.State(state))
}

func (s *Server) setLevel(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := callContext()
	defer cancel()
	var req chessdto.SetLevelRequest
	if !s.decode(ctx, &req, false) {
		return
	}
	state, err := s.svc.SetLevel(c, id, req.Level)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.presenter.State(state))
}

func (s *Server) closeGame(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := callContext()
	defer cancel()
	if err := s.svc.Close(c, id); err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) preference(ctx *fasthttp.RequestCtx, playerID string) {
	c, cancel := callContext()
	defer cancel()
	pref, err := s.svc.Preference(c, playerID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if pref == nil {
		s.writeError(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: "preference_not_found", Message: "no stored preference for " + playerID})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.presenter.Preference(pref))
}

// decode reads a JSON body into v. An empty body is accepted when optional.
func (s *Server) decode(ctx *fasthttp.RequestCtx, v any, optional bool) bool {
	body := ctx.PostBody()
	if len(strings.TrimSpace(string(body))) == 0 {
		if optional {
			return true
		}
		s.writeError(ctx, fasthttp.StatusBadRequest, s.presenter.InvalidRequest("request body is required"))
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, s.presenter.InvalidRequest("malformed JSON body"))
		return false
	}
	return true
}

func (s *Server) fail(ctx *fasthttp.RequestCtx, err error) {
	de := s.presenter.Error(err)
	status := statusFor(de.Code)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("chess request failed", zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	s.writeError(ctx, status, de)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, de chessdto.DomainError) {
	if de.Retryable {
		ctx.Response.Header.Set("Retry-After", strconv.Itoa(1))
	}
	writeJSON(ctx, status, de)
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	s.writeError(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: "not_found", Message: "no such route"})
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, chessdto.DomainError{Code: "method_not_allowed", Message: "method not allowed"})
}

func statusFor(code string) int {
	switch code {
	case chessdto.CodeSessionNotFound:
		return fasthttp.StatusNotFound
	case chessdto.CodeInvalidMove, chessdto.CodeInvalidSquare, chessdto.CodeInvalidLevel,
		chessdto.CodeInvalidSide, chessdto.CodeInvalidPosition, chessdto.CodeInvalidRequest:
		return fasthttp.StatusBadRequest
	case chessdto.CodeUndoUnavailable, chessdto.CodeNotYourTurn, chessdto.CodeGameOver:
		return fasthttp.StatusConflict
	case chessdto.CodeTooManySessions:
		return fasthttp.StatusTooManyRequests
	case chessdto.CodeHintUnavailable, chessdto.CodeUnavailable:
		return fasthttp.StatusServiceUnavailable
	default:
		return fasthttp.StatusInternalServerError
	}
}

// callContext bounds a service call. Searches are not cancellable once started.
func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		ctx.Error("encode response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(payload)
}
