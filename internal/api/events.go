package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const eventWriteTimeout = 5 * time.Second

// EventsHandler serves GET /v1/games/{id}/events as a websocket stream of
// chessdto.Event frames. The first frame is the current snapshot.
func (s *Server) EventsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/games/{id}/events", s.events)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHTTPJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// ServeEvents serves the websocket feed on ln until ctx is done.
func (s *Server) ServeEvents(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.EventsHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	events, cancel, err := s.svc.Subscribe(id)
	if err != nil {
		de := s.presenter.Error(err)
		writeHTTPJSON(w, statusFor(de.Code), de)
		return
	}
	defer cancel()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer c.Close(websocket.StatusInternalError, "unexpected close")
	s.logger.Debug("event stream opened", zap.String("session_id", id))

	ctx := c.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("event stream closed by client", zap.String("session_id", id))
			return
		case ev, ok := <-events:
			if !ok {
				c.Close(websocket.StatusNormalClosure, "session ended")
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, eventWriteTimeout)
			err := wsjson.Write(wctx, c, s.presenter.Event(ev))
			wcancel()
			if err != nil {
				s.logger.Debug("event write failed", zap.String("session_id", id), zap.Error(err))
				return
			}
		}
	}
}

func writeHTTPJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

