package chessclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

// ErrNoEventsURL is returned by Watch when the client has no websocket URL.
var ErrNoEventsURL = errors.New("chessclient: events url not configured")

// Watch streams events for a game to fn until fn returns false, the server
// ends the session, or ctx is done. A normal server close returns nil.
func (c *Client) Watch(ctx context.Context, id string, fn func(chessdto.Event) bool) error {
	if c.eventsURL == "" {
		return ErrNoEventsURL
	}
	header := http.Header{}
	if c.headers != nil {
		for k, v := range c.headers() {
			header.Set(k, v)
		}
	}
	u := c.eventsURL + "/v1/games/" + url.PathEscape(id) + "/events"
	conn, resp, err := websocket.Dial(ctx, u, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial events: status=%d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial events: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var ev chessdto.Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		}
		if !fn(ev) {
			return nil
		}
	}
}
