package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10

	// wsBacklog is how many recent entries a new subscriber receives first.
	wsBacklog = 50
	// wsBuffer is the subscription buffer; a slower client drops entries.
	wsBuffer = 256
)

// upgrader keeps gorilla's default origin check: browsers may only open
// the stream from the dashboard's own host.
//
//nolint:gochecknoglobals // Stateless upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// parseLevels reads a comma separated level filter. Empty means all levels.
func parseLevels(raw string) ([]logging.Level, error) {
	var levels []logging.Level
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		lv, ok := logging.ParseLevel(part)
		if !ok {
			return nil, fmt.Errorf("%w: unknown log level %q", errors.ErrInvalidArgument, part)
		}
		levels = append(levels, lv)
	}
	return levels, nil
}

func matches(e logging.Entry, levels []logging.Level) bool {
	if len(levels) == 0 {
		return true
	}
	for _, lv := range levels {
		if e.Level == lv {
			return true
		}
	}
	return false
}

// handleLogs returns the activity log, newest last. ?level= filters by a comma
// separated list of levels and ?limit= keeps the last n entries.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	levels, err := parseLevels(r.URL.Query().Get("level"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries := s.activity.Entries(levels...)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: invalid limit %q", errors.ErrInvalidArgument, raw))
			return
		}
		if n < len(entries) {
			entries = entries[len(entries)-n:]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "total": s.activity.Len()})
}

// handleLogStream sends the recent backlog, then every new activity entry,
// as JSON messages.
func (s *Server) handleLogStream(w http.ResponseWriter, r *http.Request) {
	levels, err := parseLevels(r.URL.Query().Get("level"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before reading the backlog so nothing falls in between.
	entries, unsubscribe := s.activity.Subscribe(wsBuffer)
	defer unsubscribe()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// The reader only drains control frames and notices the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) error {
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(v)
	}

	backlog := s.activity.Entries(levels...)
	if len(backlog) > wsBacklog {
		backlog = backlog[len(backlog)-wsBacklog:]
	}
	var last uint64
	for _, e := range backlog {
		if err := write(e); err != nil {
			return
		}
		last = e.Seq
	}

	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			// Entries already sent with the backlog.
			if e.Seq <= last || !matches(e, levels) {
				continue
			}
			if err := write(e); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
