package draw

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/marcus/good-drawer/internal/config"
	drawmodel "github.com/marcus/good-drawer/internal/model/draw"
	"github.com/marcus/good-drawer/internal/prompt"
)

// Engine produces the fragment stream for one generation.
type Engine interface {
	Stream(ctx context.Context, prompt, model string) (*schema.StreamReader[*schema.Message], error)
}

// Handler upgrades drawing connections and runs one session per connection.
type Handler struct {
	engine   Engine
	cfg      config.DrawConfig
	upgrader websocket.Upgrader
}

// New creates the drawing WebSocket handler.
func New(engine Engine, cfg config.DrawConfig) *Handler {
	return &Handler{
		engine: engine,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the drawing socket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/draw", h.handleWebSocket)
}

// session owns one connection. It serializes client commands, keeps at most
// one generation running, and tears the generation down on disconnect. The
// current handle is touched only by the read loop.
type session struct {
	conn   *websocket.Conn
	engine Engine
	cfg    config.DrawConfig
	log    zerolog.Logger

	writeMu sync.Mutex // gorilla permits one concurrent writer
	current *generation
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sess := &session{
		conn:   conn,
		engine: h.engine,
		cfg:    h.cfg,
		log:    log.With().Str("conn", shortID(uuid.NewString())).Logger(),
	}

	sess.log.Info().Msg("ws connect")
	defer sess.log.Info().Msg("ws disconnect")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer sess.teardown()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go pingLoop(ctx, conn)

	for {
		var cmd drawmodel.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				sess.log.Warn().Err(err).Msg("ws read error")
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		sess.handleCommand(ctx, cmd)
	}
}

// handleCommand dispatches one client command. Commands run strictly in
// arrival order; draw hands off to a generation goroutine and returns to the
// read loop while it streams.
func (s *session) handleCommand(ctx context.Context, cmd drawmodel.Command) {
	switch cmd.Type {
	case drawmodel.CommandPing:
		s.send(drawmodel.Pong())
	case drawmodel.CommandCancel:
		s.cancelActive()
	case drawmodel.CommandDraw:
		s.startDraw(ctx, cmd)
	default:
		s.log.Warn().Str("type", cmd.Type).Msg("ignoring unknown command")
	}
}

// cancelActive signals the running generation and waits until its task has
// fully stopped before clearing the handle. No-op when idle.
func (s *session) cancelActive() {
	if s.current == nil {
		return
	}
	s.current.cancel()
	<-s.current.done
	s.current = nil
}

// startDraw validates the prompt and replaces any active generation with a
// new one. Validation rejects before the active generation is touched.
func (s *session) startDraw(ctx context.Context, cmd drawmodel.Command) {
	userPrompt := prompt.Sanitize(cmd.Prompt)
	id := cmd.ID
	if id == "" {
		id = uuid.NewString()
	}

	if userPrompt == "" {
		s.send(drawmodel.Error(id, "Prompt cannot be empty."))
		return
	}
	if utf8.RuneCountInString(userPrompt) > s.cfg.MaxPromptLen {
		s.send(drawmodel.Error(id, fmt.Sprintf("Prompt too long (max %d chars).", s.cfg.MaxPromptLen)))
		return
	}

	s.cancelActive()

	genCtx, cancel := context.WithCancel(ctx)
	g := &generation{
		id:     id,
		prompt: userPrompt,
		model:  cmd.Model,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.current = g

	go func() {
		defer close(g.done)
		s.run(genCtx, g)
	}()
}

// teardown stops the active generation on disconnect. The generation may end
// on its cancellation path without delivering a terminal message; the peer
// is gone either way.
func (s *session) teardown() {
	s.cancelActive()
}

// send writes one event. The mutex funnels the read loop and the generation
// goroutine through the single allowed writer.
func (s *session) send(evt drawmodel.Event) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(evt); err != nil {
		s.log.Debug().Err(err).Str("type", evt.Type).Msg("ws write failed")
		return err
	}
	return nil
}

// pingLoop keeps the read deadline fed for quiet connections. WriteControl
// is safe alongside the session's data writers.
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
