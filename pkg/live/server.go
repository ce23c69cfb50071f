package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/metrics"
)

const defaultTracerName = "vbind"

// ErrNoFactory is returned by New when Config.Factory is nil.
var ErrNoFactory = errors.New("live: no instance factory")

// Config configures a Server.
type Config struct {
	// Factory builds the instance for each new session. Required.
	Factory Factory

	// Title is the page title.
	Title string

	// ReadTimeout bounds the wait for the next client frame.
	// Default: 60s
	ReadTimeout time.Duration

	// WriteTimeout bounds each websocket write.
	// Default: 10s
	WriteTimeout time.Duration

	// IdleTimeout is how long a session without a websocket is kept.
	// Default: 1m
	IdleTimeout time.Duration

	// MetricsPath serves Gatherer when non-empty.
	MetricsPath string

	// Gatherer is scraped at MetricsPath.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Metrics records session and event activity.
	Metrics *metrics.Collector

	// TracerName names the tracer used for event spans.
	// Default: "vbind"
	TracerName string

	// CheckOrigin validates websocket origins. Default: same-origin check
	// of gorilla/websocket.
	CheckOrigin func(*http.Request) bool

	// Logger is the server logger.
	Logger *slog.Logger
}

// Server serves live sessions over HTTP and websockets.
type Server struct {
	config   Config
	sessions *Manager
	upgrader websocket.Upgrader
	tracer   trace.Tracer
	logger   *slog.Logger
	router   chi.Router
}

// New creates a Server.
func New(config Config) (*Server, error) {
	if config.Factory == nil {
		return nil, ErrNoFactory
	}
	if config.Title == "" {
		config.Title = "vbind"
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 60 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = time.Minute
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	if config.TracerName == "" {
		config.TracerName = defaultTracerName
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "live")
	}

	s := &Server{
		config:   config,
		sessions: NewManager(config.Factory, config.Metrics, logger),
		upgrader: websocket.Upgrader{CheckOrigin: config.CheckOrigin},
		tracer:   otel.Tracer(config.TracerName),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	if config.MetricsPath != "" {
		r.Handle(config.MetricsPath, promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s, nil
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *Manager {
	return s.sessions
}

// Run sweeps idle sessions until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.sessions.Sweep(now, s.config.IdleTimeout)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Create()
	if err != nil {
		s.logger.Error("create session", "error", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writePage(w, s.config.Title, session); err != nil {
		s.logger.Error("render page", "session_id", session.ID, "error", err)
		s.sessions.Close(session.ID)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	session := s.sessions.Get(id)
	if session == nil {
		http.Error(w, ErrUnknownSession.Error(), http.StatusNotFound)
		return
	}
	if !session.setConnected(true) {
		http.Error(w, "session already connected", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.logger.Warn("websocket upgrade failed", "session_id", id, "error", err)
		session.setConnected(false)
		return
	}

	s.readLoop(r.Context(), conn, session)
}

// readLoop handles frames until the connection closes, then closes the
// session: a reload creates a new one.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, session *Session) {
	defer func() {
		conn.Close()
		s.sessions.Close(session.ID)
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "session_id", session.ID, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			s.logger.Warn("frame decode error", "session_id", session.ID, "error", err)
			continue
		}

		patches := s.handleFrame(ctx, session, frame)

		payload, err := json.Marshal(patches)
		if err != nil {
			s.logger.Error("encode patches", "session_id", session.ID, "error", err)
			return
		}
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.logger.Error("write error", "session_id", session.ID, "error", err)
			return
		}
	}
}

// handleFrame dispatches one frame inside a span. It always returns a
// non-nil slice so the client receives a JSON array.
func (s *Server) handleFrame(ctx context.Context, session *Session, frame Frame) []dom.Patch {
	_, span := s.tracer.Start(ctx, "vbind.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("vbind.session_id", session.ID),
			attribute.String("vbind.frame_type", frame.Type),
			attribute.String("vbind.event", frame.Event),
			attribute.String("vbind.node_id", frame.ID),
		))
	defer span.End()

	patches, err := session.Handle(frame)

	eventType := frame.Event
	if frame.Type == FrameInput {
		eventType = FrameInput
	}
	if s.config.Metrics != nil {
		s.config.Metrics.EventHandled(eventType, err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("event failed",
			"session_id", session.ID,
			"type", frame.Type,
			"node", frame.ID,
			"error", err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Int("vbind.patch_count", len(patches)))

	if patches == nil {
		patches = []dom.Patch{}
	}
	return patches
}
