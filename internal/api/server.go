package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/justinas/alice"
	"github.com/labeeb-ai/labeeb/internal/cache"
	"github.com/labeeb-ai/labeeb/internal/interpreter"
	"github.com/labeeb-ai/labeeb/internal/observability"
	"github.com/labeeb-ai/labeeb/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type commandRequest struct {
	Command string `json:"command"`
	Context string `json:"context,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Phase         string    `json:"phase"`
	ActiveCommand string    `json:"active_command,omitempty"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Server exposes the command pipeline over HTTP. It is the surface that
// makes concurrent callers possible, which is why the cache and history
// store guard their shared state.
type Server struct {
	processor *interpreter.Processor
	history   *store.HistoryStore
	cache     *cache.ResponseCache
	server    *http.Server
	logger    zerolog.Logger
}

func New(addr string, processor *interpreter.Processor, history *store.HistoryStore, responseCache *cache.ResponseCache, logger zerolog.Logger) *Server {
	s := &Server{
		processor: processor,
		history:   history,
		cache:     responseCache,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(logMiddleware(logger))

	r.Post("/commands", s.handleCommand)
	r.Get("/history", s.handleHistory)
	r.Get("/cache/stats", s.handleCacheStats)
	r.Delete("/cache", s.handleCacheClear)
	r.Get("/status", s.handleStatus)

	s.server = &http.Server{Addr: addr, Handler: r}
	return s
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	req := commandRequest{}
	if err := unmarshalRequestBody(r, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse body"})
		return
	}
	if req.Command == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "command is required"})
		return
	}

	result, err := s.processor.RunWithContext(r.Context(), req.Command, req.Context)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	render.JSON(w, r, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	entries, err := s.history.GetCommands(limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "unable to load history"})
		return
	}
	render.JSON(w, r, entries)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.cache.Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	phase, command, heartbeat := observability.GetStatus()
	render.JSON(w, r, statusResponse{
		Phase:         string(phase),
		ActiveCommand: command,
		LastHeartbeat: heartbeat,
	})
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server starting")
	err := s.server.ListenAndServe()
	if err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func logMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	c := alice.New()
	c = c.Append(hlog.NewHandler(logger))
	c = c.Append(hlog.RemoteAddrHandler("ip"))
	c = c.Append(hlog.RequestIDHandler("req_id", "Request-Id"))
	c = c.Append(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("verb", r.Method).
			Stringer("url", r.URL).
			Int("size", size).
			Int("status", status).
			Int64("duration", duration.Milliseconds()).
			Msg("REQ")
	}))

	return c.Then
}

func unmarshalRequestBody(req *http.Request, output any) error {
	if req.Body == nil {
		return errors.New("invalid body in request")
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	if err = req.Body.Close(); err != nil {
		return err
	}
	return json.Unmarshal(body, output)
}
