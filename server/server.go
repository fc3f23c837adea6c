// Package server exposes the conversation loop over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
	routerx "github.com/prajwalh/krishi-mitra/agent/router"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"15s"`
}

// TurnHandler is the slice of the router the transport needs.
type TurnHandler interface {
	HandleTurn(ctx context.Context, in routerx.TurnInput) (routerx.TurnOutput, error)
}

type Server struct {
	cfg   Config
	turns TurnHandler
	stt   contractx.Transcriber
	tts   contractx.Synthesizer
	httpd *http.Server
}

type Option func(*Server)

// WithVoice enables the voice endpoint. Both sides are required; the reply
// is always spoken back in the language the farmer spoke in.
func WithVoice(stt contractx.Transcriber, tts contractx.Synthesizer) Option {
	return func(s *Server) {
		s.stt = stt
		s.tts = tts
	}
}

func New(cfg Config, turns TurnHandler, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	s := &Server{cfg: cfg, turns: turns}
	for _, opt := range opts {
		opt(s)
	}

	mux := chi.NewRouter()
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(chimiddleware.Recoverer)

	mux.Get("/health", s.handleHealth)
	mux.Post("/chat", s.handleChat)
	if s.stt != nil && s.tts != nil {
		mux.Post("/chat/voice", s.handleVoiceChat)
	}

	s.httpd = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpd.Handler
}

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpd.Shutdown(ctx)
}

type chatRequest struct {
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	ImageRef string `json:"image_ref,omitempty"`
}

type chatResponse struct {
	Response  string   `json:"response"`
	ToolsUsed []string `json:"tools_used"`
	Stage     string   `json:"stage"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.turns.HandleTurn(r.Context(), routerx.TurnInput{
		UserID:   req.UserID,
		Message:  req.Message,
		ImageRef: req.ImageRef,
	})
	if err != nil {
		s.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  out.Reply,
		ToolsUsed: toolsOrEmpty(out.ToolsUsed),
		Stage:     string(out.Stage),
	})
}

type voiceChatRequest struct {
	UserID   string `json:"user_id"`
	Audio    string `json:"audio"`
	Language string `json:"language,omitempty"`
	ImageRef string `json:"image_ref,omitempty"`
}

type voiceChatResponse struct {
	Response  string   `json:"response"`
	Audio     string   `json:"audio"`
	ToolsUsed []string `json:"tools_used"`
	Stage     string   `json:"stage"`
}

func (s *Server) handleVoiceChat(w http.ResponseWriter, r *http.Request) {
	var req voiceChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil || len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "audio must be non-empty base64")
		return
	}

	language := req.Language
	if language == "" {
		language = "kn"
	}

	text, err := s.stt.SpeechToText(r.Context(), audio, language)
	if err != nil {
		log.Error().Err(err).Msg("speech transcription failed")
		writeError(w, http.StatusBadGateway, "could not transcribe audio")
		return
	}

	out, err := s.turns.HandleTurn(r.Context(), routerx.TurnInput{
		UserID:   req.UserID,
		Message:  text,
		ImageRef: req.ImageRef,
	})
	if err != nil {
		s.writeTurnError(w, err)
		return
	}

	spoken, err := s.tts.TextToSpeech(r.Context(), out.Reply, language)
	if err != nil {
		log.Error().Err(err).Msg("speech synthesis failed")
		writeError(w, http.StatusBadGateway, "could not synthesize reply")
		return
	}

	writeJSON(w, http.StatusOK, voiceChatResponse{
		Response:  out.Reply,
		Audio:     base64.StdEncoding.EncodeToString(spoken),
		ToolsUsed: toolsOrEmpty(out.ToolsUsed),
		Stage:     string(out.Stage),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routerx.ErrInvalidUser), errors.Is(err, routerx.ErrEmptyTurn):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contractx.ErrValidation), errors.Is(err, contractx.ErrState):
		// Contract violations are bugs, not user errors.
		log.Error().Err(err).Msg("turn contract violation")
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		log.Error().Err(err).Msg("turn failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toolsOrEmpty(tools []string) []string {
	if tools == nil {
		return []string{}
	}
	return tools
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
