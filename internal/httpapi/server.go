// internal/httpapi/server.go — exposes an email.Client over HTTP
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/joshsymonds/postbox/internal/email"
)

// defaultListLimit bounds GET /messages when the caller gives no limit.
const defaultListLimit = 50

// Server serves message operations backed by a single mail client.
type Server struct {
	Client email.Client
	Logger *slog.Logger
}

// NewServer constructs a Server with sane defaults.
func NewServer(client email.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Server{Client: client, Logger: logger}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /messages", s.handleList)
	mux.HandleFunc("GET /messages/{id}", s.handleGet)
	mux.HandleFunc("POST /messages/{id}/mark-as-read", s.handleMarkRead)
	mux.HandleFunc("DELETE /messages/{id}", s.handleDelete)
	return s.logRequests(mux)
}

type addressDTO struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type messageDTO struct {
	ID           string       `json:"id"`
	Subject      string       `json:"subject"`
	From         addressDTO   `json:"from"`
	To           []addressDTO `json:"to"`
	DateSent     time.Time    `json:"date_sent"`
	DateReceived time.Time    `json:"date_received"`
	Body         string       `json:"body,omitempty"`
}

func toMessageDTO(msg email.Email) messageDTO {
	to := make([]addressDTO, 0, len(msg.Recipients))
	for _, r := range msg.Recipients {
		to = append(to, addressDTO{Address: r.Address, Name: r.Name})
	}
	return messageDTO{
		ID:           msg.ID,
		Subject:      msg.Subject,
		From:         addressDTO{Address: msg.Sender.Address, Name: msg.Sender.Name},
		To:           to,
		DateSent:     msg.DateSent,
		DateReceived: msg.DateReceived,
		Body:         msg.Body,
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		// email.NoLimit passes through so remote callers can fetch everything.
		if err != nil || (parsed < 0 && parsed != email.NoLimit) {
			s.writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	messages, err := s.Client.ListInbox(r.Context(), limit)
	if err != nil {
		s.writeClientError(w, r, err)
		return
	}
	dtos := make([]messageDTO, 0, len(messages))
	for _, msg := range messages {
		dtos = append(dtos, toMessageDTO(msg))
	}
	s.writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	msg, err := s.Client.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeClientError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageDTO(msg))
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.Client.MarkRead(r.Context(), id); err != nil {
		s.writeClientError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "is_read": true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Client.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeClientError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// writeClientError maps the client error taxonomy onto HTTP statuses.
func (s *Server) writeClientError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, email.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, email.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, email.ErrConnection):
		status = http.StatusBadGateway
	}
	s.writeError(w, r, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.Logger.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", msg),
	)
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error("encode response", "error", err)
	}
}

// logRequests tags each request with an id and logs its outcome.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Logger.InfoContext(r.Context(), "request",
			slog.String("id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}
