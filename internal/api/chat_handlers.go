package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
)

// sseEscape keeps multi-line content inside a single SSE data field.
func sseEscape(s string) string {
	return strings.ReplaceAll(s, "\n", "\ndata: ")
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"messages": s.Chat.History(r.Context()),
	})
}

type chatRequest struct {
	Content string `json:"content"`
}

// handleChatMessage streams the assistant reply as server-sent events:
// one "token" event per chunk, a final "done" event with the full
// message, or an "error" event if generation fails mid-stream.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		handleError(w, r, errors.NewValidationError("content", "cannot be empty"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handleError(w, r, fmt.Errorf("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	reply, err := s.Chat.StreamMessage(r.Context(), req.Content, func(token string) error {
		if _, err := fmt.Fprintf(w, "event: token\ndata: %s\n\n", sseEscape(token)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are already sent; report the failure in-stream.
		log.Warn("chat stream failed: %v", err)
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", sseEscape(err.Error()))
		flusher.Flush()
		return
	}

	fmt.Fprintf(w, "event: done\ndata: %s\n\n", sseEscape(reply.Content))
	flusher.Flush()
}
