package api

import (
	"io"
	"net/http"

	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.State.Stats(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.State.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="biaslab-export.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to write export: %v", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("could not read import payload"))
		return
	}

	if err := s.State.Import(r.Context(), data); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "imported"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.State.Reset(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
}
