package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/dprayogo/nutrisnap/internal/domain"
)

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.service.ListAnalyses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list analyses", s.logger)
		s.logger.Error("list analyses failed", "error", err)
		return
	}
	if analyses == nil {
		analyses = []*domain.Analysis{}
	}

	writeJSON(w, http.StatusOK, analyses, s.logger)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid analysis id", s.logger)
		return
	}

	analysis, err := s.service.GetAnalysis(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get analysis", s.logger)
		s.logger.Error("get analysis failed", "analysis_id", id, "error", err)
		return
	}
	if analysis == nil {
		writeError(w, http.StatusNotFound, "analysis not found", s.logger)
		return
	}

	writeJSON(w, http.StatusOK, analysis, s.logger)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid analysis id", s.logger)
		return
	}

	if err := s.service.DeleteAnalysis(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete analysis", s.logger)
		s.logger.Error("delete analysis failed", "analysis_id", id, "error", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid analysis id", s.logger)
		return
	}

	reader, mimeType, err := s.service.GetAnalysisMedia(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get media", s.logger)
		s.logger.Error("get media failed", "analysis_id", id, "error", err)
		return
	}
	if reader == nil {
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "media reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write media failed", "analysis_id", id, "error", err)
	}
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
