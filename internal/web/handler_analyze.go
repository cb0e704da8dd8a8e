package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dprayogo/nutrisnap/internal/analyzer"
	"github.com/dprayogo/nutrisnap/internal/openrouter"
	"github.com/dprayogo/nutrisnap/internal/transcribe"
)

const (
	maxImageSize = 20 * 1024 * 1024 // 20 MB
	maxAudioSize = 50 * 1024 * 1024 // 50 MB
)

func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	imageData, ok := s.readUpload(w, r, "image", maxImageSize)
	if !ok {
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported image format", s.logger)
		return
	}

	analysis, err := s.service.AnalyzeImage(r.Context(), imageData, mimeType)
	if err != nil {
		s.writeAnalyzeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis, s.logger)
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")

	analysis, err := s.service.AnalyzeText(r.Context(), text)
	if err != nil {
		s.writeAnalyzeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis, s.logger)
}

func (s *Server) handleAnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	audioData, ok := s.readUpload(w, r, "audio", maxAudioSize)
	if !ok {
		return
	}

	mimeType, ok := allowedAudioMIME(audioData)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported audio format", s.logger)
		return
	}

	analysis, err := s.service.AnalyzeAudio(r.Context(), audioData, mimeType)
	if err != nil {
		s.writeAnalyzeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis, s.logger)
}

// readUpload parses the multipart form and reads the named file field in
// full. On failure it writes the error response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string, maxSize int64) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form", s.logger)
		return nil, false
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+" file required", s.logger)
		return nil, false
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file", s.logger)
		s.logger.Error("read upload failed", "field", field, "error", err)
		return nil, false
	}
	return data, true
}

// writeAnalyzeError maps analyzer errors onto HTTP statuses: validation
// failures are the client's fault, remote service failures are a bad
// gateway, anything else is internal.
func (s *Server) writeAnalyzeError(w http.ResponseWriter, err error) {
	if errors.Is(err, analyzer.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, "enter a food listing first", s.logger)
		return
	}

	var (
		remoteErr *openrouter.RemoteError
		uploadErr *transcribe.UploadError
		submitErr *transcribe.SubmitError
		jobErr    *transcribe.JobFailedError
	)
	if errors.As(err, &remoteErr) || errors.As(err, &uploadErr) ||
		errors.As(err, &submitErr) || errors.As(err, &jobErr) {
		s.logger.Error("remote service failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error(), s.logger)
		return
	}

	s.logger.Error("analysis failed", "error", err)
	writeError(w, http.StatusInternalServerError, "analysis failed", s.logger)
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
