package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dprayogo/nutrisnap/internal/analyzer"
	"github.com/dprayogo/nutrisnap/internal/db"
	"github.com/dprayogo/nutrisnap/internal/domain"
	"github.com/dprayogo/nutrisnap/internal/mediastore/local"
	"github.com/dprayogo/nutrisnap/internal/openrouter"
	"github.com/dprayogo/nutrisnap/internal/store"
	"github.com/dprayogo/nutrisnap/internal/web"
)

type stubExtractor struct {
	listing string
	err     error
}

func (s *stubExtractor) Extract(context.Context, []byte, string) (string, error) {
	return s.listing, s.err
}

type stubEstimator struct {
	report string
	err    error
}

func (s *stubEstimator) Estimate(context.Context, string) (string, error) {
	return s.report, s.err
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return s.text, s.err
}

type testApp struct {
	server      *web.Server
	extractor   *stubExtractor
	estimator   *stubEstimator
	transcriber *stubTranscriber
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	media, err := local.NewLocalMediaStore(t.TempDir())
	require.NoError(t, err)

	app := &testApp{
		extractor:   &stubExtractor{listing: "- 2 telur\n- 1 nasi goreng"},
		estimator:   &stubEstimator{report: "| Telur | 2 | 310 |"},
		transcriber: &stubTranscriber{text: "dua telur dan nasi goreng"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := analyzer.NewService(app.extractor, app.estimator, app.transcriber,
		store.NewAnalysisStore(database), media, logger)
	app.server = web.NewServer(svc, logger)
	return app
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

// minimalJPEG is a JPEG-signature payload large enough to pass sniffing.
func minimalJPEG() []byte {
	data := make([]byte, 512)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00})
	return data
}

func minimalWAV() []byte {
	data := []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
	return append(data, make([]byte, 32)...)
}

func multipartUpload(t *testing.T, field, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func decodeAnalysis(t *testing.T, rec *httptest.ResponseRecorder) domain.Analysis {
	t.Helper()
	var analysis domain.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&analysis))
	return analysis
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope.Error.Message
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAnalyzeImageEndpoint(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartUpload(t, "image", "meal.jpg", minimalJPEG())
	req := httptest.NewRequest(http.MethodPost, "/analyses/image", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	analysis := decodeAnalysis(t, rec)
	assert.Equal(t, domain.ModalityImage, analysis.Modality)
	assert.Equal(t, "- 2 telur\n- 1 nasi goreng", analysis.FoodListing)
	assert.Equal(t, "| Telur | 2 | 310 |", analysis.Report)
	assert.NotZero(t, analysis.ID)
}

func TestAnalyzeImageRejectsNonImage(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartUpload(t, "image", "notes.txt", []byte("just some text"))
	req := httptest.NewRequest(http.MethodPost, "/analyses/image", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "unsupported image format")
}

func TestAnalyzeImageMissingFile(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartUpload(t, "wrongfield", "meal.jpg", minimalJPEG())
	req := httptest.NewRequest(http.MethodPost, "/analyses/image", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeImageRemoteFailure(t *testing.T) {
	app := newTestApp(t)
	app.extractor.err = &openrouter.RemoteError{StatusCode: http.StatusTooManyRequests, Body: "rate limited"}

	body, contentType := multipartUpload(t, "image", "meal.jpg", minimalJPEG())
	req := httptest.NewRequest(http.MethodPost, "/analyses/image", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.do(t, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyzeTextEndpoint(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"text": {"2 telur, 1 nasi goreng"}}
	req := httptest.NewRequest(http.MethodPost, "/analyses/text", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	analysis := decodeAnalysis(t, rec)
	assert.Equal(t, domain.ModalityText, analysis.Modality)
	assert.Equal(t, "2 telur, 1 nasi goreng", analysis.FoodListing)
}

func TestAnalyzeTextEmptyInput(t *testing.T) {
	app := newTestApp(t)

	for _, text := range []string{"", "   "} {
		form := url.Values{"text": {text}}
		req := httptest.NewRequest(http.MethodPost, "/analyses/text", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := app.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "text %q", text)
		assert.Contains(t, errorMessage(t, rec), "enter a food listing first")
	}
}

func TestAnalyzeAudioEndpoint(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartUpload(t, "audio", "meal.wav", minimalWAV())
	req := httptest.NewRequest(http.MethodPost, "/analyses/audio", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	analysis := decodeAnalysis(t, rec)
	assert.Equal(t, domain.ModalityAudio, analysis.Modality)
	assert.Equal(t, "dua telur dan nasi goreng", analysis.FoodListing)
}

func TestAnalyzeAudioRejectsNonAudio(t *testing.T) {
	app := newTestApp(t)

	body, contentType := multipartUpload(t, "audio", "meal.jpg", minimalJPEG())
	req := httptest.NewRequest(http.MethodPost, "/analyses/audio", body)
	req.Header.Set("Content-Type", contentType)

	rec := app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "unsupported audio format")
}

func TestHistoryLifecycle(t *testing.T) {
	app := newTestApp(t)

	// Seed one image analysis.
	body, contentType := multipartUpload(t, "image", "meal.jpg", minimalJPEG())
	req := httptest.NewRequest(http.MethodPost, "/analyses/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeAnalysis(t, rec)

	// List includes it.
	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/analyses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []domain.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Get by id.
	rec = app.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/analyses/%d", created.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeAnalysis(t, rec)
	assert.Equal(t, created.FoodListing, got.FoodListing)

	// Media round-trips.
	rec = app.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/analyses/%d/media", created.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, minimalJPEG(), rec.Body.Bytes())

	// Delete.
	rec = app.do(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/analyses/%d", created.ID), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Gone afterwards.
	rec = app.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/analyses/%d", created.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/analyses/%d/media", created.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEmptyReturnsArray(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/analyses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetAnalysisInvalidID(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/analyses/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAnalysisNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/analyses/9999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTextAnalysisHasNoMedia(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"text": {"2 telur"}}
	req := httptest.NewRequest(http.MethodPost, "/analyses/text", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeAnalysis(t, rec)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/analyses/%d/media", created.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
