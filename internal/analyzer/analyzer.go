package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dprayogo/nutrisnap/internal/domain"
	"github.com/dprayogo/nutrisnap/internal/mediastore"
)

// ErrEmptyInput is returned when a text analysis is requested with empty or
// whitespace-only input. It is raised before any remote call is made.
var ErrEmptyInput = errors.New("food text is empty")

// foodExtractor is the subset of the vision backend the analyzer requires.
type foodExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (string, error)
}

// estimator turns a food listing into a nutrition report.
type estimator interface {
	Estimate(ctx context.Context, foodListing string) (string, error)
}

// transcriber converts an audio recording into text.
type transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// analysisRepository is the subset of store.AnalysisStore the analyzer requires.
type analysisRepository interface {
	Create(ctx context.Context, modality domain.Modality, mediaKey, mediaMIME, foodListing, report string) (*domain.Analysis, error)
	GetByID(ctx context.Context, id int64) (*domain.Analysis, error)
	List(ctx context.Context) ([]*domain.Analysis, error)
	Delete(ctx context.Context, id int64) error
}

// Service sequences one orchestrated flow per user action: the image path
// runs extraction then estimation, the text path runs estimation directly,
// and the audio path runs transcription then estimation. Calls are strictly
// sequential and nothing is cached between them; the first error aborts the
// flow.
type Service struct {
	extractor   foodExtractor
	estimator   estimator
	transcriber transcriber
	analyses    analysisRepository
	media       mediastore.MediaStore
	logger      *slog.Logger
}

func NewService(
	extractor foodExtractor,
	est estimator,
	trans transcriber,
	analyses analysisRepository,
	media mediastore.MediaStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		extractor:   extractor,
		estimator:   est,
		transcriber: trans,
		analyses:    analyses,
		media:       media,
		logger:      logger,
	}
}

// AnalyzeImage detects foods in the photo, estimates their nutrition, and
// persists the run.
func (s *Service) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*domain.Analysis, error) {
	s.logger.Info("image analysis started", "mime_type", mimeType, "bytes", len(image))

	listing, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect food: %w", err)
	}
	s.logger.Info("food detection complete", "listing_len", len(listing))

	report, err := s.estimator.Estimate(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate nutrition: %w", err)
	}

	return s.record(ctx, domain.ModalityImage, image, mimeType, listing, report)
}

// AnalyzeText estimates nutrition from a user-typed food listing. Empty or
// whitespace-only input fails with ErrEmptyInput before any network call.
func (s *Service) AnalyzeText(ctx context.Context, text string) (*domain.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	s.logger.Info("text analysis started", "text_len", len(text))

	report, err := s.estimator.Estimate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate nutrition: %w", err)
	}

	return s.analyses.Create(ctx, domain.ModalityText, "", "", text, report)
}

// AnalyzeAudio transcribes the recording, estimates nutrition from the
// transcript, and persists the run.
func (s *Service) AnalyzeAudio(ctx context.Context, audio []byte, mimeType string) (*domain.Analysis, error) {
	s.logger.Info("audio analysis started", "mime_type", mimeType, "bytes", len(audio))

	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	s.logger.Info("transcription complete", "transcript_len", len(transcript))

	report, err := s.estimator.Estimate(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate nutrition: %w", err)
	}

	return s.record(ctx, domain.ModalityAudio, audio, mimeType, transcript, report)
}

// record saves the media blob and the analysis row. The blob is removed
// again if the row cannot be written.
func (s *Service) record(ctx context.Context, modality domain.Modality, media []byte, mimeType, listing, report string) (*domain.Analysis, error) {
	storageKey, err := s.media.Save(ctx, string(modality), mimeType, bytes.NewReader(media))
	if err != nil {
		return nil, fmt.Errorf("failed to save media: %w", err)
	}
	s.logger.Debug("media saved", "storage_key", storageKey)

	analysis, err := s.analyses.Create(ctx, modality, storageKey, mimeType, listing, report)
	if err != nil {
		if derr := s.media.Delete(ctx, storageKey); derr != nil {
			s.logger.Error("failed to roll back media after store error", "storage_key", storageKey, "error", derr)
		}
		return nil, fmt.Errorf("failed to create analysis record: %w", err)
	}

	s.logger.Info("analysis complete", "analysis_id", analysis.ID, "modality", modality)
	return analysis, nil
}

func (s *Service) GetAnalysis(ctx context.Context, id int64) (*domain.Analysis, error) {
	return s.analyses.GetByID(ctx, id)
}

func (s *Service) ListAnalyses(ctx context.Context) ([]*domain.Analysis, error) {
	return s.analyses.List(ctx)
}

// DeleteAnalysis removes the history row and its stored media blob. A blob
// that cannot be removed is logged, not fatal.
func (s *Service) DeleteAnalysis(ctx context.Context, id int64) error {
	analysis, err := s.analyses.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get analysis: %w", err)
	}
	if analysis == nil {
		return nil
	}

	if err := s.analyses.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	if analysis.MediaKey != "" {
		if err := s.media.Delete(ctx, analysis.MediaKey); err != nil {
			s.logger.Error("failed to delete media file", "storage_key", analysis.MediaKey, "error", err)
		}
	}

	return nil
}

// GetAnalysisMedia returns the stored upload for an analysis, or nil if the
// analysis does not exist or has no media.
func (s *Service) GetAnalysisMedia(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	analysis, err := s.analyses.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get analysis: %w", err)
	}
	if analysis == nil || analysis.MediaKey == "" {
		return nil, "", nil
	}
	return s.media.Get(ctx, analysis.MediaKey)
}
