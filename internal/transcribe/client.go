package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the AssemblyAI v2 API root.
	DefaultBaseURL = "https://api.assemblyai.com/v2"
	// DefaultPollInterval matches the original fixed 3-second cadence.
	DefaultPollInterval = 3 * time.Second
)

// Client drives a transcription job through its three stages: upload the
// raw audio, submit a job referencing the uploaded URL, then poll the job
// until it reaches a terminal status.
//
// By default polling is unbounded, mirroring the service contract of "keep
// polling until terminal". Set MaxWait to bound the whole Transcribe call
// with a deadline; independent of MaxWait, every wait honours ctx
// cancellation.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	logger     *slog.Logger

	PollInterval time.Duration
	MaxWait      time.Duration
}

// NewClient creates a client for the hosted transcription API. language is
// the ISO code sent with each job ("" omits it and lets the service detect).
func NewClient(apiKey, language string, logger *slog.Logger) *Client {
	return NewClientWithBaseURL(apiKey, language, DefaultBaseURL, logger)
}

// NewClientWithBaseURL creates a client pointing at a custom base URL
// (for testing).
func NewClientWithBaseURL(apiKey, language, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		language:     language,
		httpClient:   &http.Client{},
		logger:       logger,
		PollInterval: DefaultPollInterval,
	}
}

// Transcribe uploads audio, submits a transcription job, and polls until
// the job completes. It returns the recognized text, or the first error
// encountered in any stage.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if c.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.MaxWait)
		defer cancel()
	}

	audioURL, err := c.upload(ctx, audio)
	if err != nil {
		return "", err
	}
	c.logger.Debug("audio uploaded", "bytes", len(audio))

	jobID, err := c.submit(ctx, audioURL)
	if err != nil {
		return "", err
	}
	c.logger.Info("transcription submitted", "job_id", jobID)

	return c.poll(ctx, jobID)
}

func (c *Client) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading audio: %w", err)
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &UploadError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var uploaded struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if uploaded.UploadURL == "" {
		return "", fmt.Errorf("upload response missing upload_url")
	}
	return uploaded.UploadURL, nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, error) {
	payload := map[string]string{"audio_url": audioURL}
	if c.language != "" {
		payload["language_code"] = c.language
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling transcript request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating transcript request: %w", err)
	}
	req.Header.Set("authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting transcript: %w", err)
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &SubmitError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", fmt.Errorf("decoding transcript response: %w", err)
	}
	if job.ID == "" {
		return "", fmt.Errorf("transcript response missing id")
	}
	return job.ID, nil
}

// poll fetches the job immediately, then at PollInterval, until a terminal
// status arrives or ctx is done.
func (c *Client) poll(ctx context.Context, jobID string) (string, error) {
	for {
		job, err := c.getJob(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch {
		case job.Status == StatusCompleted:
			return job.Text, nil
		case job.Status.Terminal():
			return "", &JobFailedError{ID: jobID, Status: job.Status, Reason: job.Error}
		}

		c.logger.Debug("transcript not ready", "job_id", jobID, "status", job.Status)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for transcript %s: %w", jobID, ctx.Err())
		case <-time.After(c.PollInterval):
		}
	}
}

func (c *Client) getJob(ctx context.Context, jobID string) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set("authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling transcript %s: %w", jobID, err)
	}
	defer closeBody(resp.Body, c.logger)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcript poll returned status %d: %s", resp.StatusCode, body)
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("decoding poll response: %w", err)
	}
	return &job, nil
}

func closeBody(body io.Closer, logger *slog.Logger) {
	if err := body.Close(); err != nil {
		logger.Error("failed to close response body", "error", err)
	}
}
