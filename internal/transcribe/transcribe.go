package transcribe

import "fmt"

// Status is the lifecycle state of a remote transcription job. The job is
// created by Submit and mutated only by the remote service; the client
// observes it via polling.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusError      Status = "error"
)

// Terminal reports whether the job has finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusError
}

// Job mirrors the transcript resource returned by the polling endpoint.
type Job struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// UploadError is returned when the audio upload step fails with a
// non-success HTTP status.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("audio upload failed with status %d: %s", e.StatusCode, e.Body)
}

// SubmitError is returned when transcript job creation fails with a
// non-success HTTP status.
type SubmitError struct {
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("transcript submission failed with status %d: %s", e.StatusCode, e.Body)
}

// JobFailedError is returned when the remote job reaches a failed or error
// status. It is terminal; the client does not retry the job.
type JobFailedError struct {
	ID     string
	Status Status
	Reason string
}

func (e *JobFailedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transcription %s ended with status %q: %s", e.ID, e.Status, e.Reason)
	}
	return fmt.Sprintf("transcription %s ended with status %q", e.ID, e.Status)
}
