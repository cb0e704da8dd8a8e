package domain

import "time"

// Modality identifies which input path produced an analysis.
type Modality string

const (
	ModalityImage Modality = "image"
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityImage, ModalityText, ModalityAudio:
		return true
	}
	return false
}

// Analysis is one completed nutrition estimation run. FoodListing holds the
// intermediate text (detected foods, typed foods, or the audio transcript)
// and Report holds the model-generated nutrition table. Both are opaque
// model output and are never parsed into fields.
type Analysis struct {
	ID          int64     `json:"id"`
	Modality    Modality  `json:"modality"`
	MediaKey    string    `json:"-"`
	MediaMIME   string    `json:"media_mime,omitempty"`
	FoodListing string    `json:"food_listing"`
	Report      string    `json:"report"`
	CreatedAt   time.Time `json:"created_at"`
}
