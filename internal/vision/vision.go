package vision

import "context"

// ExtractionPrompt is the shared instruction used by all vision backends.
// It demands a bare bullet list of "quantity + food name" lines so the
// output can be fed straight into the nutrition prompt without parsing.
const ExtractionPrompt = `From this photo, identify every food item you can see.

Instructions:
- Name each food and its quantity separately.
- Answer as a bullet list, for example:
  - 2 crackers
  - 1 fried chicken
  - 1 plate of fried rice
  - 3 cucumber slices
- If a quantity is uncertain, give a reasonable estimate from the photo.
- No extra prose, only the list.`

// FoodExtractor turns a meal photo into a plain-text food listing.
type FoodExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (string, error)
}

// NormalizeMIME maps browser MIME types to the values the vision endpoints
// accept. Only jpeg, png, gif, and webp are passed through; unknown types
// are coerced to jpeg as the most universally supported lossy fallback.
// Callers should validate MIME types before reaching this layer.
func NormalizeMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
