package web

import "net/http"

// allowedImageTypes is the set of MIME types accepted for meal photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP"
// at offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is
// an accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// isWAV reports whether data is a RIFF/WAVE container.
func isWAV(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WAVE"
}

// isMP3 reports whether data starts with an ID3 tag or an MPEG frame sync.
func isMP3(data []byte) bool {
	if len(data) >= 3 && string(data[0:3]) == "ID3" {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && (data[1]&0xE0) == 0xE0
}

// isM4A reports whether data is an MP4 container ("ftyp" at offset 4).
func isM4A(data []byte) bool {
	return len(data) >= 8 && string(data[4:8]) == "ftyp"
}

// isOgg reports whether data starts with the Ogg capture pattern.
func isOgg(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == "OggS"
}

// allowedAudioMIME returns the detected MIME type and true if the data is
// an accepted audio format, or ("", false) otherwise.
func allowedAudioMIME(data []byte) (string, bool) {
	switch {
	case isWAV(data):
		return "audio/wav", true
	case isM4A(data):
		return "audio/mp4", true
	case isOgg(data):
		return "audio/ogg", true
	case isMP3(data):
		return "audio/mpeg", true
	}
	return "", false
}
