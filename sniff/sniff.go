package sniff

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLen is how many leading bytes Classify needs to identify a buffer.
// It matches the detection window of the underlying signature library.
const SniffLen = 3072

// Result is the outcome of classifying an uploaded buffer.
type Result struct {
	MimeType  string // resolved base MIME type
	Extension string // extension without the leading dot, empty when unresolvable
	Changed   bool   // detection disagreed with the client declared type
}

// extensions maps base MIME types to a canonical extension. It backs the
// trusted-type bypass and the fallback for buffers whose signature is unknown.
var extensions = map[string]string{
	"video/webm":       "webm",
	"video/mp4":        "mp4",
	"video/quicktime":  "mov",
	"video/mpeg":       "mpg",
	"video/ogg":        "ogv",
	"image/jpeg":       "jpg",
	"image/png":        "png",
	"image/gif":        "gif",
	"image/webp":       "webp",
	"image/bmp":        "bmp",
	"audio/mpeg":       "mp3",
	"audio/ogg":        "ogg",
	"audio/wav":        "wav",
	"audio/webm":       "weba",
	"audio/aac":        "aac",
	"audio/flac":       "flac",
	"application/pdf":  "pdf",
	"application/zip":  "zip",
	"application/json": "json",
	"text/plain":       "txt",
}

// BaseType strips codec and charset parameters from a MIME string, so
// "video/webm;codecs=vp9" compares equal to "video/webm".
func BaseType(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// Classify resolves the true MIME type and extension for an upload.
//
// Types in trusted bypass sniffing entirely and take the client declared type
// at face value; everything else is identified by magic bytes, falling back to
// the client declared type when the signature is unknown. An empty Extension
// in the result means the buffer could not be classified.
func Classify(buf []byte, clientType string, trusted []string) Result {
	clientBase := BaseType(clientType)

	if clientBase != "" {
		for _, t := range trusted {
			if clientBase == BaseType(t) {
				return Result{MimeType: clientBase, Extension: extensions[clientBase]}
			}
		}
	}

	detected := mimetype.Detect(buf)
	if !detected.Is("application/octet-stream") {
		base := BaseType(detected.String())
		ext := strings.TrimPrefix(detected.Extension(), ".")
		if ext == "" {
			ext = extensions[base]
		}
		return Result{MimeType: base, Extension: ext, Changed: base != clientBase}
	}

	// No recognizable signature: fall back to the client declared type.
	if ext, ok := extensions[clientBase]; ok {
		return Result{MimeType: clientBase, Extension: ext}
	}
	return Result{MimeType: "application/octet-stream", Changed: clientBase != "application/octet-stream"}
}

// Allowed reports whether the base type of mime is in the allow list.
// An empty list allows everything.
func Allowed(mime string, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	base := BaseType(mime)
	for _, a := range allow {
		if BaseType(a) == base {
			return true
		}
	}
	return false
}
