package domain

import (
	"path/filepath"
	"strings"
)

type FileKind string

const (
	KindImage   FileKind = "image"
	KindPDF     FileKind = "pdf"
	KindUnknown FileKind = "unknown"
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
}

// DetectFileKind routes a document by MIME type first, filename extension
// second. Unknown is not an error: callers default it to the image strategy.
func DetectFileKind(mimeType, name string) FileKind {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	if strings.Contains(mime, "pdf") || ext == "pdf" {
		return KindPDF
	}
	if strings.HasPrefix(mime, "image/") {
		return KindImage
	}
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	return KindUnknown
}
