package domain

import "testing"

func TestDetectFileKindPDFByMime(t *testing.T) {
	if got := DetectFileKind("application/pdf", "scan.bin"); got != KindPDF {
		t.Fatalf("kind = %q, want pdf", got)
	}
}

func TestDetectFileKindPDFByExtension(t *testing.T) {
	if got := DetectFileKind("application/octet-stream", "invoice.PDF"); got != KindPDF {
		t.Fatalf("kind = %q, want pdf", got)
	}
}

func TestDetectFileKindImageByMime(t *testing.T) {
	if got := DetectFileKind("image/png", "photo"); got != KindImage {
		t.Fatalf("kind = %q, want image", got)
	}
}

func TestDetectFileKindImageByExtension(t *testing.T) {
	if got := DetectFileKind("", "photo.webp"); got != KindImage {
		t.Fatalf("kind = %q, want image", got)
	}
}

func TestDetectFileKindUnknown(t *testing.T) {
	if got := DetectFileKind("text/csv", "table.csv"); got != KindUnknown {
		t.Fatalf("kind = %q, want unknown", got)
	}
}
