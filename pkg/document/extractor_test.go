package document

import "testing"

func TestNormalizeContentType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"text/plain", "text/plain"},
		{"text/plain; charset=utf-8", "text/plain"},
		{"TEXT/MARKDOWN", "text/markdown"},
		{"application/pdf", "application/pdf"},
	}
	for _, tt := range tests {
		if got := NormalizeContentType(tt.in); got != tt.want {
			t.Errorf("NormalizeContentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	supported := []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"application/json",
		"application/pdf",
		"text/plain; charset=utf-8",
	}
	for _, ct := range supported {
		if !IsSupported(ct) {
			t.Errorf("IsSupported(%q) = false, want true", ct)
		}
	}

	unsupported := []string{
		"image/png",
		"application/zip",
		"video/mp4",
		"",
	}
	for _, ct := range unsupported {
		if IsSupported(ct) {
			t.Errorf("IsSupported(%q) = true, want false", ct)
		}
	}
}

func TestExtractText(t *testing.T) {
	text, err := Extract("text/plain; charset=utf-8", []byte("line one\r\nline two\x00\n"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "line one\nline two" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractPdfYieldsNoText(t *testing.T) {
	text, err := Extract("application/pdf", []byte("%PDF-1.4 ..."))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text for pdf, got %q", text)
	}
}

func TestExtractUnsupported(t *testing.T) {
	if _, err := Extract("image/png", []byte{0x89, 0x50}); err == nil {
		t.Fatal("expected error for unsupported content type")
	}
}
