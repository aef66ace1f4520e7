package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/lehoangvu/docchat-be/types"
)

func renderedPageCount(t *testing.T, pdfBytes []byte) int {
	t.Helper()
	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		t.Fatalf("re-parse rendered pdf: %v", err)
	}
	return reader.NumPage()
}

func TestGenerateCompiledPDFSurvivesNonWinAnsiGlyphs(t *testing.T) {
	svc := NewPDFService(testLogger())

	out, err := svc.GenerateCompiledPDF(&CompiledPDFData{
		OriginalFileName: "scan.png",
		ExtractedOCRText: "● item one\n● item two\n日本語テキスト",
		ChatHistory: []types.ChatHistoryItem{
			{Sender: types.MessageSenderUser, Content: "what's in the “scan”?", CreatedAt: time.Now()},
		},
		OriginalFileKind: "unsupported",
	})
	if err != nil {
		t.Fatalf("GenerateCompiledPDF() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestGenerateCompiledPDFPaginatesLongText(t *testing.T) {
	svc := NewPDFService(testLogger())

	var sb strings.Builder
	for i := 0; i < 400; i++ {
		sb.WriteString("line of extracted text that fills the page\n")
	}
	out, err := svc.GenerateCompiledPDF(&CompiledPDFData{
		OriginalFileName: "big.pdf",
		ExtractedOCRText: sb.String(),
		OriginalFileKind: "unsupported",
	})
	if err != nil {
		t.Fatalf("GenerateCompiledPDF() error = %v", err)
	}
	// One placeholder page plus several pages of wrapped text.
	if got := renderedPageCount(t, out); got < 3 {
		t.Errorf("page count = %d, want at least 3", got)
	}
}

func TestGenerateCompiledPDFWithMissingOriginal(t *testing.T) {
	svc := NewPDFService(testLogger())

	out, err := svc.GenerateCompiledPDF(&CompiledPDFData{
		OriginalFileName: "lost.pdf",
		ExtractedOCRText: "",
		ChatHistory:      nil,
		OriginalFileKind: "pdf",
	})
	if err != nil {
		t.Fatalf("GenerateCompiledPDF() error = %v", err)
	}
	if got := renderedPageCount(t, out); got < 2 {
		t.Errorf("page count = %d, want placeholder and text sections", got)
	}
}

func TestGenerateCompiledPDFCorruptOriginalFallsBack(t *testing.T) {
	svc := NewPDFService(testLogger())

	out, err := svc.GenerateCompiledPDF(&CompiledPDFData{
		OriginalFileName:  "broken.pdf",
		ExtractedOCRText:  "recovered text",
		OriginalFileBytes: []byte("definitely not a pdf"),
		OriginalFileKind:  "pdf",
	})
	if err != nil {
		t.Fatalf("GenerateCompiledPDF() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestSanitizeWinAnsi(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "Invoice #42", "Invoice #42"},
		{"keeps newlines and tabs", "a\n\tb", "a\n\tb"},
		{"keeps winansi extras", "€ “quoted” – dash…", "€ “quoted” – dash…"},
		{"keeps latin-1", "café naïve", "café naïve"},
		{"replaces bullets", "● item", "? item"},
		{"replaces cjk", "日本", "??"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeWinAnsi(tt.in); got != tt.want {
				t.Errorf("sanitizeWinAnsi(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
