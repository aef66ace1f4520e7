package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	fpdi "github.com/jung-kurt/gofpdf/contrib/gofpdi"
	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/types"
)

// A4 in points, portrait.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	pageMargin = 50.0

	headingFontSize = 16.0
	bodyFontSize    = 10.0
	bodyLineHeight  = 12.0
)

// CompiledPDFData is everything the renderer needs for one export. The
// original file is optional; OriginalFileKind is "pdf", "png", "jpeg" or
// "unsupported" and tells the renderer how to embed the bytes, if at all.
type CompiledPDFData struct {
	OriginalFileName  string
	ExtractedOCRText  string
	ChatHistory       []types.ChatHistoryItem
	OriginalFileBytes []byte
	OriginalFileKind  string
}

// PDFService renders a compiled document into a downloadable PDF with three
// sections: the embedded original, the extracted text, and the chat
// transcript.
type PDFService interface {
	GenerateCompiledPDF(data *CompiledPDFData) ([]byte, error)
}

type pdfService struct {
	log *zap.SugaredLogger
}

func NewPDFService(log *zap.SugaredLogger) PDFService {
	return &pdfService{log: log}
}

func (s *pdfService) GenerateCompiledPDF(data *CompiledPDFData) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	w := &pageWriter{
		doc: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
	}

	s.addOriginalSection(w, data)
	s.addOCRSection(w, data.ExtractedOCRText)
	s.addChatHistorySection(w, data.ChatHistory)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *pdfService) addOriginalSection(w *pageWriter, data *CompiledPDFData) {
	switch data.OriginalFileKind {
	case "pdf":
		if len(data.OriginalFileBytes) == 0 {
			s.placeholderPage(w, data.OriginalFileName, "Original file was not available for embedding.")
			return
		}
		if err := embedPDFPages(w, data.OriginalFileBytes); err != nil {
			s.log.Warnw("embed original pdf", "file", data.OriginalFileName, "error", err)
			s.placeholderPage(w, data.OriginalFileName, "Error: Could not embed the original PDF document.")
		}
	case "png", "jpeg":
		if len(data.OriginalFileBytes) == 0 {
			s.placeholderPage(w, data.OriginalFileName, "Original file was not available for embedding.")
			return
		}
		if err := embedImagePage(w, data); err != nil {
			s.log.Warnw("embed original image", "file", data.OriginalFileName, "error", err)
			s.placeholderPage(w, data.OriginalFileName, "Error: Could not embed the original image.")
		}
	default:
		s.placeholderPage(w, data.OriginalFileName, "Original document of this type cannot be embedded in the PDF.")
	}
}

func (s *pdfService) placeholderPage(w *pageWriter, fileName, reason string) {
	w.addPage()
	w.heading("Original Document: " + fileName)
	w.wrappedText(reason, "", bodyFontSize, bodyLineHeight)
}

// embedPDFPages copies every page of the original into the export, scaled to
// fit inside the margins. The importer panics on malformed input, so the
// whole import is panic-guarded; pages already drawn before a late failure
// stay in the document.
func embedPDFPages(w *pageWriter, fileBytes []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import pdf: %v", r)
		}
	}()

	rs := io.ReadSeeker(bytes.NewReader(fileBytes))
	tpl := fpdi.ImportPageFromStream(w.doc, &rs, 1, "/MediaBox")
	sizes := fpdi.GetPageSizes()
	drawImportedPage(w, tpl, sizes[1])
	for page := 2; page <= len(sizes); page++ {
		tpl = fpdi.ImportPageFromStream(w.doc, &rs, page, "/MediaBox")
		drawImportedPage(w, tpl, sizes[page])
	}
	return nil
}

func drawImportedPage(w *pageWriter, tpl int, size map[string]map[string]float64) {
	srcW, srcH := pageWidth, pageHeight
	if box, ok := size["/MediaBox"]; ok && box["w"] > 0 && box["h"] > 0 {
		srcW, srcH = box["w"], box["h"]
	}
	availW := pageWidth - 2*pageMargin
	availH := pageHeight - 2*pageMargin
	scale := availW / srcW
	if srcH*scale > availH {
		scale = availH / srcH
	}
	drawW, drawH := srcW*scale, srcH*scale

	w.addPage()
	x := (pageWidth - drawW) / 2
	y := (pageHeight - drawH) / 2
	fpdi.UseImportedTemplate(w.doc, tpl, x, y, drawW, drawH)
	w.y = pageHeight
}

func embedImagePage(w *pageWriter, data *CompiledPDFData) error {
	// Decode the header first so a corrupt image fails cleanly instead of
	// poisoning the document's error state.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data.OriginalFileBytes))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("decode image: empty dimensions")
	}

	w.addPage()
	w.heading("Original Document: " + data.OriginalFileName)

	opts := gofpdf.ImageOptions{ImageType: strings.ToUpper(data.OriginalFileKind)}
	name := "original_" + data.OriginalFileKind
	w.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(data.OriginalFileBytes))
	if w.doc.Err() {
		return fmt.Errorf("register image: %v", w.doc.Error())
	}

	availW := pageWidth - 2*pageMargin
	availH := pageHeight - pageMargin - w.y
	scale := availW / float64(cfg.Width)
	if float64(cfg.Height)*scale > availH {
		scale = availH / float64(cfg.Height)
	}
	drawW := float64(cfg.Width) * scale
	drawH := float64(cfg.Height) * scale
	x := (pageWidth - drawW) / 2
	w.doc.ImageOptions(name, x, w.y, drawW, drawH, false, opts, 0, "")
	w.y += drawH
	return nil
}

func (s *pdfService) addOCRSection(w *pageWriter, text string) {
	w.addPage()
	w.heading("OCR Extracted Text")
	if strings.TrimSpace(text) == "" {
		text = "No OCR text extracted."
	}
	w.wrappedText(text, "", bodyFontSize, bodyLineHeight)
}

func (s *pdfService) addChatHistorySection(w *pageWriter, history []types.ChatHistoryItem) {
	if w.y > pageHeight-pageMargin-100 {
		w.addPage()
	} else {
		w.y += 20
	}
	w.heading("Chat History")

	if len(history) == 0 {
		w.wrappedText("No chat history available.", "", bodyFontSize, bodyLineHeight)
		return
	}
	for _, item := range history {
		label := "User"
		if item.Sender == types.MessageSenderBot {
			label = "AI"
		}
		header := fmt.Sprintf("%s (%s):", label, item.CreatedAt.Format("1/2/2006, 3:04:05 PM"))
		w.wrappedText(header, "B", bodyFontSize, bodyLineHeight)
		w.y += 5
		w.wrappedText(item.Content, "", bodyFontSize, bodyLineHeight)
		if item.IsSourceDocument && item.FileName != "" {
			w.indentedText("(Attached file: "+item.FileName+")", 10, 8, 10)
		}
		w.y += 15
	}
}

// pageWriter tracks a top-down y cursor on an A4 page and breaks to a new
// page whenever the next line would cross the bottom margin. Auto page break
// is off; this is the only pagination in the renderer.
type pageWriter struct {
	doc *gofpdf.Fpdf
	tr  func(string) string
	y   float64
}

func (w *pageWriter) addPage() {
	w.doc.AddPage()
	w.y = pageMargin
}

func (w *pageWriter) ensure(height float64) {
	if w.y+height > pageHeight-pageMargin {
		w.addPage()
	}
}

func (w *pageWriter) heading(text string) {
	w.doc.SetFont("Helvetica", "B", headingFontSize)
	w.ensure(headingFontSize)
	w.doc.Text(pageMargin, w.y+headingFontSize, w.tr(sanitizeWinAnsi(text)))
	w.y += headingFontSize + 9
}

// wrappedText draws text at the left margin with greedy word wrapping. Words
// wider than the content area go on a line of their own and are clipped by
// the page edge rather than broken mid-word.
func (w *pageWriter) wrappedText(text, style string, size, lineHeight float64) {
	w.doc.SetFont("Helvetica", style, size)
	maxWidth := pageWidth - 2*pageMargin
	for _, paragraph := range strings.Split(sanitizeWinAnsi(text), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			w.y += lineHeight
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if line == "" || w.doc.GetStringWidth(w.tr(candidate)) <= maxWidth {
				line = candidate
				continue
			}
			w.emit(pageMargin, line, size, lineHeight)
			line = word
		}
		if line != "" {
			w.emit(pageMargin, line, size, lineHeight)
		}
	}
}

func (w *pageWriter) indentedText(text string, indent, size, lineHeight float64) {
	w.doc.SetFont("Helvetica", "I", size)
	w.emit(pageMargin+indent, sanitizeWinAnsi(text), size, lineHeight)
}

func (w *pageWriter) emit(x float64, line string, size, lineHeight float64) {
	w.ensure(lineHeight)
	w.doc.Text(x, w.y+size, w.tr(line))
	w.y += lineHeight
}

// Characters outside Latin-1 that WinAnsi still encodes (curly quotes,
// dashes, the euro sign and friends).
var winAnsiExtras = map[rune]bool{
	0x20AC: true, 0x201A: true, 0x0192: true, 0x201E: true, 0x2026: true,
	0x2020: true, 0x2021: true, 0x02C6: true, 0x2030: true, 0x0160: true,
	0x2039: true, 0x0152: true, 0x017D: true, 0x2018: true, 0x2019: true,
	0x201C: true, 0x201D: true, 0x2022: true, 0x2013: true, 0x2014: true,
	0x02DC: true, 0x2122: true, 0x0161: true, 0x203A: true, 0x0153: true,
	0x017E: true, 0x0178: true,
}

// sanitizeWinAnsi replaces every rune the PDF core fonts cannot encode with
// '?'. OCR output regularly contains box-drawing and bullet glyphs that
// would otherwise abort the render.
func sanitizeWinAnsi(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r >= 0x20 && r <= 0x7E:
			return r
		case r >= 0xA0 && r <= 0xFF:
			return r
		case winAnsiExtras[r]:
			return r
		default:
			return '?'
		}
	}, s)
}
