package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/types"
	"github.com/lehoangvu/docchat-be/utils"
)

// OCREngine recognizes text in a raster image. Implementations acquire and
// release any engine resources within a single Recognize call.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// ExtractionService turns a file's bytes into plain text: images go through
// the OCR engine, PDFs through the embedded text layer. Whitespace-only
// results are returned as-is; substituting a user-facing placeholder is the
// caller's concern.
type ExtractionService interface {
	Extract(ctx context.Context, data []byte, fileName string) (string, error)
}

type extractionService struct {
	ocr OCREngine
	log *zap.SugaredLogger
}

func NewExtractionService(ocr OCREngine, log *zap.SugaredLogger) ExtractionService {
	return &extractionService{
		ocr: ocr,
		log: log,
	}
}

func (s *extractionService) Extract(ctx context.Context, data []byte, fileName string) (string, error) {
	switch utils.KindOf(fileName) {
	case utils.FileKindImage:
		text, err := s.ocr.Recognize(ctx, data)
		if err != nil {
			return "", fmt.Errorf("%w: recognize %s: %v", types.ErrExtractionEngine, fileName, err)
		}
		s.log.Infow("ocr extraction done", "file", fileName, "text_len", len(text))
		return text, nil
	case utils.FileKindPDF:
		text, err := extractPDFText(data)
		if err != nil {
			return "", fmt.Errorf("%w: parse pdf %s: %v", types.ErrExtractionEngine, fileName, err)
		}
		s.log.Infow("pdf text extraction done", "file", fileName, "text_len", len(text))
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedFileType, utils.FileExt(fileName))
	}
}

// extractPDFText reads the PDF's embedded text layer. Image-only/scanned
// PDFs yield an empty string; there is no OCR fallback for them.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
