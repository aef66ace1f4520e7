package service

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TesseractEngine runs OCR through a local tesseract installation. A client
// is acquired per recognition and released in all paths; nothing is shared
// across calls.
type TesseractEngine struct {
	lang string
	log  *zap.SugaredLogger
}

func NewTesseractEngine(log *zap.SugaredLogger) *TesseractEngine {
	return &TesseractEngine{
		lang: "eng",
		log:  log,
	}
}

func (e *TesseractEngine) Recognize(_ context.Context, image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.lang); err != nil {
		return "", fmt.Errorf("set language %s: %w", e.lang, err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}
