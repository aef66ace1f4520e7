package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileKind classifies an uploaded file for extraction dispatch.
type FileKind int

const (
	FileKindOther FileKind = iota
	FileKindImage
	FileKindPDF
)

var imageExts = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"tiff": true,
	"bmp":  true,
	"webp": true,
}

// FileExt returns the lowercased extension of name without the leading dot.
func FileExt(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// KindOf maps a declared file name to its extraction route. Recognized image
// types go to OCR, pdf goes to the text-layer reader, everything else is
// unsupported.
func KindOf(name string) FileKind {
	ext := FileExt(name)
	switch {
	case imageExts[ext]:
		return FileKindImage
	case ext == "pdf":
		return FileKindPDF
	default:
		return FileKindOther
	}
}

// EmbedKind maps a file name to the renderer's embeddable kinds: "pdf",
// "png", "jpeg" or "unsupported".
func EmbedKind(name string) string {
	switch FileExt(name) {
	case "pdf":
		return "pdf"
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpeg"
	default:
		return "unsupported"
	}
}

// SanitizeFileName keeps letters, digits, '-', '_' and '.', replacing
// everything else with '_'.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// TimestampedName builds the blob pathname for an upload:
// <sanitized base>_<unix ts><ext>. The pathname is the internal address of
// the bytes, distinct from the user-facing original file name.
func TimestampedName(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(filepath.Base(original), ext)
	return SanitizeFileName(fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext))
}

// BaseNameForDownload strips the extension and sanitizes the rest, for use
// in a Content-Disposition file name.
func BaseNameForDownload(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return SanitizeFileName(base)
}
