package types

import "errors"

// Error taxonomy shared by services and handlers. Services wrap these with
// fmt.Errorf("...: %w", ...) and handlers map them to HTTP status codes with
// errors.Is.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionEngine    = errors.New("extraction engine failure")
	ErrAIFailure           = errors.New("ai completion failure")
	ErrStoreUnavailable    = errors.New("blob store unavailable")
	ErrRenderFailure       = errors.New("render failure")
)
