package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lehoangvu/docchat-be/service"
	"github.com/lehoangvu/docchat-be/types"
)

const maxUploadSize = 10 << 20

type UploadHandler struct {
	blobs     service.BlobStore
	extractor service.ExtractionService
}

func NewUploadHandler(blobs service.BlobStore, extractor service.ExtractionService) *UploadHandler {
	return &UploadHandler{
		blobs:     blobs,
		extractor: extractor,
	}
}

// HandleUpload stores the file and runs text extraction in one round trip.
// The client passes the returned blob pathname and extracted text to the
// chat endpoint to start a conversation about the document.
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Could not read file",
		})
		return
	}

	pathname, err := h.blobs.Put(c, header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	text, err := h.extractor.Extract(c, data, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		text = fmt.Sprintf("[OCR was unable to extract text from %s]", header.Filename)
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.UploadResponse{
			BlobPathname:  pathname,
			FileName:      header.Filename,
			ExtractedText: text,
		},
	})
}
