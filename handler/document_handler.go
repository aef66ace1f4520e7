package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lehoangvu/docchat-be/service"
	"github.com/lehoangvu/docchat-be/types"
)

type DocumentHandler interface {
	HandleListDocuments(c *gin.Context)
}

type documentHandler struct {
	chatService service.ChatService
}

func NewDocumentHandler(chatService service.ChatService) DocumentHandler {
	return &documentHandler{
		chatService: chatService,
	}
}

func (h *documentHandler) HandleListDocuments(c *gin.Context) {
	items, err := h.chatService.ListDocuments(c, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   items,
	})
}
