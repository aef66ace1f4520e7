package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lehoangvu/docchat-be/service"
	"github.com/lehoangvu/docchat-be/types"
)

type ChatHandler interface {
	HandleChatMessage(c *gin.Context)
	HandleListConversations(c *gin.Context)
	HandleGetMessages(c *gin.Context)
	HandleGetCompiledDocument(c *gin.Context)
	HandleDownloadCompiled(c *gin.Context)
}

type chatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) ChatHandler {
	return &chatHandler{
		chatService: chatService,
	}
}

func (h *chatHandler) HandleChatMessage(c *gin.Context) {
	var req types.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.chatService.ProcessMessage(c, currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   resp,
	})
}

func (h *chatHandler) HandleListConversations(c *gin.Context) {
	summaries, err := h.chatService.ListConversations(c, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   summaries,
	})
}

func (h *chatHandler) HandleGetMessages(c *gin.Context) {
	msgs, err := h.chatService.GetMessages(c, currentUserID(c), c.Param("chatId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   msgs,
	})
}

func (h *chatHandler) HandleGetCompiledDocument(c *gin.Context) {
	doc, err := h.chatService.GetCompiledDocument(c, currentUserID(c), c.Param("chatId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   doc,
	})
}

func (h *chatHandler) HandleDownloadCompiled(c *gin.Context) {
	fileName, pdfBytes, err := h.chatService.ExportCompiledDocument(c, currentUserID(c), c.Param("chatId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
