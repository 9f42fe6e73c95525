package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/chat"
)

type ChatUseCases struct {
	Start    *chat.StartChatUseCase
	List     *chat.ListChatsUseCase
	Get      *chat.GetChatUseCase
	Send     *chat.SendMessageUseCase
	MarkRead *chat.MarkReadUseCase
	Delete   *chat.DeleteChatUseCase
}

type ChatHandler struct {
	uc ChatUseCases
}

func NewChatHandler(uc ChatUseCases) *ChatHandler {
	return &ChatHandler{uc: uc}
}

func (h *ChatHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.StartChatRequest
	if !bind(c, &req) {
		return
	}

	ch, err := h.uc.Start.Execute(c.Request.Context(), userID, req.Username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToChatResponse(ch, userID))
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	chats, err := h.uc.List.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToChatResponses(chats, userID))
}

// Get чат с сообщениями от старых к новым.
func (h *ChatHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	ch, err := h.uc.Get.Execute(c.Request.Context(), chatID, userID,
		parseIntQuery(c, "limit", 0), parseIntQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToChatResponse(ch, userID))
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bind(c, &req) {
		return
	}

	msg, err := h.uc.Send.Execute(c.Request.Context(), chatID, userID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMessageResponse(msg))
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	n, err := h.uc.MarkRead.Execute(c.Request.Context(), chatID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"marked": n})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), chatID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "чат удалён"})
}
