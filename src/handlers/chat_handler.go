package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/services"
	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/utils"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// HandleChatMessage forwards an assistant message to the chat webhook and
// returns its reply.
func (h *ChatHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(requestBody.Message) == "" {
		utils.SendJSONError(w, "Message is required", http.StatusBadRequest)
		return
	}

	reply, err := h.chatService.SendMessage(userID, requestBody.Message)
	if err != nil {
		logger.L.Error("Chat webhook failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Assistant is unavailable. Please try again later.", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"response": reply})
}
