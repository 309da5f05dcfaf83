package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/helpdock/helpdock/internal/api/response"
	"github.com/helpdock/helpdock/internal/service"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// ChatHandler runs assistant turns
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessageRequest is the body of a chat turn.
type SendMessageRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Message  string `json:"message" validate:"required,max=8000"`
}

// Send runs one assistant turn. The thread comes from the URL when present;
// otherwise from the body, and an empty thread identifier starts a new
// conversation.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			errors := make(map[string]string)
			for _, e := range validationErrors {
				switch e.Tag() {
				case "required":
					errors[e.Field()] = "field is required"
				case "max":
					errors[e.Field()] = "must be at most " + e.Param() + " characters"
				default:
					errors[e.Field()] = "validation failed on " + e.Tag()
				}
			}
			response.BadRequest(w, errors)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	threadID := chi.URLParam(r, "threadID")
	if threadID == "" {
		threadID = req.ThreadID
	}

	result, err := h.chatService.SendMessage(r.Context(), threadID, req.Message)
	if err != nil {
		log.Error().Err(err).Str("thread_id", threadID).Msg("assistant turn failed")
		storeError(w, err)
		return
	}

	response.OK(w, result)
}
