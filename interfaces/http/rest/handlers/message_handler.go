package handlers

import (
	"net/http"

	"github.com/Sk16er/Scholar-chat/application/commands"
	"github.com/Sk16er/Scholar-chat/application/queries"
	querybus "github.com/Sk16er/Scholar-chat/application/queries/bus"
	"github.com/go-chi/chi/v5"
)

// MessageHandler handles conversation HTTP requests
type MessageHandler struct {
	base
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(d Deps) *MessageHandler {
	return &MessageHandler{base: newBase(d)}
}

// SendMessageRequest represents the request body for asking a question
type SendMessageRequest struct {
	Text           string `json:"text" validate:"required"`
	ConversationID string `json:"conversationId,omitempty"`
}

// SendMessageResponse carries both appended messages
type SendMessageResponse struct {
	ConversationID string               `json:"conversationId"`
	UserMessage    *queries.MessageView `json:"userMessage"`
	Reply          *queries.MessageView `json:"reply"`
}

// GetConversation handles GET /projects/{projectID}/messages
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	view, err := querybus.Ask[*queries.ConversationView](r.Context(), h.queryBus, queries.GetConversationQuery{
		ProjectID:      chi.URLParam(r, "projectID"),
		ConversationID: r.URL.Query().Get("conversationId"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, view)
}

// SendMessage handles POST /projects/{projectID}/messages. A failed answer
// still returns 200 with the assistant's fallback reply.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	cmd := commands.SendMessageCommand{
		ProjectID:          chi.URLParam(r, "projectID"),
		ConversationID:     req.ConversationID,
		UserMessageID:      commands.NewMessageID(),
		AssistantMessageID: commands.NewMessageID(),
		Text:               req.Text,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}

	conv, err := querybus.Ask[*queries.ConversationView](r.Context(), h.queryBus, queries.GetConversationQuery{
		ProjectID:      cmd.ProjectID,
		ConversationID: cmd.ConversationID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := SendMessageResponse{ConversationID: conv.ID}
	for i := range conv.Messages {
		switch conv.Messages[i].ID {
		case cmd.UserMessageID:
			resp.UserMessage = &conv.Messages[i]
		case cmd.AssistantMessageID:
			resp.Reply = &conv.Messages[i]
		}
	}
	h.respond(w, r, http.StatusOK, resp)
}
