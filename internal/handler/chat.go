package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bits/internal/service"
)

// ChatHandler handles chatbot messages and session state.
type ChatHandler struct {
	chatService    *service.ChatService
	sessionService *service.SessionService
	now            func() time.Time
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *service.ChatService, sessionService *service.SessionService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		sessionService: sessionService,
		now:            time.Now,
	}
}

// WithClock sets the clock the handler reads the current time from.
func (h *ChatHandler) WithClock(now func() time.Time) *ChatHandler {
	h.now = now
	return h
}

// ChatRequest is the HTTP request body for a chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the HTTP response for a chat message.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Rule      string `json:"rule"`
	Reply     string `json:"reply"`
}

// PostMessage handles POST /v1/chat
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	reply, err := h.chatService.Reply(c.Request.Context(), c.GetHeader(sessionHeader), req.Message, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header(sessionHeader, reply.SessionID)
	respondJSON(c, http.StatusOK, ChatResponse{
		SessionID: reply.SessionID,
		Rule:      reply.Rule,
		Reply:     reply.Text,
	})
}

// GetSession handles GET /v1/session
func (h *ChatHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()

	state, err := h.sessionService.Get(ctx, c.GetHeader(sessionHeader))
	if err != nil {
		respondError(c, err)
		return
	}
	if tab := c.Query("tab"); tab != "" {
		if state, err = h.sessionService.SetTab(ctx, state.ID, tab); err != nil {
			respondError(c, err)
			return
		}
	}

	c.Header(sessionHeader, state.ID)
	respondJSON(c, http.StatusOK, state)
}
