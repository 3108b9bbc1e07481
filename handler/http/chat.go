package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/src/core/history"
)

// SessionHeader may carry the session ID instead of the request body
const SessionHeader = "X-Session-ID"

type chatRequest struct {
	Input     string `json:"input"`
	SessionID string `json:"sessionId"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

type historyResponse struct {
	SessionID string   `json:"sessionId"`
	History   []string `json:"history"`
}

// Hello godoc
// @Summary Liveness probe
// @Tags chat
// @Produce plain
// @Success 200 {string} string "Hello World!"
// @Router /chat [get]
func (h *Handler) Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

// Chat godoc
// @Summary Answer a question using the document index and session history
// @Tags chat
// @Accept json
// @Produce json
// @Param body body chatRequest true "Question"
// @Success 200 {object} knowledgebase.ChatResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}
	if req.SessionID == "" {
		req.SessionID = c.GetHeader(SessionHeader)
	}

	resp, err := h.chatService.Chat(c.Request.Context(), req.SessionID, req.Input)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, resp)
}

// CreateSession godoc
// @Summary Start a new conversation
// @Tags chat
// @Produce json
// @Success 201 {object} sessionResponse
// @Router /chat/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	id, err := h.chatService.NewSession(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusCreated, sessionResponse{SessionID: id})
}

// GetChatHistory godoc
// @Summary Get chat history
// @Tags chat
// @Param sessionId query string false "Chat session ID"
// @Produce json
// @Success 200 {object} historyResponse
// @Failure 404 {object} ErrorResponse
// @Router /chat/history [get]
func (h *Handler) GetChatHistory(c *gin.Context) {
	sessionID := history.NormalizeID(sessionFromQuery(c))

	history, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, historyResponse{SessionID: sessionID, History: history})
}

// ClearChatHistory godoc
// @Summary Delete a session and its history
// @Tags chat
// @Param sessionId query string false "Chat session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /chat/history [delete]
func (h *Handler) ClearChatHistory(c *gin.Context) {
	if err := h.chatService.ClearHistory(c.Request.Context(), sessionFromQuery(c)); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sessionFromQuery(c *gin.Context) string {
	if id := c.Query("sessionId"); id != "" {
		return id
	}
	return c.GetHeader(SessionHeader)
}
