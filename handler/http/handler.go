package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/src/core/knowledgebase"
)

var ErrInvalidRequest = errors.New("invalid request")

type Handler struct {
	chatService knowledgebase.ChatService
	sysService  knowledgebase.SystemService
}

func NewHandler(chatService knowledgebase.ChatService, sysService knowledgebase.SystemService) *Handler {
	return &Handler{
		chatService: chatService,
		sysService:  sysService,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Chat routes
	r.GET("/chat", h.Hello)
	r.POST("/chat", h.Chat)
	r.POST("/chat/sessions", h.CreateSession)
	r.GET("/chat/history", h.GetChatHistory)
	r.DELETE("/chat/history", h.ClearChatHistory)

	// System routes
	r.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// sendError maps known errors to a status and code. status is used for
// errors it does not recognise.
func sendError(c *gin.Context, status int, err error) {
	var code string
	switch {
	case errors.Is(err, knowledgebase.ErrNotReady):
		code = "NOT_READY"
		status = http.StatusServiceUnavailable
	case errors.Is(err, knowledgebase.ErrInitFailed):
		code = "INIT_FAILED"
		status = http.StatusServiceUnavailable
	case errors.Is(err, knowledgebase.ErrSessionNotFound):
		code = "NOT_FOUND"
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest):
		code = "INVALID_REQUEST"
		status = http.StatusBadRequest
	case status >= 400 && status < 500:
		code = "INVALID_REQUEST"
	default:
		code = "INTERNAL_ERROR"
		status = http.StatusInternalServerError
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
