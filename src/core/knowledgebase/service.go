package knowledgebase

import (
	"context"
	"errors"
)

var (
	ErrNotReady        = errors.New("knowledge base is still initializing")
	ErrInitFailed      = errors.New("knowledge base initialization failed")
	ErrAlreadyStarted  = errors.New("initialization already started")
	ErrSessionNotFound = errors.New("session not found")
)

// ChatService defines the interface for chat operations
type ChatService interface {
	Chat(ctx context.Context, sessionID, input string) (*ChatResponse, error)
	History(ctx context.Context, sessionID string) ([]string, error)
	ClearHistory(ctx context.Context, sessionID string) error
	NewSession(ctx context.Context) (string, error)
}

// SystemService defines the interface for system operations
type SystemService interface {
	CheckHealth(ctx context.Context) (*HealthStatus, error)
}

// Generator produces an answer for a question given the prior history window
type Generator interface {
	Generate(ctx context.Context, question, history string) (string, error)
	Stats() IndexStats
}

// Initializer builds the generator once the service has started
type Initializer func(ctx context.Context) (Generator, error)

// IndexStats describes the index a generator answers from
type IndexStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// ChatResponse is the result of one chat turn
type ChatResponse struct {
	SessionID string   `json:"sessionId"`
	Answer    string   `json:"answer"`
	History   []string `json:"history"`
}

// ComponentStatus represents the status of system components
type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"
)

// HealthStatus represents system health status
type HealthStatus struct {
	Status     string `json:"status"`
	State      State  `json:"state"`
	Components struct {
		Index     ComponentStatus `json:"index"`
		Generator ComponentStatus `json:"generator"`
	} `json:"components"`
	Index    IndexStats `json:"index"`
	Sessions int        `json:"sessions"`
	Error    string     `json:"error,omitempty"`
}
