package knowledgebase

import (
	"context"
	"errors"
)

type systemService struct {
	kb *KnowledgeBase
}

func NewSystemService(kb *KnowledgeBase) SystemService {
	return &systemService{
		kb: kb,
	}
}

func (s *systemService) CheckHealth(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Status:   "unhealthy",
		Sessions: s.kb.history.Len(),
	}
	status.Components.Index = StatusDown
	status.Components.Generator = StatusDown

	gen, err := s.kb.Ready()
	if err != nil {
		status.State = s.kb.State()
		if errors.Is(err, ErrInitFailed) {
			status.State = StateFailed
			status.Error = err.Error()
		}
		return status, nil
	}

	status.Status = "healthy"
	status.State = StateReady
	status.Components.Index = StatusUp
	status.Components.Generator = StatusUp
	status.Index = gen.Stats()
	return status, nil
}
