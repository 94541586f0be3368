package event

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

// Service records domain events to the outbox table. Emission is
// best-effort: a failed event write is logged but never fails the operation
// that produced it.
type Service struct {
	repo   repository.OutboxRepository
	logger zerolog.Logger
}

func NewService(repo repository.OutboxRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).
			Msg("failed to marshal event payload")
		return
	}

	ev := &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	}
	if err := s.repo.Create(ctx, ev); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).
			Msg("failed to record outbox event")
	}
}
