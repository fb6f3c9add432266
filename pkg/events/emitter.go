// Package events handles event emission for deal lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for the deal pipeline
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitDealAccepted emits a deal accepted event with its scores
func (e *Emitter) EmitDealAccepted(ctx context.Context, result models.EvaluateResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDealAccepted")
	defer span.End()

	data := map[string]any{
		"schema_version": SchemaVersion,
		"deal":           result.Deal,
		"confidence":     result.Confidence,
		"quality":        result.Quality,
		"insights":       result.Insights,
	}
	dataJSON, _ := json.Marshal(data)

	event := &kafka.DealEvent{
		EventType:  "deal.accepted",
		DealID:     result.Deal.ID,
		ProductKey: result.Deal.ProductKey,
		Store:      result.Deal.Store,
		Data:       dataJSON,
	}

	if err := e.producer.PublishDealEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit deal.accepted event")
		return err
	}

	return nil
}

// EmitDealRejected emits a rejection with its confidence breakdown.
// Rejections are observability events, not errors, and are not
// persisted anywhere else.
func (e *Emitter) EmitDealRejected(ctx context.Context, candidate models.RawCandidate, conf models.ConfidenceScore) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDealRejected")
	defer span.End()

	data := map[string]any{
		"schema_version": SchemaVersion,
		"candidate_id":   candidate.ID,
		"title":          candidate.Title,
		"confidence":     conf,
	}
	dataJSON, _ := json.Marshal(data)

	event := &kafka.DealEvent{
		EventType:  "deal.rejected",
		DealID:     candidate.ID,
		ProductKey: "",
		Store:      candidate.Store,
		Data:       dataJSON,
	}

	if err := e.producer.PublishDealEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit deal.rejected event")
		return err
	}

	return nil
}

// EmitBatchResolved emits one event per canonical record after a
// duplicate resolution pass
func (e *Emitter) EmitBatchResolved(ctx context.Context, canonical []models.CanonicalDeal) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBatchResolved")
	defer span.End()

	events := make([]*kafka.DealEvent, 0, len(canonical))
	for i := range canonical {
		deal := &canonical[i]
		data := map[string]any{
			"schema_version":   SchemaVersion,
			"deal":             deal.DealRecord,
			"source_count":     deal.SourceCount,
			"absorbed_sources": deal.AbsorbedSources,
		}
		dataJSON, _ := json.Marshal(data)

		events = append(events, &kafka.DealEvent{
			EventType:  "deal.resolved",
			DealID:     deal.ID,
			ProductKey: deal.ProductKey,
			Store:      deal.Store,
			Data:       dataJSON,
		})
	}

	if err := e.producer.PublishDealEvents(ctx, events); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit deal.resolved events")
		return err
	}

	return nil
}
