// Package processor consumes candidate messages and drives them
// through the deal pipeline.
package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/repositories/deals"
	"github.com/Ramsey-B/clover/pkg/engine"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Processor handles incoming candidate messages. Persistence failures
// return an error so the message is retried; rejections commit
// normally.
type Processor struct {
	engine  *engine.Engine
	repo    *deals.Repository
	emitter *events.Emitter
	logger  ectologger.Logger
}

// NewProcessor creates a message processor
func NewProcessor(eng *engine.Engine, repo *deals.Repository, emitter *events.Emitter, logger ectologger.Logger) *Processor {
	return &Processor{
		engine:  eng,
		repo:    repo,
		emitter: emitter,
		logger:  logger,
	}
}

// HandleMessage processes one candidate message end to end
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	if msg.Candidate == nil {
		return fmt.Errorf("message carries no candidate")
	}

	candidate := msg.Candidate.Candidate
	result, err := p.engine.Evaluate(ctx, candidate, msg.Candidate.Verification)
	if err != nil {
		return fmt.Errorf("evaluate candidate %s: %w", candidate.ID, err)
	}

	metrics.RecordEvaluation(candidate.Store, string(candidate.Source), result.Accepted, result.Confidence.Score)

	if !result.Accepted {
		// observability only, a lost rejection event is not worth a
		// redelivery
		if p.emitter != nil {
			if emitErr := p.emitter.EmitDealRejected(ctx, candidate, result.Confidence); emitErr != nil {
				p.logger.WithContext(ctx).WithError(emitErr).Warn("failed to emit deal.rejected event")
			}
		}
		return nil
	}

	metrics.RecordQuality(result.Deal.Store, result.Deal.DealGrade, result.Deal.DealScore)

	saved, err := p.repo.Save(ctx, *result.Deal)
	if err != nil {
		return fmt.Errorf("save deal %s: %w", result.Deal.ID, err)
	}
	result.Deal = saved.Deal

	if p.emitter != nil && saved.IsChanged {
		if emitErr := p.emitter.EmitDealAccepted(ctx, result); emitErr != nil {
			p.logger.WithContext(ctx).WithError(emitErr).Warn("failed to emit deal.accepted event")
		}
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"deal_id":     result.Deal.ID,
		"product_key": result.Deal.ProductKey,
		"score":       result.Deal.DealScore,
		"grade":       result.Deal.DealGrade,
		"is_new":      saved.IsNew,
	}).Info("Processed deal candidate")

	return nil
}
