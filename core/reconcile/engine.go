package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"staff-sync/core/n2f"
	"staff-sync/core/record"
)

// Synchronizer is one reconcilable scope: it knows how to load both sides,
// shape a source record into an API payload, and execute each action class.
type Synchronizer interface {
	// Scope names the synchronization scope, e.g. "users" or "projects".
	Scope() string
	// Kind is the entity kind used for change detection ("user", "axe").
	Kind() string
	// SourceKeyField is the natural key field of source records.
	SourceKeyField() string
	// TargetKeyField is the natural key field of target records.
	TargetKeyField() string

	// Source loads the full source record set.
	Source(ctx context.Context) ([]record.Record, error)
	// Target loads the full target record set.
	Target(ctx context.Context) ([]record.Record, error)

	// BuildPayload shapes one source record into an API payload. A nil
	// payload with a nil error means the entity needs no call and is
	// skipped.
	BuildPayload(ctx context.Context, rec record.Record) (record.Record, error)

	Create(ctx context.Context, payload record.Record) n2f.Outcome
	Update(ctx context.Context, payload record.Record) n2f.Outcome
	Delete(ctx context.Context, remote record.Record) n2f.Outcome
}

// Engine drives one scope through diff, change detection and execution.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// Run reconciles one scope end to end and returns the outcome of every
// executed mutating call. A failure on one entity is recorded as a failure
// outcome and never stops the remaining entities; only loading or diffing
// the initial datasets can fail the run.
func (e *Engine) Run(ctx context.Context, s Synchronizer, flags Flags) ([]n2f.Outcome, error) {
	log := e.log.With(zap.String("scope", s.Scope()))

	source, err := s.Source(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load source records: %w", err)
	}
	target, err := s.Target(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load target records: %w", err)
	}

	diff, err := Diff(source, target, s.SourceKeyField(), s.TargetKeyField())
	if err != nil {
		return nil, fmt.Errorf("failed to diff records: %w", err)
	}

	creates, updates, deletes := diff.Counts()
	log.Info("Scope diff computed",
		zap.Int("source", len(source)),
		zap.Int("target", len(target)),
		zap.Int("to_create", creates),
		zap.Int("to_update", updates),
		zap.Int("to_delete", deletes))

	var outcomes []n2f.Outcome

	if flags.Create {
		settled := 0
		for _, rec := range diff.ToCreate {
			payload, err := s.BuildPayload(ctx, rec)
			if err != nil {
				outcomes = append(outcomes, payloadFailure(rec, s, n2f.ActionCreate, err))
				continue
			}
			if payload == nil {
				settled++
				continue
			}
			outcomes = append(outcomes, s.Create(ctx, payload))
		}
		if settled > 0 {
			log.Info("Records already settled during the run skipped", zap.Int("count", settled))
		}
	} else if creates > 0 {
		log.Info("Create disabled, skipping", zap.Int("count", creates))
	}

	if flags.Update {
		skipped := 0
		for _, pair := range diff.ToUpdate {
			payload, err := s.BuildPayload(ctx, pair.Source)
			if err != nil {
				outcomes = append(outcomes, payloadFailure(pair.Source, s, n2f.ActionUpdate, err))
				continue
			}
			if !HasChanged(payload, pair.Target, s.Kind()) {
				skipped++
				continue
			}
			outcomes = append(outcomes, s.Update(ctx, payload))
		}
		if skipped > 0 {
			log.Info("Unchanged records skipped", zap.Int("count", skipped))
		}
	} else if updates > 0 {
		log.Info("Update disabled, skipping", zap.Int("count", updates))
	}

	if flags.Delete {
		for _, rec := range diff.ToDelete {
			outcomes = append(outcomes, s.Delete(ctx, rec))
		}
	} else if deletes > 0 {
		log.Info("Delete disabled, skipping", zap.Int("count", deletes))
	}

	return outcomes, nil
}

// payloadFailure records an entity whose payload could not be built.
func payloadFailure(rec record.Record, s Synchronizer, action n2f.ActionType, err error) n2f.Outcome {
	return n2f.FailureOutcome(
		"Payload build failed: "+err.Error(), 0, 0, err.Error(),
		action, s.Kind(), rec.Key(s.SourceKeyField()), s.Scope())
}
