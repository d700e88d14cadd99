package axes

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"staff-sync/core/config"
	"staff-sync/core/n2f"
	"staff-sync/core/reconcile"
	"staff-sync/core/record"
	"staff-sync/core/source"
)

// Synchronizer reconciles the values of one analytic axis for one
// company. Axis scopes share the ERP extraction query and keep only rows
// matching their type filter.
type Synchronizer struct {
	client   *n2f.Client
	provider *source.Provider
	scope    config.Scope
	query    string
	company  record.Record
	axeID    string
	log      *zap.Logger
}

// NewSynchronizer creates a per-company axis synchronizer. axeID must be
// resolved by ResolveAxisID beforehand.
func NewSynchronizer(client *n2f.Client, provider *source.Provider, scope config.Scope, query, axeID string, company record.Record, log *zap.Logger) *Synchronizer {
	return &Synchronizer{
		client:   client,
		provider: provider,
		scope:    scope,
		query:    query,
		company:  company,
		axeID:    axeID,
		log:      log,
	}
}

func (s *Synchronizer) Scope() string          { return s.scope.Name }
func (s *Synchronizer) Kind() string           { return "axe" }
func (s *Synchronizer) SourceKeyField() string { return "Code" }
func (s *Synchronizer) TargetKeyField() string { return "code" }

// Source loads the ERP axis rows and keeps those of this scope's type.
func (s *Synchronizer) Source(ctx context.Context) ([]record.Record, error) {
	records, err := s.provider.Fetch(ctx, s.scope.Name, s.query)
	if err != nil {
		return nil, err
	}

	var filtered []record.Record
	for _, rec := range records {
		if strings.ToUpper(strings.TrimSpace(rec.Key("typ"))) == s.scope.TypeFilter {
			filtered = append(filtered, rec)
		}
	}
	s.log.Debug("Axis rows filtered",
		zap.String("scope", s.scope.Name),
		zap.Int("total", len(records)),
		zap.Int("kept", len(filtered)))
	return filtered, nil
}

// Target loads the axis values of this company.
func (s *Synchronizer) Target(ctx context.Context) ([]record.Record, error) {
	return s.client.ListAxeValues(ctx, s.company.Key("uuid"), s.axeID)
}

// BuildPayload shapes one ERP axis row into the API value payload, with
// its French and Dutch display names.
func (s *Synchronizer) BuildPayload(ctx context.Context, rec record.Record) (record.Record, error) {
	return record.Record{
		"code": rec["Code"],
		"names": []any{
			map[string]any{"culture": "fr", "value": rec["Nom_Fr"]},
			map[string]any{"culture": "nl", "value": rec["Nom_Nl"]},
		},
	}, nil
}

func (s *Synchronizer) Create(ctx context.Context, payload record.Record) n2f.Outcome {
	return s.client.UpsertAxeValue(ctx, s.company.Key("uuid"), s.axeID, payload, n2f.ActionCreate, s.scope.Name)
}

func (s *Synchronizer) Update(ctx context.Context, payload record.Record) n2f.Outcome {
	return s.client.UpsertAxeValue(ctx, s.company.Key("uuid"), s.axeID, payload, n2f.ActionUpdate, s.scope.Name)
}

func (s *Synchronizer) Delete(ctx context.Context, remote record.Record) n2f.Outcome {
	return s.client.DeleteAxeValue(ctx, s.company.Key("uuid"), s.axeID, remote.Key("code"), s.scope.Name)
}

// Run reconciles one axis scope across every company on the platform. The
// axis identifier is resolved once against the first company; failing to
// resolve it aborts the scope before any mutating call.
func Run(ctx context.Context, engine *reconcile.Engine, client *n2f.Client, provider *source.Provider, scope config.Scope, query string, flags reconcile.Flags, log *zap.Logger) ([]n2f.Outcome, error) {
	companies, err := client.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		log.Warn("No companies on the platform, nothing to reconcile", zap.String("scope", scope.Name))
		return nil, nil
	}

	axeID, err := ResolveAxisID(ctx, client, scope, companies[0].Key("uuid"))
	if err != nil {
		return nil, err
	}

	var outcomes []n2f.Outcome
	for _, company := range companies {
		sync := NewSynchronizer(client, provider, scope, query, axeID, company, log)
		companyOutcomes, err := engine.Run(ctx, sync, flags)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, companyOutcomes...)
	}
	return outcomes, nil
}
