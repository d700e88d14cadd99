package users

import (
	"context"

	"go.uber.org/zap"

	"staff-sync/core/n2f"
	"staff-sync/core/reconcile"
	"staff-sync/core/record"
	"staff-sync/core/source"
)

// Synchronizer reconciles ERP employees with platform users. It owns the
// manager dependency resolution: a user whose manager chain is not on the
// platform yet gets the chain created before their own payload is pushed.
type Synchronizer struct {
	client   *n2f.Client
	provider *source.Provider
	query    string
	sandbox  bool
	log      *zap.Logger

	companies  []record.Record
	sourceRecs []record.Record
	resolver   *reconcile.Resolver

	// Users created ahead of their reports to satisfy a manager chain.
	// The engine's own create pass skips these so each entity yields one
	// outcome per run.
	createdOutOfBand   map[string]struct{}
	dependencyOutcomes []n2f.Outcome
}

// New creates the users synchronizer. query is the scope's extraction
// query against the ERP.
func New(client *n2f.Client, provider *source.Provider, query string, sandbox bool, log *zap.Logger) *Synchronizer {
	return &Synchronizer{
		client:           client,
		provider:         provider,
		query:            query,
		sandbox:          sandbox,
		log:              log,
		createdOutOfBand: make(map[string]struct{}),
	}
}

func (s *Synchronizer) Scope() string          { return "users" }
func (s *Synchronizer) Kind() string           { return "user" }
func (s *Synchronizer) SourceKeyField() string { return "AdresseEmail" }
func (s *Synchronizer) TargetKeyField() string { return "mail" }

// Source loads and normalizes the ERP employees. The set is retained for
// manager chain resolution.
func (s *Synchronizer) Source(ctx context.Context) ([]record.Record, error) {
	records, err := s.provider.Fetch(ctx, s.Scope(), s.query)
	if err != nil {
		return nil, err
	}
	s.sourceRecs = NormalizeSource(records)
	return s.sourceRecs, nil
}

// Target loads and normalizes platform users, along with the company list
// payload building needs, and prepares the manager resolver.
func (s *Synchronizer) Target(ctx context.Context) ([]record.Record, error) {
	remote, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	target := NormalizeTarget(remote)

	s.companies, err = s.client.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("Companies loaded", zap.Int("count", len(s.companies)))

	present := make([]string, len(target))
	for i, rec := range target {
		present[i] = rec.Key("mail")
	}

	s.resolver = reconcile.NewResolver(s.sourceRecs, s.SourceKeyField(), present, s.log)
	s.resolver.DependencyKey = func(rec record.Record) string {
		return rec.Key("Manager")
	}
	s.resolver.Create = s.createDependency

	return target, nil
}

// BuildPayload shapes one employee into the upsert payload, resolving the
// company code and making sure the manager chain exists first. An employee
// already pushed while resolving someone else's chain returns a nil
// payload, which tells the engine to skip the entity.
func (s *Synchronizer) BuildPayload(ctx context.Context, rec record.Record) (record.Record, error) {
	if _, ok := s.createdOutOfBand[record.NormalizeKey(rec["AdresseEmail"])]; ok {
		return nil, nil
	}
	payload := BuildPayload(rec, s.lookupCompanyID(rec.Key("Entreprise")), s.sandbox)
	payload["managerMail"] = s.resolver.EnsureExists(ctx, rec.Key("Manager"))
	return payload, nil
}

// Create pushes one user payload. The platform treats the call as an
// upsert, so a user already created as someone's manager converges
// harmlessly.
func (s *Synchronizer) Create(ctx context.Context, payload record.Record) n2f.Outcome {
	outcome := s.client.CreateUser(ctx, payload)
	if outcome.Success && s.resolver != nil {
		s.resolver.MarkPresent(payload.Key("mail"))
	}
	return outcome
}

func (s *Synchronizer) Update(ctx context.Context, payload record.Record) n2f.Outcome {
	return s.client.UpdateUser(ctx, payload)
}

func (s *Synchronizer) Delete(ctx context.Context, remote record.Record) n2f.Outcome {
	return s.client.DeleteUser(ctx, remote.Key("mail"))
}

// DependencyOutcomes returns the outcomes of users created out of band to
// satisfy manager chains. They belong in the run report alongside the
// engine's own outcomes.
func (s *Synchronizer) DependencyOutcomes() []n2f.Outcome {
	return s.dependencyOutcomes
}

// createDependency pushes a manager ahead of their reports. managerMail is
// the manager's own manager reference, already resolved (or dropped) by the
// walk that got here; resolving it again would not share the walk's cycle
// guard.
func (s *Synchronizer) createDependency(ctx context.Context, rec record.Record, managerMail string) bool {
	payload := BuildPayload(rec, s.lookupCompanyID(rec.Key("Entreprise")), s.sandbox)
	payload["managerMail"] = managerMail

	outcome := s.client.CreateUser(ctx, payload)
	s.dependencyOutcomes = append(s.dependencyOutcomes, outcome)
	if outcome.Success {
		s.createdOutOfBand[record.NormalizeKey(rec["AdresseEmail"])] = struct{}{}
	}
	return outcome.Success
}

// lookupCompanyID maps an ERP company code to the platform identifier. In
// sandbox, where company codes rarely line up, the first company stands in
// for unknown codes.
func (s *Synchronizer) lookupCompanyID(code string) string {
	for _, company := range s.companies {
		if record.NormalizeKey(company["code"]) == record.NormalizeKey(code) {
			return company.Key("uuid")
		}
	}
	if s.sandbox && len(s.companies) > 0 {
		return s.companies[0].Key("uuid")
	}
	return ""
}
