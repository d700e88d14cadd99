package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staff-sync/core/n2f"
	"staff-sync/core/record"
)

// mockSync is a scripted Synchronizer recording every executed action.
type mockSync struct {
	source []record.Record
	target []record.Record

	sourceErr   error
	payloadErr  map[string]error
	payloadSkip map[string]bool

	created []string
	updated []string
	deleted []string

	failCreate map[string]bool
}

func (m *mockSync) Scope() string          { return "users" }
func (m *mockSync) Kind() string           { return "user" }
func (m *mockSync) SourceKeyField() string { return "mail" }
func (m *mockSync) TargetKeyField() string { return "mail" }

func (m *mockSync) Source(ctx context.Context) ([]record.Record, error) {
	return m.source, m.sourceErr
}

func (m *mockSync) Target(ctx context.Context) ([]record.Record, error) {
	return m.target, nil
}

func (m *mockSync) BuildPayload(ctx context.Context, rec record.Record) (record.Record, error) {
	if err := m.payloadErr[rec.Key("mail")]; err != nil {
		return nil, err
	}
	if m.payloadSkip[rec.Key("mail")] {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (m *mockSync) Create(ctx context.Context, payload record.Record) n2f.Outcome {
	mail := payload.Key("mail")
	m.created = append(m.created, mail)
	if m.failCreate[mail] {
		return n2f.FailureOutcome("create failed", 400, 1, "bad request", n2f.ActionCreate, "user", mail, "users")
	}
	return n2f.SuccessOutcome("created", 200, 1, n2f.ActionCreate, "user", mail, "users")
}

func (m *mockSync) Update(ctx context.Context, payload record.Record) n2f.Outcome {
	mail := payload.Key("mail")
	m.updated = append(m.updated, mail)
	return n2f.SuccessOutcome("updated", 200, 1, n2f.ActionUpdate, "user", mail, "users")
}

func (m *mockSync) Delete(ctx context.Context, remote record.Record) n2f.Outcome {
	mail := remote.Key("mail")
	m.deleted = append(m.deleted, mail)
	return n2f.SuccessOutcome("deleted", 200, 1, n2f.ActionDelete, "user", mail, "users")
}

func TestEngineRunPartitionsAndSkipsUnchanged(t *testing.T) {
	m := &mockSync{
		source: []record.Record{
			{"mail": "new@corp.example", "firstname": "New"},
			{"mail": "same@corp.example", "firstname": "Same"},
			{"mail": "drift@corp.example", "firstname": "After"},
		},
		target: []record.Record{
			{"mail": "same@corp.example", "firstname": "Same"},
			{"mail": "drift@corp.example", "firstname": "Before"},
			{"mail": "gone@corp.example", "firstname": "Gone"},
		},
	}

	outcomes, err := NewEngine(zap.NewNop()).Run(context.Background(), m, Flags{Create: true, Update: true, Delete: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"new@corp.example"}, m.created)
	// The identical record produces no call and no outcome.
	assert.Equal(t, []string{"drift@corp.example"}, m.updated)
	assert.Equal(t, []string{"gone@corp.example"}, m.deleted)
	assert.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.True(t, o.Success)
	}
}

func TestEngineRunDeleteFlagOff(t *testing.T) {
	m := &mockSync{
		source: []record.Record{{"mail": "a@corp.example"}},
		target: []record.Record{{"mail": "stale@corp.example"}},
	}

	outcomes, err := NewEngine(zap.NewNop()).Run(context.Background(), m, Flags{Create: true, Update: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@corp.example"}, m.created)
	assert.Empty(t, m.deleted)
	assert.Len(t, outcomes, 1)
}

func TestEngineRunIsolatesEntityFailures(t *testing.T) {
	m := &mockSync{
		source: []record.Record{
			{"mail": "bad@corp.example"},
			{"mail": "worse@corp.example"},
			{"mail": "good@corp.example"},
		},
		payloadErr: map[string]error{"bad@corp.example": errors.New("no company mapping")},
		failCreate: map[string]bool{"worse@corp.example": true},
	}

	outcomes, err := NewEngine(zap.NewNop()).Run(context.Background(), m, Flags{Create: true})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.False(t, outcomes[0].Success)
	assert.Contains(t, outcomes[0].ErrorDetails, "no company mapping")
	assert.False(t, outcomes[1].Success)
	assert.True(t, outcomes[2].Success)
	// The failing entities never block the good one.
	assert.Contains(t, m.created, "good@corp.example")
}

func TestEngineRunNilPayloadSkipsCreate(t *testing.T) {
	m := &mockSync{
		source: []record.Record{
			{"mail": "settled@corp.example"},
			{"mail": "fresh@corp.example"},
		},
		payloadSkip: map[string]bool{"settled@corp.example": true},
	}

	outcomes, err := NewEngine(zap.NewNop()).Run(context.Background(), m, Flags{Create: true})
	require.NoError(t, err)

	// A nil payload means the entity was already handled; no call, no
	// outcome.
	assert.Equal(t, []string{"fresh@corp.example"}, m.created)
	assert.Len(t, outcomes, 1)
}

func TestEngineRunSourceErrorAborts(t *testing.T) {
	m := &mockSync{sourceErr: errors.New("database unreachable")}

	_, err := NewEngine(zap.NewNop()).Run(context.Background(), m, Flags{Create: true})
	assert.ErrorContains(t, err, "database unreachable")
}

func TestEngineRunNoFlagsExecutesNothing(t *testing.T) {
	m := &mockSync{
		source: []record.Record{{"mail": "a@corp.example"}},
		target: []record.Record{{"mail": "b@corp.example"}},
	}

	outcomes, err := NewEngine(zap.NewNop()).Run(context.Background(), m, Flags{})
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, m.created)
	assert.Empty(t, m.updated)
	assert.Empty(t, m.deleted)
}
