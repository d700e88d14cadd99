package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"staff-sync/core/record"
)

func TestHasChanged(t *testing.T) {
	tests := []struct {
		name    string
		payload record.Record
		remote  record.Record
		kind    string
		want    bool
	}{
		{
			name:    "identical values",
			payload: record.Record{"firstname": "Alice", "active": true},
			remote:  record.Record{"firstname": "Alice", "active": true},
			want:    false,
		},
		{
			name:    "empty remote always changes",
			payload: record.Record{"firstname": "Alice"},
			remote:  record.Record{},
			want:    true,
		},
		{
			name:    "case and whitespace are not changes",
			payload: record.Record{"firstname": "  Alice "},
			remote:  record.Record{"firstname": "alice"},
			want:    false,
		},
		{
			name:    "boolean tokens are equivalent",
			payload: record.Record{"active": true},
			remote:  record.Record{"active": "1"},
			want:    false,
		},
		{
			name:    "numeric string equals number",
			payload: record.Record{"level": 3},
			remote:  record.Record{"level": "3"},
			want:    false,
		},
		{
			name:    "real value change",
			payload: record.Record{"firstname": "Alice"},
			remote:  record.Record{"firstname": "Bob"},
			want:    true,
		},
		{
			name:    "technical fields ignored",
			payload: record.Record{"firstname": "Alice", "uuid": "n-1", "updated_at": "2026-01-01"},
			remote:  record.Record{"firstname": "Alice", "uuid": "n-2", "updated_at": "2026-02-02"},
			want:    false,
		},
		{
			name:    "remote extra fields ignored",
			payload: record.Record{"firstname": "Alice"},
			remote:  record.Record{"firstname": "Alice", "internal_rank": 12},
			want:    false,
		},
		{
			name:    "nil payload value with absent remote field",
			payload: record.Record{"firstname": "Alice", "managerMail": nil},
			remote:  record.Record{"firstname": "Alice"},
			want:    false,
		},
		{
			name:    "payload field missing remotely",
			payload: record.Record{"firstname": "Alice", "lastname": "Smith"},
			remote:  record.Record{"firstname": "Alice"},
			want:    true,
		},
		{
			name:    "axe technical fields ignored for axe kind",
			payload: record.Record{"name": "Plant A", "code": "PA", "axe_id": "x1"},
			remote:  record.Record{"name": "Plant A", "code": "PB", "axe_id": "x2"},
			kind:    "axe",
			want:    false,
		},
		{
			name:    "axe technical fields still compared for users",
			payload: record.Record{"name": "Plant A", "code": "PA"},
			remote:  record.Record{"name": "Plant A", "code": "PB"},
			kind:    "user",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasChanged(tt.payload, tt.remote, tt.kind))
		})
	}
}
