package axes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staff-sync/core/config"
	"staff-sync/core/n2f"
	"staff-sync/core/reconcile"
	"staff-sync/core/source"
)

func plateScope() config.Scope {
	for _, s := range config.DefaultScopes() {
		if s.Name == "plates" {
			return s
		}
	}
	panic("plates scope missing")
}

func projectScope() config.Scope {
	for _, s := range config.DefaultScopes() {
		if s.Name == "projects" {
			return s
		}
	}
	panic("projects scope missing")
}

// fakePlatform serves two companies sharing one custom axis and records
// axis value upserts and deletes.
type fakePlatform struct {
	values   map[string][]map[string]any // companyID -> axis values
	upserted []string
	deleted  []string
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		validity := time.Now().Add(time.Hour).Format(time.RFC3339Nano)
		fmt.Fprintf(w, `{"response":{"token":"t","validity":%q}}`, validity)
	})
	mux.HandleFunc("GET /companies", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "0" {
			fmt.Fprint(w, `{"response":{"data":[]}}`)
			return
		}
		fmt.Fprint(w, `{"response":{"data":[{"uuid":"co-1","code":"BE01"},{"uuid":"co-2","code":"NL01"}]}}`)
	})
	mux.HandleFunc("GET /companies/{company}/axes", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":[
			{"uuid":"axe-plaque","names":[{"culture":"fr","value":"Plaque"},{"culture":"nl","value":"Plaat"}]},
			{"uuid":"axe-other","names":[{"culture":"fr","value":"Chantier"}]}
		]}`)
	})
	mux.HandleFunc("GET /companies/{company}/axes/{axe}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "0" {
			fmt.Fprint(w, `{"response":{"data":[]}}`)
			return
		}
		values := f.values[r.PathValue("company")]
		json.NewEncoder(w).Encode(map[string]any{"response": map[string]any{"data": values}})
	})
	mux.HandleFunc("POST /companies/{company}/axes/{axe}", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		f.upserted = append(f.upserted, fmt.Sprintf("%s/%v", r.PathValue("company"), payload["code"]))
		fmt.Fprint(w, `{"response":"ok"}`)
	})
	mux.HandleFunc("DELETE /companies/{company}/axes/{axe}/{code}", func(w http.ResponseWriter, r *http.Request) {
		f.deleted = append(f.deleted, fmt.Sprintf("%s/%s", r.PathValue("company"), r.PathValue("code")))
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func newTestClient(t *testing.T, platform *fakePlatform) *n2f.Client {
	t.Helper()
	server := httptest.NewServer(platform.handler())
	t.Cleanup(server.Close)
	return n2f.NewClient(n2f.Config{
		BaseURL:        server.URL,
		ClientID:       "id",
		ClientSecret:   "secret",
		TimeoutSeconds: 5,
	}, nil, zap.NewNop())
}

func newTestProvider(t *testing.T, queries int) *source.Provider {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	for i := 0; i < queries; i++ {
		mock.ExpectQuery("SELECT").WillReturnRows(
			sqlmock.NewRows([]string{"Code", "Nom_Fr", "Nom_Nl", "typ"}).
				AddRow("PL-1", "Plaque Nord", "Plaat Noord", "PLAQUE").
				AddRow("PL-2", "Plaque Sud", "Plaat Zuid", "plaque").
				AddRow("PR-1", "Projet Alpha", "Project Alpha", "PROJECT"))
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return source.NewProvider(db, nil, zap.NewNop())
}

func TestResolveAxisID(t *testing.T) {
	platform := &fakePlatform{}
	client := newTestClient(t, platform)

	t.Run("static scope", func(t *testing.T) {
		id, err := ResolveAxisID(context.Background(), client, projectScope(), "co-1")
		require.NoError(t, err)
		assert.Equal(t, "projects", id)
	})

	t.Run("dynamic scope by french name", func(t *testing.T) {
		id, err := ResolveAxisID(context.Background(), client, plateScope(), "co-1")
		require.NoError(t, err)
		assert.Equal(t, "axe-plaque", id)
	})

	t.Run("unknown axis name", func(t *testing.T) {
		scope := plateScope()
		scope.AxeName = "does-not-exist"
		_, err := ResolveAxisID(context.Background(), client, scope, "co-1")
		assert.Error(t, err)
	})

	t.Run("missing company", func(t *testing.T) {
		_, err := ResolveAxisID(context.Background(), client, plateScope(), "")
		assert.Error(t, err)
	})
}

func TestSynchronizerSourceFiltersType(t *testing.T) {
	platform := &fakePlatform{}
	client := newTestClient(t, platform)
	provider := newTestProvider(t, 1)

	sync := NewSynchronizer(client, provider, plateScope(), "SELECT * FROM iris_N2F_CustomAxes", "axe-plaque", map[string]any{"uuid": "co-1"}, zap.NewNop())

	records, err := sync.Source(context.Background())
	require.NoError(t, err)
	// The type filter is case insensitive and drops foreign rows.
	require.Len(t, records, 2)
	assert.Equal(t, "PL-1", records[0].Key("Code"))
	assert.Equal(t, "PL-2", records[1].Key("Code"))
}

func TestRunReconcilesEveryCompany(t *testing.T) {
	platform := &fakePlatform{
		values: map[string][]map[string]any{
			"co-1": {{"code": "PL-1", "names": []map[string]any{
				{"culture": "fr", "value": "Plaque Nord"},
				{"culture": "nl", "value": "Plaat Noord"},
			}}},
			"co-2": {{"code": "PL-9", "names": []map[string]any{
				{"culture": "fr", "value": "Obsolete"},
			}}},
		},
	}
	client := newTestClient(t, platform)
	provider := newTestProvider(t, 2)

	engine := reconcile.NewEngine(zap.NewNop())
	outcomes, err := Run(context.Background(), engine, client, provider, plateScope(), "SELECT * FROM iris_N2F_CustomAxes", reconcile.Flags{Create: true, Update: true, Delete: true}, zap.NewNop())
	require.NoError(t, err)

	// co-1 already has PL-1, so it only gains PL-2; co-2 gains both and
	// loses its stale value.
	assert.Contains(t, platform.upserted, "co-1/PL-2")
	assert.Contains(t, platform.upserted, "co-2/PL-1")
	assert.Contains(t, platform.upserted, "co-2/PL-2")
	assert.NotContains(t, platform.upserted, "co-1/PL-1")
	assert.Equal(t, []string{"co-2/PL-9"}, platform.deleted)

	for _, o := range outcomes {
		assert.True(t, o.Success)
		assert.Equal(t, "plates", o.Scope)
	}
	assert.Len(t, outcomes, 4)
}

func TestBuildPayloadNames(t *testing.T) {
	sync := NewSynchronizer(nil, nil, plateScope(), "", "axe-plaque", map[string]any{"uuid": "co-1"}, zap.NewNop())

	payload, err := sync.BuildPayload(context.Background(), map[string]any{
		"Code": "PL-1", "Nom_Fr": "Plaque Nord", "Nom_Nl": "Plaat Noord",
	})
	require.NoError(t, err)

	assert.Equal(t, "PL-1", payload["code"])
	names := payload["names"].([]any)
	require.Len(t, names, 2)
	assert.Equal(t, map[string]any{"culture": "fr", "value": "Plaque Nord"}, names[0])
}
