package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staff-sync/core/cache"
	"staff-sync/core/config"
	"staff-sync/core/database"
	"staff-sync/core/logger"
	"staff-sync/core/n2f"
	"staff-sync/core/reconcile"
	"staff-sync/core/report"
	"staff-sync/core/source"
	"staff-sync/core/storage"
	"staff-sync/feature/axes"
	"staff-sync/feature/users"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	syncCreate     bool
	syncUpdate     bool
	syncDelete     bool
	syncSimulate   bool
	syncSandbox    bool
	syncClearCache bool
	syncScopes     []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the selected scopes from Agresso to N2F",
	Long: `Synchronize one or more scopes (users, projects, plates, subposts)
from the ERP to the expense platform.

Without action flags the run creates and updates; deletion always has to
be requested explicitly.

Examples:
  # Create and update users
  staff-sync sync --scope users

  # Full alignment of every scope, including deletions
  staff-sync sync --create --update --delete

  # Dry run: log what would happen, call no API
  staff-sync sync --simulate

  # Run against the sandbox environment
  staff-sync sync --sandbox --scope projects`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncCreate, "create", "c", false, "Create entities missing on N2F")
	syncCmd.Flags().BoolVarP(&syncUpdate, "update", "u", false, "Update entities that changed")
	syncCmd.Flags().BoolVarP(&syncDelete, "delete", "d", false, "Delete N2F entities absent from Agresso")
	syncCmd.Flags().BoolVar(&syncSimulate, "simulate", false, "Replace every API call with a synthetic result")
	syncCmd.Flags().BoolVar(&syncSandbox, "sandbox", false, "Target the sandbox environment")
	syncCmd.Flags().BoolVar(&syncClearCache, "clear-cache", false, "Drop every cached entry before the run")
	syncCmd.Flags().StringSliceVarP(&syncScopes, "scope", "s", []string{"all"},
		fmt.Sprintf("Scope(s) to synchronize (%s)", strings.Join(config.ScopeNames(), ", ")))

	RootCmd.AddCommand(syncCmd)
}

// Runtime bundles everything a run needs. It is assembled once per
// invocation and passed explicitly instead of living in globals.
type Runtime struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache
	Client   *n2f.Client
	Provider *source.Provider
	Engine   *reconcile.Engine
}

// newRuntime wires config, logger, database, cache, gateway and engine.
func newRuntime() (*Runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.N2F.Simulate = cfg.N2F.Simulate || syncSimulate
	cfg.N2F.Sandbox = cfg.N2F.Sandbox || syncSandbox

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the ERP database: %w", err)
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	client := n2f.NewClient(cfg.N2F, store, log)

	return &Runtime{
		Cfg:      cfg,
		Log:      log,
		DB:       db,
		Cache:    store,
		Client:   client,
		Provider: source.NewProvider(db, store, log),
		Engine:   reconcile.NewEngine(log),
	}, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Log.Sync()

	// No action flag means the safe default: create and update.
	flags := reconcile.Flags{Create: syncCreate, Update: syncUpdate, Delete: syncDelete}
	if !syncCreate && !syncUpdate && !syncDelete {
		flags.Create = true
		flags.Update = true
	}

	scopes, err := config.SelectScopes(syncScopes)
	if err != nil {
		return err
	}

	if syncClearCache {
		rt.Cache.Clear()
		rt.Log.Info("Cache cleared before run")
	}

	rt.Log.Info("Synchronization starting",
		zap.Strings("scopes", scopeNames(scopes)),
		zap.Bool("create", flags.Create),
		zap.Bool("update", flags.Update),
		zap.Bool("delete", flags.Delete),
		zap.Bool("simulate", rt.Cfg.N2F.Simulate),
		zap.Bool("sandbox", rt.Cfg.N2F.Sandbox))

	outcomes, scopeErr := executeScopes(ctx, rt, scopes, flags)

	summaries := report.Aggregate(outcomes)
	report.Log(rt.Log, summaries)

	if len(outcomes) > 0 {
		path, err := report.Export(rt.Cfg.Report, outcomes)
		if err != nil {
			return fmt.Errorf("failed to export run report: %w", err)
		}
		rt.Log.Info("Run report written", zap.String("path", path))

		if rt.Cfg.Archive.Enabled {
			archiveClient, err := storage.NewClient(rt.Cfg.Archive)
			if err != nil {
				return fmt.Errorf("failed to create archive client: %w", err)
			}
			if err := report.Archive(ctx, archiveClient, rt.Cfg.Archive, path, rt.Log); err != nil {
				return fmt.Errorf("failed to archive run report: %w", err)
			}
		}
	}

	rt.Log.Info("Synchronization finished", zap.Int("outcomes", len(outcomes)))
	return scopeErr
}

// executeScopes runs every selected scope and gathers their outcomes. A
// broken scope never silences what already ran, but its load or
// configuration error is kept and the command fails once reporting is
// done.
func executeScopes(ctx context.Context, rt *Runtime, scopes []config.Scope, flags reconcile.Flags) ([]n2f.Outcome, error) {
	var outcomes []n2f.Outcome
	var errs []error
	for _, scope := range scopes {
		query, err := rt.Cfg.ScopeQuery(scope)
		if err != nil {
			rt.Log.Error("Scope failed", zap.String("scope", scope.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("scope %s: %w", scope.Name, err))
			continue
		}

		scopeOutcomes, err := runScope(ctx, rt, scope, query, flags)
		outcomes = append(outcomes, scopeOutcomes...)
		if err != nil {
			rt.Log.Error("Scope failed", zap.String("scope", scope.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("scope %s: %w", scope.Name, err))
		}
	}
	return outcomes, errors.Join(errs...)
}

// runScope dispatches one scope to its feature.
func runScope(ctx context.Context, rt *Runtime, scope config.Scope, query string, flags reconcile.Flags) ([]n2f.Outcome, error) {
	log := logger.WithScope(rt.Log, scope.Name)

	switch scope.Kind {
	case "user":
		sync := users.New(rt.Client, rt.Provider, query, rt.Cfg.N2F.Sandbox, log)
		outcomes, err := rt.Engine.Run(ctx, sync, flags)
		outcomes = append(outcomes, sync.DependencyOutcomes()...)
		if err == nil && len(outcomes) > 0 {
			// Fresh users must be visible to the scopes that follow.
			rt.Client.InvalidateList("users")
		}
		return outcomes, err
	case "axe":
		return axes.Run(ctx, rt.Engine, rt.Client, rt.Provider, scope, query, flags, log)
	default:
		return nil, fmt.Errorf("scope %s has unknown kind %q", scope.Name, scope.Kind)
	}
}

func scopeNames(scopes []config.Scope) []string {
	names := make([]string, len(scopes))
	for i, s := range scopes {
		names[i] = s.Name
	}
	return names
}
