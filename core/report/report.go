package report

import (
	"sort"

	"go.uber.org/zap"

	"staff-sync/core/n2f"
)

// Config holds configuration for run reporting.
type Config struct {
	// Dir is the directory run outcome logs are written to.
	Dir string `mapstructure:"dir" default:"reports"`
}

// ScopeSummary counts call results for one scope and action class.
type ScopeSummary struct {
	Scope   string `json:"scope"`
	Action  string `json:"action"`
	Success int    `json:"success"`
	Total   int    `json:"total"`
}

// Aggregate groups outcomes by scope and action class. Summaries come
// back sorted by scope then action so the report order is stable.
func Aggregate(outcomes []n2f.Outcome) []ScopeSummary {
	type bucket struct{ scope, action string }
	counts := make(map[bucket]*ScopeSummary)

	for _, o := range outcomes {
		b := bucket{scope: o.Scope, action: string(o.Action)}
		s, ok := counts[b]
		if !ok {
			s = &ScopeSummary{Scope: o.Scope, Action: string(o.Action)}
			counts[b] = s
		}
		s.Total++
		if o.Success {
			s.Success++
		}
	}

	summaries := make([]ScopeSummary, 0, len(counts))
	for _, s := range counts {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Scope != summaries[j].Scope {
			return summaries[i].Scope < summaries[j].Scope
		}
		return summaries[i].Action < summaries[j].Action
	})
	return summaries
}

// Log writes one summary line per scope and action class.
func Log(log *zap.Logger, summaries []ScopeSummary) {
	for _, s := range summaries {
		log.Info("Scope result",
			zap.String("scope", s.Scope),
			zap.String("action", s.Action),
			zap.Int("success", s.Success),
			zap.Int("total", s.Total))
	}
}
