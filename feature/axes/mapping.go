package axes

import (
	"context"
	"fmt"
	"strings"

	"staff-sync/core/config"
	"staff-sync/core/n2f"
	"staff-sync/core/record"
)

// ResolveAxisID returns the platform identifier of the axis a scope
// writes to. Static scopes carry their identifier; dynamic ones are
// looked up in the company's custom axes by French display name. An axis
// that cannot be resolved is a configuration error and aborts the scope
// before any mutating call.
func ResolveAxisID(ctx context.Context, client *n2f.Client, scope config.Scope, companyID string) (string, error) {
	if scope.AxeID != "" {
		return scope.AxeID, nil
	}
	if scope.AxeName == "" {
		return "", fmt.Errorf("scope %s defines neither a static axis nor a lookup name", scope.Name)
	}
	if companyID == "" {
		return "", fmt.Errorf("scope %s requires a company to resolve its axis", scope.Name)
	}

	customAxes, err := client.ListCompanyAxes(ctx, companyID)
	if err != nil {
		return "", fmt.Errorf("failed to list custom axes: %w", err)
	}

	for _, axe := range customAxes {
		if frenchName(axe) == scope.AxeName {
			return axe.Key("uuid"), nil
		}
	}
	return "", fmt.Errorf("no custom axis named %q for scope %s", scope.AxeName, scope.Name)
}

// frenchName extracts the lowercased French culture value from an axis
// record's names list.
func frenchName(axe record.Record) string {
	names, ok := axe["names"].([]any)
	if !ok {
		return ""
	}
	for _, n := range names {
		entry, ok := n.(map[string]any)
		if !ok {
			continue
		}
		if record.ToString(entry["culture"]) == "fr" {
			return strings.ToLower(record.ToString(entry["value"]))
		}
	}
	return ""
}
