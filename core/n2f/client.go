package n2f

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"staff-sync/core/cache"
	"staff-sync/core/record"
)

// pageSize is the fixed page size for paginated list endpoints.
const pageSize = 200

// Client is the rate-limited gateway to the target platform API. It owns
// authentication, quota channels, pagination, the read-through cache for
// list calls, and the simulate/sandbox execution modes.
type Client struct {
	cfg     Config
	baseURL string
	httpc   *http.Client
	tokens  *TokenCache
	quota   *QuotaChannels
	cache   *cache.Cache
	log     *zap.Logger
}

// NewClient creates a gateway client. The cache may be nil, in which case
// list calls always hit the network.
func NewClient(cfg Config, c *cache.Cache, log *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	client := &Client{
		cfg:     cfg,
		baseURL: cfg.ResolvedBaseURL(),
		httpc:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
		quota:   NewQuotaChannels(),
		cache:   c,
		log:     log,
	}
	client.tokens = NewTokenCache(client.fetchToken)
	return client
}

// envelope is the response wrapper for paginated and auth endpoints.
type envelope struct {
	Response struct {
		Data     []record.Record `json:"data"`
		Token    string          `json:"token"`
		Validity string          `json:"validity"`
	} `json:"response"`
}

// flatEnvelope is the response wrapper for endpoints returning the list
// directly (roles, userprofiles, custom axes).
type flatEnvelope struct {
	Response []record.Record `json:"response"`
}

// fetchToken calls the auth endpoint and parses the credential and its
// expiry. It is only invoked through the token cache.
func (c *Client) fetchToken(ctx context.Context) (TokenState, error) {
	if err := c.quota.Wait(ctx, false); err != nil {
		return TokenState{}, err
	}

	body, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
	})
	if err != nil {
		return TokenState{}, fmt.Errorf("failed to encode auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return TokenState{}, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return TokenState{}, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return TokenState{}, fmt.Errorf("auth request failed with status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return TokenState{}, fmt.Errorf("failed to decode auth response: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, env.Response.Validity)
	if err != nil {
		return TokenState{}, fmt.Errorf("failed to parse token validity %q: %w", env.Response.Validity, err)
	}

	return TokenState{Token: env.Response.Token, ExpiresAt: expiresAt}, nil
}

// ListUsers returns all users on the target, across all pages.
func (c *Client) ListUsers(ctx context.Context) ([]record.Record, error) {
	return c.listPaginated(ctx, "users")
}

// ListCompanies returns all companies on the target, across all pages.
func (c *Client) ListCompanies(ctx context.Context) ([]record.Record, error) {
	return c.listPaginated(ctx, "companies")
}

// ListRoles returns the role catalog. The endpoint is not paginated.
func (c *Client) ListRoles(ctx context.Context) ([]record.Record, error) {
	return c.listFlat(ctx, "roles")
}

// ListUserProfiles returns the user profile catalog. Not paginated.
func (c *Client) ListUserProfiles(ctx context.Context) ([]record.Record, error) {
	return c.listFlat(ctx, "userprofiles")
}

// ListCompanyAxes returns the custom analytic axes of a company.
func (c *Client) ListCompanyAxes(ctx context.Context, companyID string) ([]record.Record, error) {
	return c.listFlat(ctx, fmt.Sprintf("companies/%s/axes", url.PathEscape(companyID)))
}

// ListAxeValues returns all values of one axis in a company, across all
// pages.
func (c *Client) ListAxeValues(ctx context.Context, companyID, axeID string) ([]record.Record, error) {
	return c.listPaginated(ctx, fmt.Sprintf("companies/%s/axes/%s", url.PathEscape(companyID), url.PathEscape(axeID)))
}

// InvalidateList drops the cached result of one list endpoint so the next
// call refetches. Used after provisional creates during a run.
func (c *Client) InvalidateList(entity string) {
	if c.cache != nil {
		c.cache.Invalidate("n2f_list", c.baseURL, c.cfg.ClientID, entity, c.cfg.Simulate)
	}
}

// listPaginated fetches every page of an entity endpoint, concatenated in
// request order. Read errors propagate: a corrupt initial dataset
// invalidates the whole run.
func (c *Client) listPaginated(ctx context.Context, entity string) ([]record.Record, error) {
	cacheArgs := []any{c.baseURL, c.cfg.ClientID, entity, c.cfg.Simulate}
	var cached []record.Record
	if c.cache != nil && c.cache.Get(&cached, "n2f_list", cacheArgs...) {
		return cached, nil
	}

	var all []record.Record
	if !c.cfg.Simulate {
		for start := 0; ; start += pageSize {
			page, err := c.requestPage(ctx, entity, start, pageSize)
			if err != nil {
				return nil, err
			}
			if len(page) == 0 {
				break
			}
			all = append(all, page...)
			if len(page) < pageSize {
				break
			}
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(all, "n2f_list", cacheArgs...); err != nil {
			c.log.Warn("Failed to cache list result", zap.String("entity", entity), zap.Error(err))
		}
	}
	return all, nil
}

// listFlat fetches an endpoint whose response is the list itself, without
// pagination.
func (c *Client) listFlat(ctx context.Context, entity string) ([]record.Record, error) {
	cacheArgs := []any{c.baseURL, c.cfg.ClientID, entity, c.cfg.Simulate}
	var cached []record.Record
	if c.cache != nil && c.cache.Get(&cached, "n2f_list", cacheArgs...) {
		return cached, nil
	}

	var all []record.Record
	if !c.cfg.Simulate {
		raw, status, err := c.get(ctx, entity, nil)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("list %s failed with status %d", entity, status)
		}

		// Some endpoints wrap the list in a data object, some return it
		// directly; accept both shapes.
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Response.Data != nil {
			all = env.Response.Data
		} else {
			var flat flatEnvelope
			if err := json.Unmarshal(raw, &flat); err != nil {
				return nil, fmt.Errorf("failed to decode %s response: %w", entity, err)
			}
			all = flat.Response
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(all, "n2f_list", cacheArgs...); err != nil {
			c.log.Warn("Failed to cache list result", zap.String("entity", entity), zap.Error(err))
		}
	}
	return all, nil
}

// requestPage performs one paginated GET.
func (c *Client) requestPage(ctx context.Context, entity string, start, limit int) ([]record.Record, error) {
	params := url.Values{}
	params.Set("start", strconv.Itoa(start))
	params.Set("limit", strconv.Itoa(limit))

	c.log.Debug("Requesting entity page",
		zap.String("entity", entity),
		zap.Int("start", start),
		zap.Int("limit", limit))

	raw, status, err := c.get(ctx, entity, params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("list %s failed with status %d", entity, status)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", entity, err)
	}
	return env.Response.Data, nil
}

// get performs an authenticated GET through the read quota channel.
func (c *Client) get(ctx context.Context, entity string, params url.Values) ([]byte, int, error) {
	token, err := c.tokens.Acquire(ctx)
	if err != nil {
		return nil, 0, err
	}

	if err := c.quota.Wait(ctx, true); err != nil {
		return nil, 0, err
	}

	endpoint := c.baseURL + "/" + entity
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// Upsert POSTs a payload to an endpoint (create and update share the same
// endpoint on the target). The result is always an Outcome; errors never
// escape the call boundary.
func (c *Client) Upsert(ctx context.Context, endpoint string, payload record.Record, action ActionType, objectType, objectID, scope string) Outcome {
	c.log.Info("Mutating call",
		zap.String("scope", scope),
		zap.String("action", string(action)),
		zap.String("endpoint", endpoint),
		zap.String("object_id", objectID))

	if c.cfg.Simulate {
		c.log.Info("SIMULATE: call succeeded",
			zap.String("scope", scope),
			zap.String("action", string(action)),
			zap.String("object_id", objectID))
		return SimulatedOutcome(action, objectType, objectID, scope)
	}

	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return FailureOutcome("Upsert payload encoding failed: "+err.Error(), 0, elapsedMs(start), err.Error(), action, objectType, objectID, scope)
	}

	token, err := c.tokens.Acquire(ctx)
	if err != nil {
		return FailureOutcome("Upsert auth failed: "+err.Error(), 0, elapsedMs(start), err.Error(), action, objectType, objectID, scope)
	}

	if err := c.quota.Wait(ctx, false); err != nil {
		return FailureOutcome("Upsert interrupted: "+err.Error(), 0, elapsedMs(start), err.Error(), action, objectType, objectID, scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return FailureOutcome("Upsert request build failed: "+err.Error(), 0, elapsedMs(start), err.Error(), action, objectType, objectID, scope)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error("Network exception during upsert",
			zap.String("scope", scope),
			zap.String("object_id", objectID),
			zap.Error(err))
		return FailureOutcome("Upsert network exception: "+err.Error(), 0, elapsedMs(start), err.Error(), action, objectType, objectID, scope)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	duration := elapsedMs(start)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Info("Call succeeded",
			zap.String("scope", scope),
			zap.String("action", string(action)),
			zap.String("object_id", objectID),
			zap.Int("status", resp.StatusCode))
		return SuccessOutcome(fmt.Sprintf("Upsert successful: %d", resp.StatusCode), resp.StatusCode, duration, action, objectType, objectID, scope)
	}

	c.log.Error("Call failed",
		zap.String("scope", scope),
		zap.String("action", string(action)),
		zap.String("object_id", objectID),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("response", respBody))
	return FailureOutcome(fmt.Sprintf("Upsert failed: %d", resp.StatusCode), resp.StatusCode, duration, string(respBody), action, objectType, objectID, scope)
}

// Delete removes an entity by its identifier. The result is always an
// Outcome; errors never escape the call boundary.
func (c *Client) Delete(ctx context.Context, endpoint, objectID, objectType, scope string) Outcome {
	c.log.Info("Mutating call",
		zap.String("scope", scope),
		zap.String("action", string(ActionDelete)),
		zap.String("endpoint", endpoint),
		zap.String("object_id", objectID))

	if c.cfg.Simulate {
		c.log.Info("SIMULATE: call succeeded",
			zap.String("scope", scope),
			zap.String("action", string(ActionDelete)),
			zap.String("object_id", objectID))
		return SimulatedOutcome(ActionDelete, objectType, objectID, scope)
	}

	start := time.Now()

	token, err := c.tokens.Acquire(ctx)
	if err != nil {
		return FailureOutcome("Delete auth failed: "+err.Error(), 0, elapsedMs(start), err.Error(), ActionDelete, objectType, objectID, scope)
	}

	if err := c.quota.Wait(ctx, false); err != nil {
		return FailureOutcome("Delete interrupted: "+err.Error(), 0, elapsedMs(start), err.Error(), ActionDelete, objectType, objectID, scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+endpoint+"/"+url.PathEscape(objectID), nil)
	if err != nil {
		return FailureOutcome("Delete request build failed: "+err.Error(), 0, elapsedMs(start), err.Error(), ActionDelete, objectType, objectID, scope)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error("Network exception during delete",
			zap.String("scope", scope),
			zap.String("object_id", objectID),
			zap.Error(err))
		return FailureOutcome("Delete network exception: "+err.Error(), 0, elapsedMs(start), err.Error(), ActionDelete, objectType, objectID, scope)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	duration := elapsedMs(start)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Info("Call succeeded",
			zap.String("scope", scope),
			zap.String("action", string(ActionDelete)),
			zap.String("object_id", objectID),
			zap.Int("status", resp.StatusCode))
		return SuccessOutcome(fmt.Sprintf("Delete successful: %d", resp.StatusCode), resp.StatusCode, duration, ActionDelete, objectType, objectID, scope)
	}

	c.log.Error("Call failed",
		zap.String("scope", scope),
		zap.String("action", string(ActionDelete)),
		zap.String("object_id", objectID),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("response", respBody))
	return FailureOutcome(fmt.Sprintf("Delete failed: %d", resp.StatusCode), resp.StatusCode, duration, string(respBody), ActionDelete, objectType, objectID, scope)
}

// CreateUser creates a user from an API payload.
func (c *Client) CreateUser(ctx context.Context, payload record.Record) Outcome {
	return c.Upsert(ctx, "/users", payload, ActionCreate, "user", payload.Key("mail"), "users")
}

// UpdateUser updates a user from an API payload.
func (c *Client) UpdateUser(ctx context.Context, payload record.Record) Outcome {
	return c.Upsert(ctx, "/users", payload, ActionUpdate, "user", payload.Key("mail"), "users")
}

// DeleteUser removes a user by email.
func (c *Client) DeleteUser(ctx context.Context, email string) Outcome {
	return c.Delete(ctx, "/users", email, "user", "users")
}

// UpsertAxeValue creates or updates one value of a company axis.
func (c *Client) UpsertAxeValue(ctx context.Context, companyID, axeID string, payload record.Record, action ActionType, scope string) Outcome {
	endpoint := fmt.Sprintf("/companies/%s/axes/%s", url.PathEscape(companyID), url.PathEscape(axeID))
	return c.Upsert(ctx, endpoint, payload, action, "axe", payload.Key("code"), scope)
}

// DeleteAxeValue removes one value of a company axis by its code.
func (c *Client) DeleteAxeValue(ctx context.Context, companyID, axeID, code, scope string) Outcome {
	endpoint := fmt.Sprintf("/companies/%s/axes/%s", url.PathEscape(companyID), url.PathEscape(axeID))
	return c.Delete(ctx, endpoint, code, "axe", scope)
}

// Simulating reports whether the client replaces network calls with
// synthetic results.
func (c *Client) Simulating() bool {
	return c.cfg.Simulate
}

// elapsedMs returns the elapsed wall-clock time in milliseconds.
func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
