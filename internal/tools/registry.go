package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vbeauty-labs/glowbot/internal/auth"
)

// AuthTokenKey is the reserved argument key the interceptor writes the
// caller's credential under. Tools never receive a caller-supplied value
// for this key.
const AuthTokenKey = "auth_token"

// RawTool is a tool as reported by the capability provider, before
// metadata parsing.
type RawTool struct {
	Name        string
	Description string
}

// Provider is the external multi-server capability provider boundary.
type Provider interface {
	// ListTools returns all advertised tools.
	ListTools(ctx context.Context) ([]RawTool, error)

	// Call invokes a tool by name with a JSON-compatible argument map
	// and returns the raw result payload.
	Call(ctx context.Context, name string, args map[string]any) (string, error)

	// Close tears down the provider connection.
	Close() error
}

// Registry caches discovered tool descriptors partitioned by agent and
// wraps every invocation with credential injection.
type Registry struct {
	provider Provider
	log      zerolog.Logger

	// mu guards the cache and gives refreshes at-most-one-in-flight
	// discipline; a completed refresh replaces the cache atomically.
	mu      sync.Mutex
	byAgent map[string][]Descriptor
	all     []Descriptor
	loaded  bool
	closed  bool
}

// NewRegistry creates a registry over the given capability provider.
// Discovery is lazy: the first All/ForAgent call triggers it.
func NewRegistry(provider Provider, log zerolog.Logger) *Registry {
	return &Registry{
		provider: provider,
		log:      log.With().Str("component", "tools.registry").Logger(),
	}
}

// All returns every discovered tool, refreshing the cache first when it
// is empty or forceReload is set.
func (r *Registry) All(ctx context.Context, forceReload bool) ([]Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoadedLocked(ctx, forceReload); err != nil {
		return nil, err
	}
	out := make([]Descriptor, len(r.all))
	copy(out, r.all)
	return out, nil
}

// ForAgent returns the tools whose metadata names the given agent.
// An agent with no tools yields an empty slice, not an error.
func (r *Registry) ForAgent(ctx context.Context, agent string) ([]Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoadedLocked(ctx, false); err != nil {
		return nil, err
	}
	out := make([]Descriptor, len(r.byAgent[agent]))
	copy(out, r.byAgent[agent])
	return out, nil
}

// ensureLoadedLocked refreshes the cache when needed. Callers hold r.mu,
// so at most one refresh is in flight at a time.
func (r *Registry) ensureLoadedLocked(ctx context.Context, force bool) error {
	if r.closed {
		return fmt.Errorf("tool registry is closed")
	}
	if r.loaded && !force {
		return nil
	}

	raw, err := r.provider.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("discover tools: %w", err)
	}

	all := make([]Descriptor, 0, len(raw))
	byAgent := make(map[string][]Descriptor)
	for _, tool := range raw {
		meta, description := ParseDescription(tool.Description)
		if meta.Agent == AgentUnknown {
			r.log.Debug().Str("tool", tool.Name).Msg("tool has no routing metadata")
		}
		d := Descriptor{Name: tool.Name, Description: description, Meta: meta}
		all = append(all, d)
		byAgent[meta.Agent] = append(byAgent[meta.Agent], d)
	}

	r.all = all
	r.byAgent = byAgent
	r.loaded = true
	r.log.Info().Int("tools", len(all)).Int("agents", len(byAgent)).Msg("tool cache refreshed")
	return nil
}

// Invoke calls a tool through the auth-injection interceptor: the
// caller's credential is read from the request context and written under
// the reserved key, overwriting any caller-supplied value. A missing
// credential is logged but does not block the call.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", fmt.Errorf("tool registry is closed")
	}
	r.mu.Unlock()

	injected := make(map[string]any, len(args)+1)
	for k, v := range args {
		if k == AuthTokenKey {
			continue
		}
		injected[k] = v
	}

	token, ok := auth.TokenFrom(ctx)
	if !ok {
		r.log.Warn().Str("tool", name).Msg("no credential in context, invoking tool without auth")
	}
	injected[AuthTokenKey] = token

	return r.provider.Call(ctx, name, injected)
}

// Close tears down the provider connection and clears the cache.
// Repeated calls are no-ops.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.all = nil
	r.byAgent = nil
	r.loaded = false
	return r.provider.Close()
}
