package provider

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// UnsupportedProviderError reports an identifier that matched no
// registered provider, carrying the offending value for user-facing
// messages.
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported AI provider: %s", e.Name)
}

// Registry maps provider identifiers to clients. It is built once at
// startup and read-only afterward, so concurrent Resolve calls need no
// locking.
type Registry struct {
	clients     map[string]Client
	aliases     map[string]string
	defaultName string
}

// NewRegistry indexes the given clients by name. aliases remaps
// vendor nicknames to canonical provider names before lookup (the
// historical table maps "gemini" to "openrouter"); defaultName is used
// when a request names no provider.
func NewRegistry(clients []Client, aliases map[string]string, defaultName string) (*Registry, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("at least one provider required")
	}
	index := make(map[string]Client, len(clients))
	for _, c := range clients {
		index[c.Name()] = c
	}
	if _, ok := index[defaultName]; !ok {
		return nil, fmt.Errorf("default provider %q not registered", defaultName)
	}
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &Registry{clients: index, aliases: aliases, defaultName: defaultName}, nil
}

// Resolve returns the client for the identifier. Empty resolves to the
// default; aliases are remapped before lookup; unknown identifiers
// fail with *UnsupportedProviderError.
func (r *Registry) Resolve(identifier string) (Client, error) {
	if identifier == "" {
		return r.clients[r.defaultName], nil
	}
	key := strings.ToLower(identifier)
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	client, ok := r.clients[key]
	if !ok {
		return nil, &UnsupportedProviderError{Name: identifier}
	}
	return client, nil
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// Default returns the configured default provider name.
func (r *Registry) Default() string { return r.defaultName }

// Available probes every provider concurrently and reports the logical
// OR: true if at least one backend is usable. It never returns an
// error; individual probes already swallow theirs.
func (r *Registry) Available(ctx context.Context) bool {
	results := make([]bool, len(r.clients))
	g, ctx := errgroup.WithContext(ctx)
	i := 0
	for _, client := range r.clients {
		idx, c := i, client
		g.Go(func() error {
			results[idx] = c.Available(ctx)
			return nil
		})
		i++
	}
	_ = g.Wait()
	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}
