package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
)

func newTestRegistry(t *testing.T, primary, secondary *MockClient) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		[]Client{primary, secondary},
		map[string]string{"gemini": "openrouter"},
		"openrouter",
	)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg
}

func TestResolveDefault(t *testing.T) {
	primary := &MockClient{ProviderName: "openrouter"}
	secondary := &MockClient{ProviderName: "ollama"}
	reg := newTestRegistry(t, primary, secondary)

	client, err := reg.Resolve("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != Client(primary) {
		t.Errorf("expected the default provider, got %s", client.Name())
	}
}

func TestResolveAlias(t *testing.T) {
	primary := &MockClient{ProviderName: "openrouter"}
	secondary := &MockClient{ProviderName: "ollama"}
	reg := newTestRegistry(t, primary, secondary)

	client, err := reg.Resolve("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	canonical, err := reg.Resolve("openrouter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != canonical {
		t.Error("expected alias to resolve to the same client as the canonical name")
	}
}

func TestResolveUnknown(t *testing.T) {
	reg := newTestRegistry(t, &MockClient{ProviderName: "openrouter"}, &MockClient{ProviderName: "ollama"})

	_, err := reg.Resolve("unknown-xyz")
	if err == nil {
		t.Fatal("expected an error for unknown provider")
	}
	var unsupported *UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedProviderError, got %T", err)
	}
	if unsupported.Name != "unknown-xyz" {
		t.Errorf("expected the offending identifier to be carried, got %q", unsupported.Name)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	reg := newTestRegistry(t, &MockClient{ProviderName: "openrouter"}, &MockClient{ProviderName: "ollama"})

	client, err := reg.Resolve("Ollama")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Name() != "ollama" {
		t.Errorf("expected ollama, got %s", client.Name())
	}
}

func TestAvailableAggregate(t *testing.T) {
	tests := []struct {
		name      string
		primary   bool
		secondary bool
		want      bool
	}{
		{"both up", true, true, true},
		{"one up", false, true, true},
		{"all down", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &MockClient{ProviderName: "openrouter"}
			secondary := &MockClient{ProviderName: "ollama"}
			primary.On("Available", mock.Anything).Return(tt.primary)
			secondary.On("Available", mock.Anything).Return(tt.secondary)
			reg := newTestRegistry(t, primary, secondary)

			if got := reg.Available(context.Background()); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
