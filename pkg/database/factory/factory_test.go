package factory

import (
	"testing"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/config"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database/cached"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database/memory"
)

func TestNewProviderMemory(t *testing.T) {
	cfg := config.DefaultConfig()

	p, err := NewProvider(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if _, ok := p.(*memory.Provider); !ok {
		t.Fatalf("got %T, want bare memory engine", p)
	}
}

func TestNewProviderMemoryWithCache(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Type = config.CacheTypeInMemory

	p, err := NewProvider(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	cp, ok := p.(*cached.Provider)
	if !ok {
		t.Fatalf("got %T, want cached decorator", p)
	}
	// The in-process engine is never wrapped in a breaker.
	if _, ok := cp.Inner().(*memory.Provider); !ok {
		t.Fatalf("inner is %T, want memory engine", cp.Inner())
	}
}

func TestNewProviderNormalizesType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Type = "  Memory "

	p, err := NewProvider(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if _, ok := p.(*memory.Provider); !ok {
		t.Fatalf("got %T, want memory engine", p)
	}
}

func TestNewProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown engine", func(cfg *config.Config) {
			cfg.Database.Type = "oracle"
		}},
		{"unknown cache", func(cfg *config.Config) {
			cfg.Cache.Enabled = true
			cfg.Cache.Type = "varnish"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(&cfg)
			if _, err := NewProvider(cfg, nil, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
