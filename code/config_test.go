package code

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{Engine: &mockEngine{}}},
		{name: "missing engine", cfg: Config{}, wantErr: "missing required fields: Engine"},
		{
			name:    "negative limits",
			cfg:     Config{Engine: &mockEngine{}, Timeout: -time.Second, MaxActions: -1, MaxSource: -1},
			wantErr: "negative limits: Timeout, MaxActions, MaxSource",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Engine: &mockEngine{}}
	cfg.applyDefaults()

	want := Limits{
		Timeout:       5 * time.Second,
		MaxSteps:      100000,
		MaxDepth:      64,
		MaxCollection: 10000,
		MaxActions:    10000,
		MaxOutput:     64 << 10,
		MaxSource:     64 << 10,
	}
	if got := cfg.limits(); got != want {
		t.Errorf("limits = %+v, want %+v", got, want)
	}
	if cfg.Logger == nil {
		t.Error("expected a silent default logger")
	}
}

func TestConfig_ApplyDefaultsKeepsValues(t *testing.T) {
	cfg := Config{Engine: &mockEngine{}, Timeout: time.Second, MaxSteps: 10}
	cfg.applyDefaults()
	if cfg.Timeout != time.Second || cfg.MaxSteps != 10 {
		t.Errorf("explicit values overwritten: %+v", cfg.limits())
	}
}

func TestLimits_ResolveOnlyTightens(t *testing.T) {
	base := Limits{Timeout: 5 * time.Second, MaxSteps: 100, MaxDepth: 10, MaxCollection: 50, MaxActions: 20, MaxOutput: 1024, MaxSource: 2048}

	got := base.resolve(Limits{Timeout: time.Second, MaxSteps: 1000, MaxActions: 3, MaxSource: 512})
	want := Limits{Timeout: time.Second, MaxSteps: 100, MaxDepth: 10, MaxCollection: 50, MaxActions: 3, MaxOutput: 1024, MaxSource: 512}
	if got != want {
		t.Errorf("resolve = %+v, want %+v", got, want)
	}

	if got := base.resolve(Limits{Timeout: time.Minute}); got.Timeout != 5*time.Second {
		t.Errorf("timeout loosened to %v", got.Timeout)
	}
}
