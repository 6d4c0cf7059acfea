package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/storefront/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StorePath   string        `env:"STORE_PATH"   default:"var/storage/storefront.db"`
	DeliverDays int           `env:"DELIVER_DAYS" default:"3"`
	FailureRate float64       `env:"FAILURE_RATE" default:"0.1"`
	Persist     bool          `env:"PERSIST"      default:"true"`
	Delay       time.Duration `env:"DELAY"        default:"2s"`
	NoEnvTag    string
	Checkout    testNestedConfig `envPrefix:"CHECKOUT_"`
}

type testNestedConfig struct {
	FreeShipping float64 `env:"FREE_SHIPPING" default:"500"`
}

func defaults() testConfig {
	return testConfig{
		StorePath:   "var/storage/storefront.db",
		DeliverDays: 3,
		FailureRate: 0.1,
		Persist:     true,
		Delay:       2 * time.Second,
		Checkout:    testNestedConfig{FreeShipping: 500},
	}
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		want    func(*testConfig)
		wantErr bool
	}{
		{
			name:   "uses default values when env vars not set",
			prefix: "",
			want:   func(*testConfig) {},
		},
		{
			name:   "reads environment variables",
			prefix: "",
			envVars: map[string]string{
				"STORE_PATH":             ":memory:",
				"DELIVER_DAYS":           "5",
				"FAILURE_RATE":           "0",
				"PERSIST":                "false",
				"DELAY":                  "150ms",
				"CHECKOUT_FREE_SHIPPING": "750.5",
			},
			want: func(c *testConfig) {
				c.StorePath = ":memory:"
				c.DeliverDays = 5
				c.FailureRate = 0
				c.Persist = false
				c.Delay = 150 * time.Millisecond
				c.Checkout.FreeShipping = 750.5
			},
		},
		{
			name:    "prefers more specific prefix",
			prefix:  "STOREFRONT_STOREFRONTSVC",
			envVars: map[string]string{"STOREFRONT_DELAY": "1s", "STOREFRONT_STOREFRONTSVC_DELAY": "3s"},
			want:    func(c *testConfig) { c.Delay = 3 * time.Second },
		},
		{
			name:    "falls back to shorter prefix",
			prefix:  "STOREFRONT_STOREFRONTSVC",
			envVars: map[string]string{"STOREFRONT_CHECKOUT_FREE_SHIPPING": "900"},
			want:    func(c *testConfig) { c.Checkout.FreeShipping = 900 },
		},
		{
			name:    "handles empty string values",
			envVars: map[string]string{"STORE_PATH": ""},
			want:    func(c *testConfig) { c.StorePath = "" },
		},
		{
			name:    "fails on invalid int value",
			envVars: map[string]string{"DELIVER_DAYS": "three"},
			wantErr: true,
		},
		{
			name:    "fails on invalid float value",
			envVars: map[string]string{"FAILURE_RATE": "ten percent"},
			wantErr: true,
		},
		{
			name:    "fails on invalid bool value",
			envVars: map[string]string{"PERSIST": "sometimes"},
			wantErr: true,
		},
		{
			name:    "fails on invalid duration value",
			envVars: map[string]string{"DELAY": "2 seconds"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &testConfig{}
			err := Parse(context.Background(), cfg, tt.prefix)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.prefix, cfg.Namespace())

			want := defaults()
			tt.want(&want)

			if diff := cmp.Diff(want, *cfg, cmpopts.IgnoreUnexported(EnvConfig{})); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMissingRequired(t *testing.T) {
	cfg := &struct {
		EnvConfig

		Required string `env:"STOREFRONT_TEST_REQUIRED_VALUE"`
	}{}

	err := Parse(context.Background(), cfg, "")
	require.ErrorIs(t, err, ErrVarNotSet)
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     any
		wantErr error
	}{
		{
			name:    "non-pointer config",
			cfg:     testConfig{},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "non-struct pointer",
			cfg:     new(string),
			wantErr: ErrInvalidConfig,
		},
		{
			name: "missing EnvConfig embedding",
			cfg: &struct {
				Value string `env:"VALUE"`
			}{},
			wantErr: ErrInvalidConfig,
		},
		{
			name: "unsupported field type",
			cfg: &struct {
				EnvConfig

				Values []string `env:"VALUES" default:"a,b"`
			}{},
			wantErr: ErrUnsupportedVarType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Parse(context.Background(), tt.cfg, "")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
