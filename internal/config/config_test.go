package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elite-decor-web/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"SUPABASE_URL":             "https://example.supabase.co",
		"SUPABASE_PUBLISHABLE_KEY": "pk",
		"SUPABASE_JWT_SECRET":      "secret",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, config.StatusPolicyForwardOnly, cfg.ProjectStatusPolicy)
	assert.Equal(t, "elite_decor_session", cfg.Session.CookieName)
	assert.Equal(t, "pk", cfg.ImageHostKey())
	assert.False(t, cfg.UsesPostgres())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFrom_Overrides(t *testing.T) {
	env := baseEnv()
	env["BACKEND_TIMEOUT"] = "3s"
	env["DATABASE_URL"] = "postgres://u:p@localhost/db"
	env["PROJECT_STATUS_POLICY"] = "free_form"
	env["ALLOWED_ORIGINS"] = "http://a.test,http://b.test"

	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, config.StatusPolicyFreeForm, cfg.ProjectStatusPolicy)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadFrom_MissingSupabase(t *testing.T) {
	_, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL is required")
}

func TestLoadFrom_BadPolicy(t *testing.T) {
	env := baseEnv()
	env["PROJECT_STATUS_POLICY"] = "sideways"

	_, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJECT_STATUS_POLICY")
}
