package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DevSecret, cfg.JWTSecret)
	assert.True(t, cfg.InsecureSecret())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, []string{"openid", "profile", "email"}, cfg.OIDC.Scopes)
	assert.False(t, cfg.OIDC.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("STORE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/accounts")
	t.Setenv("OIDC_ISSUER", "https://issuer.example")
	t.Setenv("OIDC_CLIENT_ID", "client")
	t.Setenv("OIDC_REDIRECT_URL", "http://localhost/auth/sso/callback")
	t.Setenv("OIDC_SCOPES", "openid,email")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.False(t, cfg.InsecureSecret())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.True(t, cfg.OIDC.Enabled())
	assert.Equal(t, []string{"openid", "email"}, cfg.OIDC.Scopes)
}

func TestLoad_BcryptCostClamped(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory", cfg: Config{Store: StoreMemory, JWTSecret: "x"}},
		{name: "postgres without url", cfg: Config{Store: StorePostgres, JWTSecret: "x"}, wantErr: true},
		{name: "mongo with url", cfg: Config{Store: StoreMongo, DatabaseURL: "mongodb://localhost", JWTSecret: "x"}},
		{name: "unknown store", cfg: Config{Store: "redis", JWTSecret: "x"}, wantErr: true},
		{name: "empty secret", cfg: Config{Store: StoreMemory}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
