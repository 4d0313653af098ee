// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "snapstudio", cfg.Database.Database)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 15, cfg.AWS.PresignTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "FALSE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		Auth:        AuthConfig{TokenSecret: defaultTokenSecret},
		Database:    DatabaseConfig{Driver: "postgres", Password: "secret"},
		AWS:         AWSConfig{PresignTTL: 15},
	}
	assert.Error(t, cfg.Validate())

	cfg.Auth.TokenSecret = "rotated"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Password = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.Password = "secret"
	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
}

func TestValidateDriver(t *testing.T) {
	cfg := &Config{
		Environment: "development",
		Database:    DatabaseConfig{Driver: "mysql"},
		AWS:         AWSConfig{PresignTTL: 15},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	assert.NoError(t, cfg.Validate())
}

func TestConnectionStrings(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "snap", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=snap sslmode=disable", db.DSN())

	redis := RedisConfig{Port: "6379"}
	assert.False(t, redis.Enabled())
	redis.Host = "cache"
	assert.True(t, redis.Enabled())
	assert.Equal(t, "cache:6379", redis.Addr())
}
