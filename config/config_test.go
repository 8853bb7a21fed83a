package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
}

// Load fills defaults for everything optional.
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "marketplace", cfg.MongoDatabase)
	require.Equal(t, 24*time.Hour, cfg.JWTExpire)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 587, cfg.SMTPPort)
	require.False(t, cfg.IsProduction())
}

func TestLoad_RequiresMongoURIAndSecret(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	require.Error(t, err)
}

// JWT_EXPIRE accepts the day suffix as well as Go durations.
func TestLoad_JWTExpireForms(t *testing.T) {
	setRequired(t)

	t.Setenv("JWT_EXPIRE", "30d")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30*24*time.Hour, cfg.JWTExpire)

	t.Setenv("JWT_EXPIRE", "90m")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, cfg.JWTExpire)

	t.Setenv("JWT_EXPIRE", "-1h")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_ListsAreTrimmed(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("APP_ENV", "Production")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.IsProduction())
}
