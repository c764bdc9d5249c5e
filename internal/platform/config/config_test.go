package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"LEDGER_ADDR", "LEDGER_OWNERS", "LEDGER_VOTE_MODE", "LEDGER_ALLOCATOR", "KAFKA_BROKERS", "LEDGER_JWT_SIGNING_KEY", "LEDGER_AUDIT_STORE", "LEDGER_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{DefaultOwner}, cfg.Ledger.Owners)
	assert.Equal(t, VoteModeOpen, cfg.Ledger.VoteMode)
	assert.Equal(t, AllocatorMemory, cfg.Allocator.Backend)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Server.JWTSigningKey)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, AuditMemory, cfg.Audit.Backend)
	assert.Equal(t, 600, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_OWNERS", " CONTRACT_OWNER , auditor ,,")
	t.Setenv("LEDGER_VOTE_MODE", "Attested")
	t.Setenv("LEDGER_ALLOCATOR", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LEDGER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LEDGER_AUDIT_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("LEDGER_RATE_LIMIT", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"CONTRACT_OWNER", "auditor"}, cfg.Ledger.Owners)
	assert.Equal(t, VoteModeAttested, cfg.Ledger.VoteMode)
	assert.Equal(t, AllocatorRedis, cfg.Allocator.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, AuditPostgres, cfg.Audit.Backend)
	assert.Zero(t, cfg.RateLimit.Requests)
}

func TestFromEnvRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown vote mode":      {"LEDGER_VOTE_MODE": "quadratic"},
		"unknown allocator":      {"LEDGER_ALLOCATOR": "etcd"},
		"redis without url":      {"LEDGER_ALLOCATOR": "redis", "REDIS_URL": ""},
		"postgres without url":   {"LEDGER_ALLOCATOR": "postgres", "DATABASE_URL": ""},
		"blank owners":           {"LEDGER_OWNERS": " , "},
		"bad duration":           {"LEDGER_REQUEST_TIMEOUT": "soon"},
		"non-positive pool size": {"REDIS_POOL_SIZE": "0"},
		"unknown audit store":    {"LEDGER_AUDIT_STORE": "s3"},
		"postgres audit no url":  {"LEDGER_AUDIT_STORE": "postgres", "DATABASE_URL": ""},
		"negative rate limit":    {"LEDGER_RATE_LIMIT": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
