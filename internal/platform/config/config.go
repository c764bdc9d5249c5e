package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultOwner is the owner principal used when LEDGER_OWNERS is unset.
const DefaultOwner = "CONTRACT_OWNER"

// VoteMode selects how resolution votes are counted.
type VoteMode string

const (
	// VoteModeOpen counts every vote, ignoring voter identity.
	VoteModeOpen VoteMode = "open"
	// VoteModeAttested requires a voter and counts each voter once.
	VoteModeAttested VoteMode = "attested"
)

// AllocatorBackend selects where identifiers come from.
type AllocatorBackend string

const (
	AllocatorMemory   AllocatorBackend = "memory"
	AllocatorRedis    AllocatorBackend = "redis"
	AllocatorPostgres AllocatorBackend = "postgres"
)

// AuditBackend selects where audit events are stored.
type AuditBackend string

const (
	AuditMemory   AuditBackend = "memory"
	AuditPostgres AuditBackend = "postgres"
)

// Config captures everything main needs to wire the ledger.
type Config struct {
	Server    Server
	Ledger    Ledger
	Allocator Allocator
	Audit     Audit
	RateLimit RateLimit
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Ledger holds the authorization and voting settings.
type Ledger struct {
	Owners   []string
	VoteMode VoteMode
}

type Allocator struct {
	Backend  AllocatorBackend
	RedisKey string
	Sequence string
}

type Audit struct {
	Backend AuditBackend
}

// RateLimit caps requests per caller over a sliding window. A zero
// Requests disables limiting. Buckets live in Redis when REDIS_URL is set.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PostgresConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
// Unset variables fall back to in-memory, single-owner defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:            getEnv("LEDGER_ADDR", ":8080"),
			JWTSigningKey:   os.Getenv("LEDGER_JWT_SIGNING_KEY"),
			JWTIssuer:       getEnv("LEDGER_JWT_ISSUER", "chronoledger"),
			JWTAudience:     getEnv("LEDGER_JWT_AUDIENCE", "chronoledger-api"),
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Ledger: Ledger{
			Owners:   splitList(getEnv("LEDGER_OWNERS", DefaultOwner)),
			VoteMode: VoteMode(strings.ToLower(getEnv("LEDGER_VOTE_MODE", string(VoteModeOpen)))),
		},
		Allocator: Allocator{
			Backend:  AllocatorBackend(strings.ToLower(getEnv("LEDGER_ALLOCATOR", string(AllocatorMemory)))),
			RedisKey: getEnv("LEDGER_ALLOCATOR_REDIS_KEY", "chronoledger:ids"),
			Sequence: getEnv("LEDGER_ALLOCATOR_SEQUENCE", "chronoledger_ids"),
		},
		Audit: Audit{
			Backend: AuditBackend(strings.ToLower(getEnv("LEDGER_AUDIT_STORE", string(AuditMemory)))),
		},
		RateLimit: RateLimit{
			Requests: 600,
			Window:   time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{URL: os.Getenv("DATABASE_URL")},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "chronoledger.audit"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Server.RequestTimeout, err = durationEnv("LEDGER_REQUEST_TIMEOUT", cfg.Server.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Server.ShutdownTimeout, err = durationEnv("LEDGER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Window, err = durationEnv("LEDGER_RATE_LIMIT_WINDOW", cfg.RateLimit.Window); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("LEDGER_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid LEDGER_RATE_LIMIT %q", v)
		}
		cfg.RateLimit.Requests = n
	}
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid REDIS_POOL_SIZE %q", v)
		}
		cfg.Redis.PoolSize = n
	}

	return cfg, cfg.Validate()
}

// Validate rejects combinations main cannot wire.
func (c Config) Validate() error {
	if len(c.Ledger.Owners) == 0 {
		return fmt.Errorf("LEDGER_OWNERS must name at least one owner")
	}
	switch c.Ledger.VoteMode {
	case VoteModeOpen, VoteModeAttested:
	default:
		return fmt.Errorf("invalid LEDGER_VOTE_MODE %q", c.Ledger.VoteMode)
	}
	switch c.Allocator.Backend {
	case AllocatorMemory:
	case AllocatorRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("LEDGER_ALLOCATOR=redis requires REDIS_URL")
		}
	case AllocatorPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("LEDGER_ALLOCATOR=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("invalid LEDGER_ALLOCATOR %q", c.Allocator.Backend)
	}
	switch c.Audit.Backend {
	case AuditMemory:
	case AuditPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("LEDGER_AUDIT_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("invalid LEDGER_AUDIT_STORE %q", c.Audit.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
