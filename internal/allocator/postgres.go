package allocator

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/lib/pq" // registers the postgres driver
)

// DefaultSequence is the sequence name used when none is configured.
const DefaultSequence = "chronoledger_ids"

var sequenceName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Postgres allocates identifiers from a PostgreSQL sequence. nextval is
// non-transactional, so an identifier drawn by a failed operation is skipped,
// which matches the allocator contract.
type Postgres struct {
	db       *sql.DB
	sequence string
}

// NewPostgres constructs a sequence-backed allocator.
func NewPostgres(db *sql.DB, sequence string) (*Postgres, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if sequence == "" {
		sequence = DefaultSequence
	}
	if !sequenceName.MatchString(sequence) {
		return nil, fmt.Errorf("invalid sequence name %q", sequence)
	}
	return &Postgres{db: db, sequence: sequence}, nil
}

// EnsureSequence creates the backing sequence if it does not exist.
func (p *Postgres) EnsureSequence(ctx context.Context) error {
	// The name is validated in NewPostgres; identifiers cannot be bound as parameters.
	query := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH 1 INCREMENT BY 1 MINVALUE 1", p.sequence)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create sequence %s: %w", p.sequence, err)
	}
	return nil
}

func (p *Postgres) Next(ctx context.Context) (uint64, error) {
	var v int64
	if err := p.db.QueryRowContext(ctx, "SELECT nextval($1)", p.sequence).Scan(&v); err != nil {
		return 0, fmt.Errorf("nextval %s: %w", p.sequence, err)
	}
	return uint64(v), nil
}
