package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/predictarena/pushkit/pkg/pg"
)

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	duplicate := &pgconn.PgError{Code: "23505", ConstraintName: "send_log_claim_key"}

	assert.True(t, pg.IsDuplicateKeyError(duplicate))
	assert.True(t, pg.IsDuplicateKeyError(fmt.Errorf("claim: %w", duplicate)))
	assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsDuplicateKeyError(errors.New("unique constraint")))
	assert.False(t, pg.IsDuplicateKeyError(nil))
}

func TestIsForeignKeyViolationError(t *testing.T) {
	t.Parallel()

	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.True(t, pg.IsForeignKeyViolationError(fmt.Errorf("insert: %w", fk)))
	assert.False(t, pg.IsForeignKeyViolationError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsForeignKeyViolationError(nil))
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(fmt.Errorf("lookup: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(errors.New("no rows")))
	assert.False(t, pg.IsNotFoundError(nil))
}
