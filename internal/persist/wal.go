package persist

import (
	"context"
	"fmt"
)

// AdminActionEntry is one durable audit-log row for a GM command.
type AdminActionEntry struct {
	Actor  string
	Action string
	Detail string
}

// AdminActionRepo is a durable audit ledger for GM commands (teleport,
// kick, restart, shutdown), grounded on the donor's WALRepo shape
// (batch-insert-in-one-transaction, separate mark-processed sweep) but
// retargeted from an economic trade/shop/auction ledger — this domain's
// Trade state lives entirely in worldstate and needs no WAL for
// consistency — to an admin-command audit trail, which does need a
// durable, append-only record independent of in-memory world state.
type AdminActionRepo struct {
	db *DB
}

// NewAdminActionRepo wraps db as an admin-action audit ledger.
func NewAdminActionRepo(db *DB) *AdminActionRepo {
	return &AdminActionRepo{db: db}
}

// WriteBatch atomically writes a batch of admin-action entries.
func (r *AdminActionRepo) WriteBatch(ctx context.Context, entries []AdminActionEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("admin_actions begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO admin_actions (actor, action, detail) VALUES ($1, $2, $3)`,
			e.Actor, e.Action, e.Detail,
		); err != nil {
			return fmt.Errorf("admin_actions insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// MarkProcessed marks all unprocessed entries as processed, called after a
// batch has been mirrored to wherever operators read the audit trail.
func (r *AdminActionRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE admin_actions SET processed = TRUE WHERE processed = FALSE`,
	)
	return err
}
