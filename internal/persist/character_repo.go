package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tibiaserver/server/internal/model"
)

var errCharacterNotFound = errors.New("persist: character not found")

// CharacterRepo implements session.CharacterStore against Postgres,
// storing a character's full model.Player as a single JSONB column rather
// than the donor's CharacterRepo's ~20 narrow per-concern methods
// (bookmarks, known spells, map times, char config, position) — this
// domain's Player is one flat struct (internal/model/player.go), so one
// load/save pair round-trips it whole instead of assembling it from many
// tables, a genuine simplification the donor's normalized-row schema
// didn't have the option of making.
type CharacterRepo struct {
	db *DB
}

// NewCharacterRepo wraps db as a session.CharacterStore implementation.
func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// LoadCharacter implements session.CharacterStore.
func (r *CharacterRepo) LoadCharacter(name string) (*model.Player, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(context.Background(),
		`SELECT data FROM characters WHERE name = $1`, name,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: load character %q: %w", name, err)
	}
	var p model.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("persist: decode character %q: %w", name, err)
	}
	return &p, nil
}

// SaveCharacter implements session.CharacterStore.
func (r *CharacterRepo) SaveCharacter(p *model.Player) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("persist: encode character %q: %w", p.Name, err)
	}
	_, err = r.db.Pool.Exec(context.Background(),
		`UPDATE characters SET data = $2, updated_at = now() WHERE name = $1`,
		p.Name, raw,
	)
	return err
}

// CreateCharacter inserts a brand-new character row under account,
// grounded on the donor's CharacterRepo.Create insert shape.
func (r *CharacterRepo) CreateCharacter(account string, p *model.Player) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("persist: encode new character %q: %w", p.Name, err)
	}
	_, err = r.db.Pool.Exec(context.Background(),
		`INSERT INTO characters (name, account, data) VALUES ($1, $2, $3)`,
		p.Name, account, raw,
	)
	return err
}

// NameExists reports whether a character name is already taken.
func (r *CharacterRepo) NameExists(name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM characters WHERE name = $1)`, name,
	).Scan(&exists)
	return exists, err
}
