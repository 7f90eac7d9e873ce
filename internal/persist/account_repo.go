package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tibiaserver/server/internal/login"
)

// AccountRow is one row of the accounts table.
type AccountRow struct {
	Name         string
	PasswordHash string
	Banned       bool
	GM           bool
	TestGod      bool
	PremiumUntil int64
	CreatedAt    time.Time
	LastLoginIP  string
	LastLoginAt  *time.Time
}

// AccountRepo implements login.AccountLookup against Postgres, grounded on
// the donor's AccountRepo (Load/Create/ValidatePassword shape, same bcrypt
// usage) but narrowed to the fields this protocol's accounts table and
// login.AccountLookup interface actually need — the donor's access-level/
// character-slot/ip-host columns belong to a different login model and had
// no caller here.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo wraps db as a login.AccountLookup implementation.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) load(ctx context.Context, name string) (*AccountRow, error) {
	row := &AccountRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, password_hash, banned, gm, test_god, premium_until, created_at, last_login_ip, last_login_at
		 FROM accounts WHERE name = $1`, name,
	).Scan(
		&row.Name, &row.PasswordHash, &row.Banned, &row.GM, &row.TestGod,
		&row.PremiumUntil, &row.CreatedAt, &row.LastLoginIP, &row.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Authenticate implements login.AccountLookup.
func (r *AccountRepo) Authenticate(account, password string) (bool, bool, bool, bool, error) {
	ctx := context.Background()
	row, err := r.load(ctx, account)
	if err != nil {
		return false, false, false, false, err
	}
	if row == nil || !r.validatePassword(row.PasswordHash, password) {
		return false, false, false, false, nil
	}
	premium := row.PremiumUntil > time.Now().Unix()
	_, _ = r.db.Pool.Exec(ctx, `UPDATE accounts SET last_login_at = now() WHERE name = $1`, account)
	return true, premium, row.GM, row.TestGod, nil
}

// IsBanned implements login.AccountLookup.
func (r *AccountRepo) IsBanned(account string) (bool, error) {
	row, err := r.load(context.Background(), account)
	if err != nil {
		return false, err
	}
	return row != nil && row.Banned, nil
}

// Characters implements login.AccountLookup, grounded on the donor's
// CharacterRepo.LoadByAccount query shape.
func (r *AccountRepo) Characters(account string) ([]login.CharacterSummary, error) {
	rows, err := r.db.Pool.Query(context.Background(),
		`SELECT name FROM characters WHERE account = $1 ORDER BY name`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []login.CharacterSummary
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, login.CharacterSummary{Name: name})
	}
	return out, rows.Err()
}

// AutoCreate implements login.AccountLookup, gated by LoginConfig.AutoCreateAccounts.
func (r *AccountRepo) AutoCreate(account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(context.Background(),
		`INSERT INTO accounts (name, password_hash) VALUES ($1, $2)`,
		account, string(hash),
	)
	return err
}

func (r *AccountRepo) validatePassword(hash, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
}
