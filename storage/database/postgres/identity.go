// Package postgres implements the auth and school repositories over sqlx.
// Every school-scoped query carries an explicit `school_id = $n` predicate;
// ownership is enforced in SQL, not in the callers.
package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
)

// identityTables maps a principal kind to its backing table.
var identityTables = map[auth.Kind]string{
	auth.KindSuperAdmin: "super_admins",
	auth.KindSchool:     "schools",
	auth.KindTeacher:    "teachers",
	auth.KindStudent:    "students",
}

type identityRow struct {
	ID           int           `db:"id"`
	Name         string        `db:"name"`
	Email        string        `db:"email"`
	PasswordHash []byte        `db:"password_hash"`
	SchoolID     sql.NullInt64 `db:"school_id"`
}

func (r identityRow) identity() auth.Identity {
	return auth.Identity{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		SchoolID:     int(r.SchoolID.Int64),
	}
}

type identityRepository struct {
	db *sqlx.DB
}

var _ auth.IdentityRepository = (*identityRepository)(nil)

func NewIdentityRepository(db *sqlx.DB) *identityRepository {
	return &identityRepository{db: db}
}

func (repo *identityRepository) GetIdentityByEmail(kind auth.Kind, email string) (auth.Identity, error) {
	return repo.get(kind, "email", email)
}

func (repo *identityRepository) GetIdentityByID(kind auth.Kind, id int) (auth.Identity, error) {
	return repo.get(kind, "id", id)
}

func (repo *identityRepository) get(kind auth.Kind, column string, val interface{}) (auth.Identity, error) {
	table, ok := identityTables[kind]
	if !ok {
		return auth.Identity{}, auth.ErrIdentityNotFound
	}

	schoolID := "NULL AS school_id"
	if kind == auth.KindTeacher || kind == auth.KindStudent {
		schoolID = "school_id"
	}

	var row identityRow
	err := repo.db.Get(
		&row,
		`SELECT id, name, email, password_hash, `+schoolID+` FROM `+table+` WHERE `+column+` = $1`,
		val,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return auth.Identity{}, auth.ErrIdentityNotFound
		}
		return auth.Identity{}, errors.Wrap(err, "getting identity")
	}
	return row.identity(), nil
}

// CreateSuperAdmin inserts a superadmin record; bootstrap/seed path only.
func (repo *identityRepository) CreateSuperAdmin(sa auth.SuperAdmin) (auth.SuperAdmin, error) {
	now := time.Now().UTC()
	if sa.CreatedAt.IsZero() {
		sa.CreatedAt = now
		sa.UpdatedAt = now
	}
	err := repo.db.QueryRow(`
		INSERT INTO super_admins (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, sa.Name, sa.Email, sa.PasswordHash, sa.CreatedAt, sa.UpdatedAt).Scan(&sa.ID)
	if err != nil {
		return auth.SuperAdmin{}, errors.Wrap(err, "creating super admin")
	}
	return sa, nil
}

// UpdateIdentityPassword swaps the stored digest of any principal kind;
// admin CLI path only.
func (repo *identityRepository) UpdateIdentityPassword(kind auth.Kind, id int, hash []byte) error {
	table, ok := identityTables[kind]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	res, err := repo.db.Exec(`UPDATE `+table+` SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}
