package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
)

type tokenRow struct {
	ID          int64     `db:"id"`
	Kind        string    `db:"kind"`
	PrincipalID int       `db:"principal_id"`
	Name        string    `db:"name"`
	Digest      string    `db:"digest"`
	CreatedAt   time.Time `db:"created_at"`
}

type tokenRepository struct {
	db *sqlx.DB
}

var _ auth.TokenRepository = (*tokenRepository)(nil)

func NewTokenRepository(db *sqlx.DB) *tokenRepository {
	return &tokenRepository{db: db}
}

func (repo *tokenRepository) CreateToken(tok auth.Token) (auth.Token, error) {
	err := repo.db.QueryRow(`
		INSERT INTO auth_tokens (kind, principal_id, name, digest, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, string(tok.Kind), tok.PrincipalID, tok.Name, tok.Digest, tok.CreatedAt).Scan(&tok.ID)
	if err != nil {
		return auth.Token{}, errors.Wrap(err, "creating token")
	}
	return tok, nil
}

func (repo *tokenRepository) GetTokenByID(id int64) (auth.Token, error) {
	var row tokenRow
	err := repo.db.Get(&row, `
		SELECT id, kind, principal_id, name, digest, created_at
		FROM auth_tokens
		WHERE id = $1
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return auth.Token{}, auth.ErrInvalidToken
		}
		return auth.Token{}, errors.Wrap(err, "getting token")
	}
	return auth.Token{
		ID:          row.ID,
		Kind:        auth.Kind(row.Kind),
		PrincipalID: row.PrincipalID,
		Name:        row.Name,
		Digest:      row.Digest,
		CreatedAt:   row.CreatedAt,
	}, nil
}

func (repo *tokenRepository) DeleteToken(id int64) error {
	_, err := repo.db.Exec(`DELETE FROM auth_tokens WHERE id = $1`, id)
	return errors.Wrap(err, "deleting token")
}

func (repo *tokenRepository) DeletePrincipalTokens(kind auth.Kind, principalID int) error {
	_, err := repo.db.Exec(
		`DELETE FROM auth_tokens WHERE kind = $1 AND principal_id = $2`,
		string(kind), principalID,
	)
	return errors.Wrap(err, "deleting principal tokens")
}
