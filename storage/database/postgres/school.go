package postgres

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

type schoolRow struct {
	ID             int         `db:"id"`
	Name           string      `db:"name"`
	Email          string      `db:"email"`
	PasswordHash   []byte      `db:"password_hash"`
	ProfileDetails null.String `db:"profile_details"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r schoolRow) model() school.School {
	return school.School{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		ProfileDetails: r.ProfileDetails,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CheckSchoolEmailUniqueness(email string, excluded ...school.School) error {
	excl := make([]int64, 0, len(excluded))
	for _, sch := range excluded {
		excl = append(excl, int64(sch.ID))
	}

	var exists bool
	err := repo.db.Get(&exists, `
		SELECT EXISTS (SELECT 1 FROM schools WHERE email = $1 AND id <> ALL($2))
	`, email, pq.Array(excl))
	if err != nil {
		return errors.Wrap(err, "checking school email uniqueness")
	}
	if exists {
		return school.ErrSchoolEmailExists
	}
	return nil
}

func (repo *schoolRepository) CreateSchool(sch school.School) (school.School, error) {
	err := repo.db.QueryRow(`
		INSERT INTO schools (name, email, password_hash, profile_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, sch.Name, sch.Email, sch.PasswordHash, sch.ProfileDetails, sch.CreatedAt, sch.UpdatedAt).Scan(&sch.ID)
	if err != nil {
		return school.School{}, errors.Wrap(err, "creating school")
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchoolByID(id int) (school.School, error) {
	var row schoolRow
	err := repo.db.Get(&row, `
		SELECT id, name, email, password_hash, profile_details, created_at, updated_at
		FROM schools
		WHERE id = $1
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.School{}, school.ErrSchoolNotFound
		}
		return school.School{}, errors.Wrap(err, "getting school")
	}
	return row.model(), nil
}

func (repo *schoolRepository) UpdateSchool(sch school.School) (school.School, error) {
	res, err := repo.db.Exec(`
		UPDATE schools
		SET name = $1, email = $2, password_hash = $3, profile_details = $4, updated_at = $5
		WHERE id = $6
	`, sch.Name, sch.Email, sch.PasswordHash, sch.ProfileDetails, sch.UpdatedAt, sch.ID)
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.School{}, school.ErrSchoolNotFound
	}
	return sch, nil
}
