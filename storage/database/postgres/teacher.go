package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

type teacherRow struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	SchoolID     int       `db:"school_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r teacherRow) model() school.Teacher {
	return school.Teacher{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		SchoolID:     r.SchoolID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const teacherColumns = `id, name, email, password_hash, school_id, created_at, updated_at`

func (repo *schoolRepository) CheckTeacherEmailUniqueness(email string, excluded ...school.Teacher) error {
	excl := make([]int64, 0, len(excluded))
	for _, tch := range excluded {
		excl = append(excl, int64(tch.ID))
	}

	var exists bool
	err := repo.db.Get(&exists, `
		SELECT EXISTS (SELECT 1 FROM teachers WHERE email = $1 AND id <> ALL($2))
	`, email, pq.Array(excl))
	if err != nil {
		return errors.Wrap(err, "checking teacher email uniqueness")
	}
	if exists {
		return school.ErrTeacherEmailExists
	}
	return nil
}

func (repo *schoolRepository) CreateTeacher(tch school.Teacher) (school.Teacher, error) {
	err := repo.db.QueryRow(`
		INSERT INTO teachers (name, email, password_hash, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, tch.Name, tch.Email, tch.PasswordHash, tch.SchoolID, tch.CreatedAt, tch.UpdatedAt).Scan(&tch.ID)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return tch, nil
}

func (repo *schoolRepository) QueryTeachersBySchool(schoolID int) ([]school.Teacher, error) {
	var rows []teacherRow
	err := repo.db.Select(&rows, `
		SELECT `+teacherColumns+` FROM teachers WHERE school_id = $1 ORDER BY id
	`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}

	res := make([]school.Teacher, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.model())
	}
	return res, nil
}

func (repo *schoolRepository) GetTeacherByID(schoolID, id int) (school.Teacher, error) {
	var row teacherRow
	err := repo.db.Get(&row, `
		SELECT `+teacherColumns+` FROM teachers WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Teacher{}, school.ErrTeacherNotFound
		}
		return school.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return row.model(), nil
}

func (repo *schoolRepository) UpdateTeacher(tch school.Teacher) (school.Teacher, error) {
	res, err := repo.db.Exec(`
		UPDATE teachers
		SET name = $1, email = $2, password_hash = $3, updated_at = $4
		WHERE id = $5 AND school_id = $6
	`, tch.Name, tch.Email, tch.PasswordHash, tch.UpdatedAt, tch.ID, tch.SchoolID)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Teacher{}, school.ErrTeacherNotFound
	}
	return tch, nil
}

func (repo *schoolRepository) DeleteTeacher(schoolID, id int) error {
	// FK on school_classes.teacher_id is ON DELETE SET NULL; the class survives
	res, err := repo.db.Exec(`DELETE FROM teachers WHERE id = $1 AND school_id = $2`, id, schoolID)
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrTeacherNotFound
	}
	return nil
}
