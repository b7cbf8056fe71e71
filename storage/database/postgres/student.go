package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

type studentRow struct {
	ID            int       `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	PasswordHash  []byte    `db:"password_hash"`
	SchoolID      int       `db:"school_id"`
	SchoolClassID null.Int  `db:"school_class_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r studentRow) model() school.Student {
	return school.Student{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		SchoolID:      r.SchoolID,
		SchoolClassID: r.SchoolClassID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const studentColumns = `id, name, email, password_hash, school_id, school_class_id, created_at, updated_at`

func studentModels(rows []studentRow) []school.Student {
	res := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.model())
	}
	return res
}

func (repo *schoolRepository) CheckStudentEmailUniqueness(email string, excluded ...school.Student) error {
	excl := make([]int64, 0, len(excluded))
	for _, std := range excluded {
		excl = append(excl, int64(std.ID))
	}

	var exists bool
	err := repo.db.Get(&exists, `
		SELECT EXISTS (SELECT 1 FROM students WHERE email = $1 AND id <> ALL($2))
	`, email, pq.Array(excl))
	if err != nil {
		return errors.Wrap(err, "checking student email uniqueness")
	}
	if exists {
		return school.ErrStudentEmailExists
	}
	return nil
}

func (repo *schoolRepository) CreateStudent(std school.Student) (school.Student, error) {
	err := repo.db.QueryRow(`
		INSERT INTO students (name, email, password_hash, school_id, school_class_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, std.Name, std.Email, std.PasswordHash, std.SchoolID, std.SchoolClassID, std.CreatedAt, std.UpdatedAt).Scan(&std.ID)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo *schoolRepository) QueryStudentsBySchool(schoolID int) ([]school.Student, error) {
	var rows []studentRow
	err := repo.db.Select(&rows, `
		SELECT `+studentColumns+` FROM students WHERE school_id = $1 ORDER BY id
	`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return studentModels(rows), nil
}

func (repo *schoolRepository) QueryStudentsByClass(classID int) ([]school.Student, error) {
	var rows []studentRow
	err := repo.db.Select(&rows, `
		SELECT `+studentColumns+` FROM students WHERE school_class_id = $1 ORDER BY id
	`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}
	return studentModels(rows), nil
}

func (repo *schoolRepository) FilterStudentsByIDs(schoolID int, ids []int) ([]school.Student, error) {
	pks := make([]int64, 0, len(ids))
	for _, id := range ids {
		pks = append(pks, int64(id))
	}

	var rows []studentRow
	err := repo.db.Select(&rows, `
		SELECT `+studentColumns+` FROM students WHERE school_id = $1 AND id = ANY($2) ORDER BY id
	`, schoolID, pq.Array(pks))
	if err != nil {
		return nil, errors.Wrap(err, "filtering students by ids")
	}
	return studentModels(rows), nil
}

func (repo *schoolRepository) GetStudentByID(schoolID, id int) (school.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, `
		SELECT `+studentColumns+` FROM students WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Student{}, school.ErrStudentNotFound
		}
		return school.Student{}, errors.Wrap(err, "getting student")
	}
	return row.model(), nil
}

func (repo *schoolRepository) GetStudent(id int) (school.Student, error) {
	var row studentRow
	err := repo.db.Get(&row, `
		SELECT `+studentColumns+` FROM students WHERE id = $1
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Student{}, school.ErrStudentNotFound
		}
		return school.Student{}, errors.Wrap(err, "getting student")
	}
	return row.model(), nil
}

func (repo *schoolRepository) UpdateStudent(std school.Student) (school.Student, error) {
	res, err := repo.db.Exec(`
		UPDATE students
		SET name = $1, email = $2, password_hash = $3, school_class_id = $4, updated_at = $5
		WHERE id = $6 AND school_id = $7
	`, std.Name, std.Email, std.PasswordHash, std.SchoolClassID, std.UpdatedAt, std.ID, std.SchoolID)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Student{}, school.ErrStudentNotFound
	}
	return std, nil
}

func (repo *schoolRepository) DeleteStudent(schoolID, id int) error {
	res, err := repo.db.Exec(`DELETE FROM students WHERE id = $1 AND school_id = $2`, id, schoolID)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrStudentNotFound
	}
	return nil
}

// AssignStudentsToClass runs as one batch statement; per-row partial failure
// is not a thing here.
func (repo *schoolRepository) AssignStudentsToClass(classID int, studentIDs []int) error {
	pks := make([]int64, 0, len(studentIDs))
	for _, id := range studentIDs {
		pks = append(pks, int64(id))
	}

	_, err := repo.db.Exec(`
		UPDATE students SET school_class_id = $1, updated_at = now() WHERE id = ANY($2)
	`, classID, pq.Array(pks))
	return errors.Wrap(err, "assigning students to class")
}
