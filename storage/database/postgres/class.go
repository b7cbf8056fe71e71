package postgres

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

type classRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	SchoolID  int       `db:"school_id"`
	TeacherID null.Int  `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r classRow) model() school.Class {
	return school.Class{
		ID:        r.ID,
		Name:      r.Name,
		SchoolID:  r.SchoolID,
		TeacherID: r.TeacherID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const classColumns = `id, name, school_id, teacher_id, created_at, updated_at`

func (repo *schoolRepository) CreateClass(cls school.Class) (school.Class, error) {
	err := repo.db.QueryRow(`
		INSERT INTO school_classes (name, school_id, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, cls.Name, cls.SchoolID, cls.TeacherID, cls.CreatedAt, cls.UpdatedAt).Scan(&cls.ID)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (repo *schoolRepository) QueryClassesBySchool(schoolID int) ([]school.Class, error) {
	var rows []classRow
	err := repo.db.Select(&rows, `
		SELECT `+classColumns+` FROM school_classes WHERE school_id = $1 ORDER BY id
	`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}

	res := make([]school.Class, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.model())
	}
	return res, nil
}

func (repo *schoolRepository) GetClassByID(schoolID, id int) (school.Class, error) {
	var row classRow
	err := repo.db.Get(&row, `
		SELECT `+classColumns+` FROM school_classes WHERE id = $1 AND school_id = $2
	`, id, schoolID)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, errors.Wrap(err, "getting class")
	}
	return row.model(), nil
}

func (repo *schoolRepository) GetClassByTeacher(teacherID int) (school.Class, error) {
	var row classRow
	err := repo.db.Get(&row, `
		SELECT `+classColumns+` FROM school_classes WHERE teacher_id = $1 ORDER BY id LIMIT 1
	`, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, errors.Wrap(err, "getting class by teacher")
	}
	return row.model(), nil
}

func (repo *schoolRepository) UpdateClass(cls school.Class) (school.Class, error) {
	res, err := repo.db.Exec(`
		UPDATE school_classes
		SET name = $1, teacher_id = $2, updated_at = $3
		WHERE id = $4 AND school_id = $5
	`, cls.Name, cls.TeacherID, cls.UpdatedAt, cls.ID, cls.SchoolID)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Class{}, school.ErrClassNotFound
	}
	return cls, nil
}

func (repo *schoolRepository) DeleteClass(schoolID, id int) error {
	// FK on students.school_class_id is ON DELETE SET NULL; students survive
	// their class
	res, err := repo.db.Exec(`DELETE FROM school_classes WHERE id = $1 AND school_id = $2`, id, schoolID)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ErrClassNotFound
	}
	return nil
}
