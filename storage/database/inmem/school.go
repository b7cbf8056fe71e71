package inmem

import (
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// Schools

func (repo *schoolRepository) CheckSchoolEmailUniqueness(email string, excluded ...school.School) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sch := range repo.db.schools {
		if sch.Email == email && !schoolExcluded(*sch, excluded) {
			return school.ErrSchoolEmailExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateSchool(sch school.School) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sch.ID = repo.db.nextID()
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) GetSchoolByID(id int) (school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrSchoolNotFound
}

func (repo *schoolRepository) UpdateSchool(sch school.School) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.schools[sch.ID]; !ok {
		return school.School{}, school.ErrSchoolNotFound
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

// Teachers

func (repo *schoolRepository) CheckTeacherEmailUniqueness(email string, excluded ...school.Teacher) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, tch := range repo.db.teachers {
		if tch.Email == email && !teacherExcluded(*tch, excluded) {
			return school.ErrTeacherEmailExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateTeacher(tch school.Teacher) (school.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tch.ID = repo.db.nextID()
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *schoolRepository) QueryTeachersBySchool(schoolID int) ([]school.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]school.Teacher, 0)
	for _, tch := range repo.db.teachers {
		if tch.SchoolID == schoolID {
			res = append(res, *tch)
		}
	}
	sortByID(res, func(t school.Teacher) int { return t.ID })
	return res, nil
}

func (repo *schoolRepository) GetTeacherByID(schoolID, id int) (school.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok && tch.SchoolID == schoolID {
		return *tch, nil
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (repo *schoolRepository) UpdateTeacher(tch school.Teacher) (school.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if orig, ok := repo.db.teachers[tch.ID]; !ok || orig.SchoolID != tch.SchoolID {
		return school.Teacher{}, school.ErrTeacherNotFound
	}
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *schoolRepository) DeleteTeacher(schoolID, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tch, ok := repo.db.teachers[id]
	if !ok || tch.SchoolID != schoolID {
		return school.ErrTeacherNotFound
	}
	delete(repo.db.teachers, id)

	// detach from their class
	for _, cls := range repo.db.classes {
		if cls.TeacherID.Valid && int(cls.TeacherID.Int) == id {
			cls.TeacherID = null.Int{}
		}
	}
	return nil
}

// Students

func (repo *schoolRepository) CheckStudentEmailUniqueness(email string, excluded ...school.Student) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, std := range repo.db.students {
		if std.Email == email && !studentExcluded(*std, excluded) {
			return school.ErrStudentEmailExists
		}
	}
	return nil
}

func (repo *schoolRepository) CreateStudent(std school.Student) (school.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std.ID = repo.db.nextID()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *schoolRepository) QueryStudentsBySchool(schoolID int) ([]school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if std.SchoolID == schoolID {
			res = append(res, *std)
		}
	}
	sortByID(res, func(s school.Student) int { return s.ID })
	return res, nil
}

func (repo *schoolRepository) QueryStudentsByClass(classID int) ([]school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if std.SchoolClassID.Valid && int(std.SchoolClassID.Int) == classID {
			res = append(res, *std)
		}
	}
	sortByID(res, func(s school.Student) int { return s.ID })
	return res, nil
}

func (repo *schoolRepository) FilterStudentsByIDs(schoolID int, ids []int) ([]school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]school.Student, 0, len(ids))
	for _, id := range ids {
		if std, ok := repo.db.students[id]; ok && std.SchoolID == schoolID {
			res = append(res, *std)
		}
	}
	return res, nil
}

func (repo *schoolRepository) GetStudentByID(schoolID, id int) (school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if std, ok := repo.db.students[id]; ok && std.SchoolID == schoolID {
		return *std, nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) GetStudent(id int) (school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) UpdateStudent(std school.Student) (school.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if orig, ok := repo.db.students[std.ID]; !ok || orig.SchoolID != std.SchoolID {
		return school.Student{}, school.ErrStudentNotFound
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *schoolRepository) DeleteStudent(schoolID, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std, ok := repo.db.students[id]
	if !ok || std.SchoolID != schoolID {
		return school.ErrStudentNotFound
	}
	delete(repo.db.students, id)
	return nil
}

func (repo *schoolRepository) AssignStudentsToClass(classID int, studentIDs []int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// single critical section stands in for the single batch statement
	for _, id := range studentIDs {
		if std, ok := repo.db.students[id]; ok {
			std.SchoolClassID = null.IntFrom(classID)
		}
	}
	return nil
}

// Classes

func (repo *schoolRepository) CreateClass(cls school.Class) (school.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cls.ID = repo.db.nextID()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) QueryClassesBySchool(schoolID int) ([]school.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res := make([]school.Class, 0)
	for _, cls := range repo.db.classes {
		if cls.SchoolID == schoolID {
			res = append(res, *cls)
		}
	}
	sortByID(res, func(c school.Class) int { return c.ID })
	return res, nil
}

func (repo *schoolRepository) GetClassByID(schoolID, id int) (school.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cls, ok := repo.db.classes[id]; ok && cls.SchoolID == schoolID {
		return *cls, nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) GetClassByTeacher(teacherID int) (school.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	// lowest class id wins, same as the SQL `ORDER BY id LIMIT 1`
	var found *school.Class
	for _, cls := range repo.db.classes {
		if cls.TeacherID.Valid && int(cls.TeacherID.Int) == teacherID {
			if found == nil || cls.ID < found.ID {
				found = cls
			}
		}
	}
	if found == nil {
		return school.Class{}, school.ErrClassNotFound
	}
	return *found, nil
}

func (repo *schoolRepository) UpdateClass(cls school.Class) (school.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if orig, ok := repo.db.classes[cls.ID]; !ok || orig.SchoolID != cls.SchoolID {
		return school.Class{}, school.ErrClassNotFound
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) DeleteClass(schoolID, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cls, ok := repo.db.classes[id]
	if !ok || cls.SchoolID != schoolID {
		return school.ErrClassNotFound
	}
	delete(repo.db.classes, id)

	// detach students; their class is gone, not them
	for _, std := range repo.db.students {
		if std.SchoolClassID.Valid && int(std.SchoolClassID.Int) == id {
			std.SchoolClassID = null.Int{}
		}
	}
	return nil
}

// helpers

func sortByID[T any](s []T, id func(T) int) {
	sort.Slice(s, func(i, j int) bool { return id(s[i]) < id(s[j]) })
}

func schoolExcluded(sch school.School, excluded []school.School) bool {
	for _, ex := range excluded {
		if ex.ID == sch.ID {
			return true
		}
	}
	return false
}

func teacherExcluded(tch school.Teacher, excluded []school.Teacher) bool {
	for _, ex := range excluded {
		if ex.ID == tch.ID {
			return true
		}
	}
	return false
}

func studentExcluded(std school.Student, excluded []school.Student) bool {
	for _, ex := range excluded {
		if ex.ID == std.ID {
			return true
		}
	}
	return false
}
