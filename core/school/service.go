package school

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

var (
	// lookup misses; a row under a foreign school is indistinguishable from a
	// row that does not exist (I4)
	ErrSchoolNotFound  = core.NewNotFoundError("School not found")
	ErrTeacherNotFound = core.NewNotFoundError("Teacher not found")
	ErrStudentNotFound = core.NewNotFoundError("Student not found")
	ErrClassNotFound   = core.NewNotFoundError("Class not found")
	ErrNoClassAssigned = core.NewNotFoundError("No class assigned to this teacher")

	// uniqueness violations, scoped per principal kind (I2)
	ErrSchoolEmailExists  = errors.New("a school with this email already exists")
	ErrTeacherEmailExists = errors.New("a teacher with this email already exists")
	ErrStudentEmailExists = errors.New("a student with this email already exists")

	// reference violations on assignment
	errTeacherInvalid  = "the selected teacher_id is invalid"
	errStudentsInvalid = "the selected student_ids are invalid"
)

type (
	// Repository is the ownership-scoped data access contract. Methods taking a
	// schoolID intersect every lookup/mutation with `school_id = schoolID`.
	Repository interface {
		// schools
		CheckSchoolEmailUniqueness(email string, excluded ...School) error
		CreateSchool(sch School) (School, error)
		GetSchoolByID(id int) (School, error)
		UpdateSchool(sch School) (School, error)

		// teachers
		CheckTeacherEmailUniqueness(email string, excluded ...Teacher) error
		CreateTeacher(tch Teacher) (Teacher, error)
		QueryTeachersBySchool(schoolID int) ([]Teacher, error)
		GetTeacherByID(schoolID, id int) (Teacher, error)
		UpdateTeacher(tch Teacher) (Teacher, error)
		// DeleteTeacher detaches the teacher from their class (teacher_id set to null).
		DeleteTeacher(schoolID, id int) error

		// students
		CheckStudentEmailUniqueness(email string, excluded ...Student) error
		CreateStudent(std Student) (Student, error)
		QueryStudentsBySchool(schoolID int) ([]Student, error)
		QueryStudentsByClass(classID int) ([]Student, error)
		// FilterStudentsByIDs returns the subset of ids that exist under schoolID.
		FilterStudentsByIDs(schoolID int, ids []int) ([]Student, error)
		GetStudentByID(schoolID, id int) (Student, error)
		// GetStudent is unscoped; only ever called with a token-bound id.
		GetStudent(id int) (Student, error)
		UpdateStudent(std Student) (Student, error)
		DeleteStudent(schoolID, id int) error
		// AssignStudentsToClass bulk-sets school_class_id on all given students
		// as a single batch statement.
		AssignStudentsToClass(classID int, studentIDs []int) error

		// classes
		CreateClass(cls Class) (Class, error)
		QueryClassesBySchool(schoolID int) ([]Class, error)
		GetClassByID(schoolID, id int) (Class, error)
		GetClassByTeacher(teacherID int) (Class, error)
		UpdateClass(cls Class) (Class, error)
		// DeleteClass detaches its students (school_class_id set to null).
		DeleteClass(schoolID, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Uniqueness checks, exposed for input validation.

func (svc *Service) CheckSchoolUniqueness(email string, excluded ...School) error {
	if err := svc.repo.CheckSchoolEmailUniqueness(email, excluded...); err != nil {
		return asEmailFieldError(err, ErrSchoolEmailExists)
	}
	return nil
}

func (svc *Service) CheckTeacherUniqueness(email string, excluded ...Teacher) error {
	if err := svc.repo.CheckTeacherEmailUniqueness(email, excluded...); err != nil {
		return asEmailFieldError(err, ErrTeacherEmailExists)
	}
	return nil
}

func (svc *Service) CheckStudentUniqueness(email string, excluded ...Student) error {
	if err := svc.repo.CheckStudentEmailUniqueness(email, excluded...); err != nil {
		return asEmailFieldError(err, ErrStudentEmailExists)
	}
	return nil
}

func asEmailFieldError(err, sentinel error) error {
	if err == sentinel {
		return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return err
}

// Schools

func (svc *Service) CreateSchool(ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		Name:      ns.Name,
		Email:     ns.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sch.SetPassword(ns.Password); err != nil {
		return School{}, err
	}
	return svc.repo.CreateSchool(sch)
}

func (svc *Service) GetSchool(id int) (School, error) {
	return svc.repo.GetSchoolByID(id)
}

func (svc *Service) UpdateProfile(orig School, up UpdateSchoolProfile) (School, error) {
	orig.Name = up.Name
	orig.Email = up.Email
	if up.ProfileDetails != nil {
		orig.ProfileDetails = null.StringFrom(*up.ProfileDetails)
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(orig)
}

// Teachers

func (svc *Service) CreateTeacher(schoolID int, nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	tch := Teacher{
		Name:      nt.Name,
		Email:     nt.Email,
		SchoolID:  schoolID, // always the acting school, whatever the payload said
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tch.SetPassword(nt.Password); err != nil {
		return Teacher{}, err
	}
	return svc.repo.CreateTeacher(tch)
}

func (svc *Service) QueryTeachers(schoolID int) ([]Teacher, error) {
	return svc.repo.QueryTeachersBySchool(schoolID)
}

func (svc *Service) GetTeacher(schoolID, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(schoolID, id)
}

func (svc *Service) UpdateTeacher(orig Teacher, ut UpdateTeacher) (Teacher, error) {
	orig.Name = ut.Name
	orig.Email = ut.Email
	if ut.Password != "" {
		if err := orig.SetPassword(ut.Password); err != nil {
			return Teacher{}, err
		}
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(orig)
}

func (svc *Service) DeleteTeacher(schoolID, id int) error {
	return svc.repo.DeleteTeacher(schoolID, id)
}

// Students

func (svc *Service) CreateStudent(schoolID int, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		Name:      ns.Name,
		Email:     ns.Email,
		SchoolID:  schoolID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(std)
}

func (svc *Service) QueryStudents(schoolID int) ([]Student, error) {
	return svc.repo.QueryStudentsBySchool(schoolID)
}

func (svc *Service) GetStudent(schoolID, id int) (Student, error) {
	return svc.repo.GetStudentByID(schoolID, id)
}

func (svc *Service) UpdateStudent(orig Student, us UpdateStudent) (Student, error) {
	orig.Name = us.Name
	orig.Email = us.Email
	if us.Password != "" {
		if err := orig.SetPassword(us.Password); err != nil {
			return Student{}, err
		}
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(orig)
}

func (svc *Service) DeleteStudent(schoolID, id int) error {
	return svc.repo.DeleteStudent(schoolID, id)
}

// Classes

func (svc *Service) CreateClass(schoolID int, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	return svc.repo.CreateClass(Class{
		Name:      nc.Name,
		SchoolID:  schoolID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryClasses(schoolID int) ([]Class, error) {
	return svc.repo.QueryClassesBySchool(schoolID)
}

func (svc *Service) GetClass(schoolID, id int) (Class, error) {
	return svc.repo.GetClassByID(schoolID, id)
}

// GetClassDetail returns the class with its assigned teacher and roster.
func (svc *Service) GetClassDetail(schoolID, id int) (ClassDetail, error) {
	cls, err := svc.repo.GetClassByID(schoolID, id)
	if err != nil {
		return ClassDetail{}, err
	}
	return svc.classDetail(cls)
}

func (svc *Service) UpdateClass(orig Class, uc UpdateClass) (Class, error) {
	orig.Name = uc.Name
	if uc.TeacherID != nil {
		tch, err := svc.repo.GetTeacherByID(orig.SchoolID, *uc.TeacherID)
		if err != nil {
			if core.IsNotFound(err) {
				return Class{}, invalidTeacherErr()
			}
			return Class{}, err
		}
		orig.TeacherID = null.IntFrom(tch.ID)
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(orig)
}

func (svc *Service) DeleteClass(schoolID, id int) error {
	return svc.repo.DeleteClass(schoolID, id)
}

// AssignTeacher puts a teacher in charge of a class. The teacher must belong to
// the same school as the class; a foreign teacher id fails with the same message
// as a non-existent one.
func (svc *Service) AssignTeacher(schoolID, classID int, at AssignTeacher) (Class, error) {
	cls, err := svc.repo.GetClassByID(schoolID, classID)
	if err != nil {
		return Class{}, err
	}

	tch, err := svc.repo.GetTeacherByID(schoolID, at.TeacherID)
	if err != nil {
		if core.IsNotFound(err) {
			return Class{}, invalidTeacherErr()
		}
		return Class{}, err
	}

	cls.TeacherID = null.IntFrom(tch.ID)
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(cls)
}

// AssignStudents moves students into a class in bulk. Validation is
// all-or-nothing: every id must belong to the acting school, then the update
// runs as a single batch. Returns the class with its recomputed roster.
func (svc *Service) AssignStudents(schoolID, classID int, as AssignStudents) (ClassDetail, error) {
	cls, err := svc.repo.GetClassByID(schoolID, classID)
	if err != nil {
		return ClassDetail{}, err
	}

	ids := dedupeIDs(as.StudentIDs)
	matched, err := svc.repo.FilterStudentsByIDs(schoolID, ids)
	if err != nil {
		return ClassDetail{}, err
	}
	if len(matched) != len(ids) {
		return ClassDetail{}, core.NewValidationError(
			errors.New(errStudentsInvalid),
			core.FieldError{Field: "student_ids", Error: errStudentsInvalid},
		)
	}

	if err = svc.repo.AssignStudentsToClass(cls.ID, ids); err != nil {
		return ClassDetail{}, err
	}
	return svc.classDetail(cls)
}

// Teacher self-service

// TeacherClass returns the class the teacher is in charge of, if any.
func (svc *Service) TeacherClass(teacherID int) (Class, error) {
	cls, err := svc.repo.GetClassByTeacher(teacherID)
	if err != nil {
		if core.IsNotFound(err) {
			return Class{}, ErrNoClassAssigned
		}
		return Class{}, err
	}
	return cls, nil
}

func (svc *Service) TeacherClassStudents(teacherID int) ([]Student, error) {
	cls, err := svc.TeacherClass(teacherID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentsByClass(cls.ID)
}

// Student self-service. All lookups start from the token-bound student id;
// no client-supplied id is ever accepted, and each hop of the
// student -> class -> teacher chain handles its own miss.

func (svc *Service) StudentProfile(studentID int) (Student, error) {
	return svc.repo.GetStudent(studentID)
}

func (svc *Service) StudentSchool(studentID int) (School, error) {
	std, err := svc.repo.GetStudent(studentID)
	if err != nil {
		return School{}, err
	}
	return svc.repo.GetSchoolByID(std.SchoolID)
}

func (svc *Service) StudentClass(studentID int) (Class, error) {
	std, err := svc.repo.GetStudent(studentID)
	if err != nil {
		return Class{}, err
	}
	if !std.SchoolClassID.Valid {
		return Class{}, ErrClassNotFound
	}
	return svc.repo.GetClassByID(std.SchoolID, int(std.SchoolClassID.Int))
}

func (svc *Service) StudentTeacher(studentID int) (Teacher, error) {
	cls, err := svc.StudentClass(studentID)
	if err != nil {
		if core.IsNotFound(err) {
			return Teacher{}, ErrTeacherNotFound
		}
		return Teacher{}, err
	}
	if !cls.TeacherID.Valid {
		return Teacher{}, ErrTeacherNotFound
	}
	return svc.repo.GetTeacherByID(cls.SchoolID, int(cls.TeacherID.Int))
}

func (svc *Service) classDetail(cls Class) (ClassDetail, error) {
	detail := ClassDetail{Class: cls}

	if cls.TeacherID.Valid {
		tch, err := svc.repo.GetTeacherByID(cls.SchoolID, int(cls.TeacherID.Int))
		switch {
		case err == nil:
			detail.Teacher = &tch
		case !core.IsNotFound(err):
			return ClassDetail{}, err
		}
	}

	students, err := svc.repo.QueryStudentsByClass(cls.ID)
	if err != nil {
		return ClassDetail{}, err
	}
	if students == nil {
		students = []Student{}
	}
	detail.Students = students
	return detail, nil
}

func invalidTeacherErr() error {
	return core.NewValidationError(
		errors.New(errTeacherInvalid),
		core.FieldError{Field: "teacher_id", Error: errTeacherInvalid},
	)
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
