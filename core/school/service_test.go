package school_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/storage/database/inmem"
)

func newTestService(t *testing.T) *school.Service {
	t.Helper()
	return school.NewService(inmem.NewSchoolRepository(inmem.NewDB()))
}

func createSchool(t *testing.T, svc *school.Service, name, email string) school.School {
	t.Helper()
	sch, err := svc.CreateSchool(school.NewSchool{Name: name, Email: email, Password: "s3cret!"})
	require.NoError(t, err)
	return sch
}

func createTeacher(t *testing.T, svc *school.Service, schoolID int, name, email string) school.Teacher {
	t.Helper()
	tch, err := svc.CreateTeacher(schoolID, school.NewTeacher{Name: name, Email: email, Password: "s3cret!"})
	require.NoError(t, err)
	return tch
}

func createStudent(t *testing.T, svc *school.Service, schoolID int, name, email string) school.Student {
	t.Helper()
	std, err := svc.CreateStudent(schoolID, school.NewStudent{Name: name, Email: email, Password: "s3cret!"})
	require.NoError(t, err)
	return std
}

func createClass(t *testing.T, svc *school.Service, schoolID int, name string) school.Class {
	t.Helper()
	cls, err := svc.CreateClass(schoolID, school.NewClass{Name: name})
	require.NoError(t, err)
	return cls
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError; got %T (%v)", err, err)
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func Test_Service_ownershipScoping(t *testing.T) {
	svc := newTestService(t)
	sch1 := createSchool(t, svc, "Green Hills", "green@hills.cd")
	sch2 := createSchool(t, svc, "Blue Lake", "blue@lake.cd")

	tch := createTeacher(t, svc, sch1.ID, "Mr. Kalala", "kalala@hills.cd")
	std := createStudent(t, svc, sch1.ID, "Amani", "amani@hills.cd")
	cls := createClass(t, svc, sch1.ID, "6th Grade")

	// the owner sees its rows
	if _, err := svc.GetTeacher(sch1.ID, tch.ID); err != nil {
		t.Errorf("GetTeacher(own): %v", err)
	}
	if _, err := svc.GetStudent(sch1.ID, std.ID); err != nil {
		t.Errorf("GetStudent(own): %v", err)
	}
	if _, err := svc.GetClass(sch1.ID, cls.ID); err != nil {
		t.Errorf("GetClass(own): %v", err)
	}

	// a foreign school gets the very same miss as a non-existent row
	_, err := svc.GetTeacher(sch2.ID, tch.ID)
	assert.Equal(t, school.ErrTeacherNotFound, err)
	_, err = svc.GetStudent(sch2.ID, std.ID)
	assert.Equal(t, school.ErrStudentNotFound, err)
	_, err = svc.GetClass(sch2.ID, cls.ID)
	assert.Equal(t, school.ErrClassNotFound, err)

	// foreign mutations miss too
	assert.Equal(t, school.ErrTeacherNotFound, svc.DeleteTeacher(sch2.ID, tch.ID))
	assert.Equal(t, school.ErrStudentNotFound, svc.DeleteStudent(sch2.ID, std.ID))
	assert.Equal(t, school.ErrClassNotFound, svc.DeleteClass(sch2.ID, cls.ID))

	// listings never leak across tenants
	teachers, err := svc.QueryTeachers(sch2.ID)
	require.NoError(t, err)
	assert.Empty(t, teachers)
	students, err := svc.QueryStudents(sch2.ID)
	require.NoError(t, err)
	assert.Empty(t, students)
	classes, err := svc.QueryClasses(sch2.ID)
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func Test_Service_createStampsOwner(t *testing.T) {
	svc := newTestService(t)
	sch := createSchool(t, svc, "Green Hills", "green@hills.cd")

	tch := createTeacher(t, svc, sch.ID, "Mr. Kalala", "kalala@hills.cd")
	std := createStudent(t, svc, sch.ID, "Amani", "amani@hills.cd")
	cls := createClass(t, svc, sch.ID, "6th Grade")

	assert.Equal(t, sch.ID, tch.SchoolID)
	assert.Equal(t, sch.ID, std.SchoolID)
	assert.Equal(t, sch.ID, cls.SchoolID)
}

func Test_Service_emailUniquenessPerKind(t *testing.T) {
	svc := newTestService(t)
	sch := createSchool(t, svc, "Green Hills", "green@hills.cd")

	// the same address may exist once per kind
	tch := createTeacher(t, svc, sch.ID, "Mr. Kalala", "shared@hills.cd")
	std := createStudent(t, svc, sch.ID, "Amani", "shared@hills.cd")

	// but never twice within a kind, even across schools
	flds := fieldErrors(t, svc.CheckTeacherUniqueness("shared@hills.cd"))
	assert.Contains(t, flds, "email")
	flds = fieldErrors(t, svc.CheckStudentUniqueness("shared@hills.cd"))
	assert.Contains(t, flds, "email")
	flds = fieldErrors(t, svc.CheckSchoolUniqueness("green@hills.cd"))
	assert.Contains(t, flds, "email")

	// updates exclude the row itself
	assert.NoError(t, svc.CheckTeacherUniqueness(tch.Email, tch))
	assert.NoError(t, svc.CheckStudentUniqueness(std.Email, std))
	assert.NoError(t, svc.CheckSchoolUniqueness(sch.Email, sch))
}

func Test_Service_AssignTeacher(t *testing.T) {
	svc := newTestService(t)
	sch1 := createSchool(t, svc, "Green Hills", "green@hills.cd")
	sch2 := createSchool(t, svc, "Blue Lake", "blue@lake.cd")

	tch := createTeacher(t, svc, sch1.ID, "Mr. Kalala", "kalala@hills.cd")
	foreign := createTeacher(t, svc, sch2.ID, "Mrs. Mbuyi", "mbuyi@lake.cd")
	cls := createClass(t, svc, sch1.ID, "6th Grade")

	t.Run("ok", func(t *testing.T) {
		got, err := svc.AssignTeacher(sch1.ID, cls.ID, school.AssignTeacher{TeacherID: tch.ID})
		require.NoError(t, err)
		assert.Equal(t, tch.ID, int(got.TeacherID.Int))
	})

	t.Run("missing class", func(t *testing.T) {
		_, err := svc.AssignTeacher(sch1.ID, 999, school.AssignTeacher{TeacherID: tch.ID})
		assert.Equal(t, school.ErrClassNotFound, err)
	})

	// a foreign teacher fails exactly like a non-existent one
	t.Run("foreign teacher", func(t *testing.T) {
		_, err := svc.AssignTeacher(sch1.ID, cls.ID, school.AssignTeacher{TeacherID: foreign.ID})
		flds := fieldErrors(t, err)
		assert.Equal(t, "the selected teacher_id is invalid", flds["teacher_id"])
	})
	t.Run("unknown teacher", func(t *testing.T) {
		_, err := svc.AssignTeacher(sch1.ID, cls.ID, school.AssignTeacher{TeacherID: 999})
		flds := fieldErrors(t, err)
		assert.Equal(t, "the selected teacher_id is invalid", flds["teacher_id"])
	})
}

func Test_Service_AssignStudents(t *testing.T) {
	svc := newTestService(t)
	sch1 := createSchool(t, svc, "Green Hills", "green@hills.cd")
	sch2 := createSchool(t, svc, "Blue Lake", "blue@lake.cd")

	std1 := createStudent(t, svc, sch1.ID, "Amani", "amani@hills.cd")
	std2 := createStudent(t, svc, sch1.ID, "Bahati", "bahati@hills.cd")
	foreign := createStudent(t, svc, sch2.ID, "Chiku", "chiku@lake.cd")
	cls := createClass(t, svc, sch1.ID, "6th Grade")

	t.Run("ok", func(t *testing.T) {
		detail, err := svc.AssignStudents(sch1.ID, cls.ID, school.AssignStudents{StudentIDs: []int{std1.ID, std2.ID}})
		require.NoError(t, err)
		assert.Len(t, detail.Students, 2)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		detail, err := svc.AssignStudents(sch1.ID, cls.ID, school.AssignStudents{StudentIDs: []int{std1.ID, std1.ID}})
		require.NoError(t, err)
		assert.Len(t, detail.Students, 2) // std2 kept its earlier assignment
	})

	// all-or-nothing: one bad id rejects the whole batch
	t.Run("foreign student rejects batch", func(t *testing.T) {
		_, err := svc.AssignStudents(sch1.ID, cls.ID, school.AssignStudents{StudentIDs: []int{std1.ID, foreign.ID}})
		flds := fieldErrors(t, err)
		assert.Equal(t, "the selected student_ids are invalid", flds["student_ids"])

		// and the foreign row was not touched
		got, err := svc.GetStudent(sch2.ID, foreign.ID)
		require.NoError(t, err)
		assert.False(t, got.SchoolClassID.Valid)
	})

	t.Run("missing class", func(t *testing.T) {
		_, err := svc.AssignStudents(sch1.ID, 999, school.AssignStudents{StudentIDs: []int{std1.ID}})
		assert.Equal(t, school.ErrClassNotFound, err)
	})
}

func Test_Service_cascadeNullOnDelete(t *testing.T) {
	svc := newTestService(t)
	sch := createSchool(t, svc, "Green Hills", "green@hills.cd")

	tch := createTeacher(t, svc, sch.ID, "Mr. Kalala", "kalala@hills.cd")
	std := createStudent(t, svc, sch.ID, "Amani", "amani@hills.cd")
	cls := createClass(t, svc, sch.ID, "6th Grade")

	_, err := svc.AssignTeacher(sch.ID, cls.ID, school.AssignTeacher{TeacherID: tch.ID})
	require.NoError(t, err)
	_, err = svc.AssignStudents(sch.ID, cls.ID, school.AssignStudents{StudentIDs: []int{std.ID}})
	require.NoError(t, err)

	t.Run("deleting the teacher detaches the class", func(t *testing.T) {
		require.NoError(t, svc.DeleteTeacher(sch.ID, tch.ID))

		got, err := svc.GetClass(sch.ID, cls.ID)
		require.NoError(t, err)
		assert.False(t, got.TeacherID.Valid)
	})

	t.Run("deleting the class detaches its students", func(t *testing.T) {
		require.NoError(t, svc.DeleteClass(sch.ID, cls.ID))

		got, err := svc.GetStudent(sch.ID, std.ID)
		require.NoError(t, err)
		assert.False(t, got.SchoolClassID.Valid)
	})
}

func Test_Service_teacherSelfService(t *testing.T) {
	svc := newTestService(t)
	sch := createSchool(t, svc, "Green Hills", "green@hills.cd")
	tch := createTeacher(t, svc, sch.ID, "Mr. Kalala", "kalala@hills.cd")
	idle := createTeacher(t, svc, sch.ID, "Mrs. Mbuyi", "mbuyi@hills.cd")
	std := createStudent(t, svc, sch.ID, "Amani", "amani@hills.cd")
	cls := createClass(t, svc, sch.ID, "6th Grade")

	_, err := svc.AssignTeacher(sch.ID, cls.ID, school.AssignTeacher{TeacherID: tch.ID})
	require.NoError(t, err)
	_, err = svc.AssignStudents(sch.ID, cls.ID, school.AssignStudents{StudentIDs: []int{std.ID}})
	require.NoError(t, err)

	t.Run("assigned class", func(t *testing.T) {
		got, err := svc.TeacherClass(tch.ID)
		require.NoError(t, err)
		assert.Equal(t, cls.ID, got.ID)

		roster, err := svc.TeacherClassStudents(tch.ID)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, std.ID, roster[0].ID)
	})

	t.Run("no class assigned", func(t *testing.T) {
		_, err := svc.TeacherClass(idle.ID)
		assert.Equal(t, school.ErrNoClassAssigned, err)
		_, err = svc.TeacherClassStudents(idle.ID)
		assert.Equal(t, school.ErrNoClassAssigned, err)
	})
}

func Test_Service_teacherOnSeveralClasses(t *testing.T) {
	svc := newTestService(t)
	sch := createSchool(t, svc, "Green Hills", "green@hills.cd")
	tch := createTeacher(t, svc, sch.ID, "Mr. Kalala", "kalala@hills.cd")
	first := createClass(t, svc, sch.ID, "6th Grade")
	second := createClass(t, svc, sch.ID, "7th Grade")

	// a second assignment stacks; it does not detach the first class
	_, err := svc.AssignTeacher(sch.ID, first.ID, school.AssignTeacher{TeacherID: tch.ID})
	require.NoError(t, err)
	_, err = svc.AssignTeacher(sch.ID, second.ID, school.AssignTeacher{TeacherID: tch.ID})
	require.NoError(t, err)

	got1, err := svc.GetClass(sch.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, tch.ID, int(got1.TeacherID.Int))
	got2, err := svc.GetClass(sch.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, tch.ID, int(got2.TeacherID.Int))

	// the teacher view resolves to the lowest class id
	got, err := svc.TeacherClass(tch.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func Test_Service_studentSelfService(t *testing.T) {
	svc := newTestService(t)
	sch := createSchool(t, svc, "Green Hills", "green@hills.cd")
	tch := createTeacher(t, svc, sch.ID, "Mr. Kalala", "kalala@hills.cd")
	std := createStudent(t, svc, sch.ID, "Amani", "amani@hills.cd")
	loner := createStudent(t, svc, sch.ID, "Bahati", "bahati@hills.cd")
	cls := createClass(t, svc, sch.ID, "6th Grade")
	bare := createClass(t, svc, sch.ID, "7th Grade")

	_, err := svc.AssignTeacher(sch.ID, cls.ID, school.AssignTeacher{TeacherID: tch.ID})
	require.NoError(t, err)
	_, err = svc.AssignStudents(sch.ID, cls.ID, school.AssignStudents{StudentIDs: []int{std.ID}})
	require.NoError(t, err)

	t.Run("profile", func(t *testing.T) {
		got, err := svc.StudentProfile(std.ID)
		require.NoError(t, err)
		assert.Equal(t, std.Email, got.Email)
		assert.Equal(t, cls.ID, int(got.SchoolClassID.Int))
	})

	t.Run("school", func(t *testing.T) {
		got, err := svc.StudentSchool(std.ID)
		require.NoError(t, err)
		assert.Equal(t, sch.ID, got.ID)
	})

	t.Run("class and teacher", func(t *testing.T) {
		gotCls, err := svc.StudentClass(std.ID)
		require.NoError(t, err)
		assert.Equal(t, cls.ID, gotCls.ID)

		gotTch, err := svc.StudentTeacher(std.ID)
		require.NoError(t, err)
		assert.Equal(t, tch.ID, gotTch.ID)
	})

	// each hop of student -> class -> teacher misses on its own
	t.Run("unassigned student has no class and no teacher", func(t *testing.T) {
		_, err := svc.StudentClass(loner.ID)
		assert.Equal(t, school.ErrClassNotFound, err)
		_, err = svc.StudentTeacher(loner.ID)
		assert.Equal(t, school.ErrTeacherNotFound, err)
	})

	t.Run("class without teacher", func(t *testing.T) {
		_, err := svc.AssignStudents(sch.ID, bare.ID, school.AssignStudents{StudentIDs: []int{loner.ID}})
		require.NoError(t, err)

		_, err = svc.StudentClass(loner.ID)
		require.NoError(t, err)
		_, err = svc.StudentTeacher(loner.ID)
		assert.Equal(t, school.ErrTeacherNotFound, err)
	})
}

func Test_Service_updatePasswordRehashOnlyWhenProvided(t *testing.T) {
	svc := newTestService(t)
	sch := createSchool(t, svc, "Green Hills", "green@hills.cd")
	tch := createTeacher(t, svc, sch.ID, "Mr. Kalala", "kalala@hills.cd")

	t.Run("no password keeps the digest", func(t *testing.T) {
		got, err := svc.UpdateTeacher(tch, school.UpdateTeacher{Name: "Mr. K", Email: tch.Email})
		require.NoError(t, err)
		assert.Equal(t, tch.PasswordHash, got.PasswordHash)
		assert.Equal(t, "Mr. K", got.Name)
	})

	t.Run("new password swaps the digest", func(t *testing.T) {
		got, err := svc.UpdateTeacher(tch, school.UpdateTeacher{Name: tch.Name, Email: tch.Email, Password: "n3wpass"})
		require.NoError(t, err)
		assert.NotEqual(t, tch.PasswordHash, got.PasswordHash)
	})
}
