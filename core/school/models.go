package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// School is the tenant: it owns its teachers, students and classes.
type School struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	PasswordHash   []byte      `json:"-"`
	ProfileDetails null.String `json:"profile_details"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

func (s *School) SetPassword(pwd string) error {
	hash, err := hashPassword(pwd)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

// Teacher belongs to exactly one school and may be assigned at most one class.
type Teacher struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	SchoolID     int       `json:"school_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := hashPassword(pwd)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

// Student belongs to exactly one school; class membership is optional.
type Student struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  []byte    `json:"-"`
	SchoolID      int       `json:"school_id"`
	SchoolClassID null.Int  `json:"school_class_id"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := hashPassword(pwd)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

// Class belongs to exactly one school; the assigned teacher is optional and
// must belong to the same school.
type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	SchoolID  int       `json:"school_id"`
	TeacherID null.Int  `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// ClassDetail is a class with its assigned teacher and current roster.
type ClassDetail struct {
	Class
	Teacher  *Teacher  `json:"teacher"`
	Students []Student `json:"students"`
}

func hashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

// NewSchool contains information needed to register a new School.
type NewSchool struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

func (ns *NewSchool) Validate(v *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := v.Struct(ns); err != nil {
		return err
	}
	return svc.CheckSchoolUniqueness(ns.Email)
}

// UpdateSchoolProfile defines what a school may change on its own record.
// Omitted fields retain their current value.
type UpdateSchoolProfile struct {
	Name           string  `json:"name" validate:"omitempty,max=255"`
	Email          string  `json:"email" validate:"omitempty,email,max=255"`
	ProfileDetails *string `json:"profile_details" validate:"omitempty,max=1000"`
}

func (up *UpdateSchoolProfile) Validate(orig School, v *validator.Validate, svc *Service) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	if email := core.CleanString(up.Email, true /* lower */); email != "" {
		up.Email = email
	} else {
		up.Email = orig.Email
	}

	if err := v.Struct(up); err != nil {
		return err
	}
	return svc.CheckSchoolUniqueness(up.Email, orig)
}

// NewTeacher contains information needed to add a teacher to a school.
// The owning school always comes from the authenticated principal, never the payload.
type NewTeacher struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

func (nt *NewTeacher) Validate(v *validator.Validate, svc *Service) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := v.Struct(nt); err != nil {
		return err
	}
	return svc.CheckTeacherUniqueness(nt.Email)
}

// UpdateTeacher defines what may be changed on an existing teacher.
// A new password, when provided, is re-hashed; otherwise the digest is untouched.
type UpdateTeacher struct {
	Name     string `json:"name" validate:"omitempty,max=255"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, v *validator.Validate, svc *Service) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	if email := core.CleanString(ut.Email, true /* lower */); email != "" {
		ut.Email = email
	} else {
		ut.Email = orig.Email
	}

	if err := v.Struct(ut); err != nil {
		return err
	}
	return svc.CheckTeacherUniqueness(ut.Email, orig)
}

// NewStudent contains information needed to enroll a student in a school.
type NewStudent struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

func (ns *NewStudent) Validate(v *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := v.Struct(ns); err != nil {
		return err
	}
	return svc.CheckStudentUniqueness(ns.Email)
}

// UpdateStudent defines what may be changed on an existing student.
type UpdateStudent struct {
	Name     string `json:"name" validate:"omitempty,max=255"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (us *UpdateStudent) Validate(orig Student, v *validator.Validate, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}

	if err := v.Struct(us); err != nil {
		return err
	}
	return svc.CheckStudentUniqueness(us.Email, orig)
}

// NewClass contains information needed to open a class in a school.
type NewClass struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (nc *NewClass) Validate(v *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return v.Struct(nc)
}

// UpdateClass defines what may be changed on an existing class.
// TeacherID, when provided, must reference a teacher of the same school.
type UpdateClass struct {
	Name      string `json:"name" validate:"omitempty,max=255"`
	TeacherID *int   `json:"teacher_id" validate:"omitempty"`
}

func (uc *UpdateClass) Validate(orig Class, v *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	return v.Struct(uc)
}

// AssignTeacher is the payload for putting a teacher in charge of a class.
type AssignTeacher struct {
	TeacherID int `json:"teacher_id" validate:"required"`
}

func (at *AssignTeacher) Validate(v *validator.Validate) error {
	return v.Struct(at)
}

// AssignStudents is the payload for moving students into a class in bulk.
type AssignStudents struct {
	StudentIDs []int `json:"student_ids" validate:"required,min=1,dive,gt=0"`
}

func (as *AssignStudents) Validate(v *validator.Validate) error {
	return v.Struct(as)
}
