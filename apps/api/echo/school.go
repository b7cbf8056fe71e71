package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(
	g *echo.Group,
	bearer echo.MiddlewareFunc,
	svc *school.Service,
	validate *validator.Validate,
) {
	api := schoolApi{svc: svc, validate: validate}

	sg := g.Group("/school", bearer, kindMiddleware(auth.KindSchool))

	sg.GET("/profile", api.getProfile)
	sg.PUT("/profile", api.updateProfile)

	sg.GET("/teachers", api.queryTeachers)
	sg.POST("/teachers", api.createTeacher)
	sg.PUT("/teachers/:teacher_id", api.updateTeacher)
	sg.DELETE("/teachers/:teacher_id", api.destroyTeacher)

	sg.GET("/students", api.queryStudents)
	sg.POST("/students", api.createStudent)
	sg.GET("/students/:student_id", api.retrieveStudent)
	sg.PUT("/students/:student_id", api.updateStudent)
	sg.DELETE("/students/:student_id", api.destroyStudent)
}

// Profile

func (api *schoolApi) getProfile(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	sch, err := api.svc.GetSchool(prin.SchoolScope())
	if err != nil {
		return errors.Wrap(err, "finding school by ID")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) updateProfile(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetSchool(prin.SchoolScope())
	if err != nil {
		return errors.Wrap(err, "finding school by ID")
	}

	var data school.UpdateSchoolProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchoolProfile")
	}
	if err = data.Validate(orig, api.validate, api.svc); err != nil {
		return err
	}

	sch, err := api.svc.UpdateProfile(orig, data)
	if err != nil {
		return errors.Wrap(err, "updating school profile")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"school":  sch,
	})
}

// Teachers

func (api *schoolApi) queryTeachers(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	teachers, err := api.svc.QueryTeachers(prin.SchoolScope())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []school.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *schoolApi) createTeacher(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data school.NewTeacher
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err = data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	tch, err := api.svc.CreateTeacher(prin.SchoolScope(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Teacher created successfully",
		"teacher": tch,
	})
}

func (api *schoolApi) updateTeacher(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "teacher_id")
	if err != nil {
		return school.ErrTeacherNotFound
	}
	orig, err := api.svc.GetTeacher(prin.SchoolScope(), id)
	if err != nil {
		return errors.Wrap(err, "finding teacher by ID")
	}

	var data school.UpdateTeacher
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err = data.Validate(orig, api.validate, api.svc); err != nil {
		return err
	}

	tch, err := api.svc.UpdateTeacher(orig, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Teacher updated successfully",
		"teacher": tch,
	})
}

func (api *schoolApi) destroyTeacher(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "teacher_id")
	if err != nil {
		return school.ErrTeacherNotFound
	}
	if err = api.svc.DeleteTeacher(prin.SchoolScope(), id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}

	return ctx.JSON(http.StatusOK, echo.Map{"message": "Teacher deleted successfully"})
}

// Students

func (api *schoolApi) queryStudents(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	students, err := api.svc.QueryStudents(prin.SchoolScope())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) createStudent(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data school.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.CreateStudent(prin.SchoolScope(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Student created successfully",
		"student": std,
	})
}

func (api *schoolApi) retrieveStudent(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "student_id")
	if err != nil {
		return school.ErrStudentNotFound
	}
	std, err := api.svc.GetStudent(prin.SchoolScope(), id)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *schoolApi) updateStudent(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "student_id")
	if err != nil {
		return school.ErrStudentNotFound
	}
	orig, err := api.svc.GetStudent(prin.SchoolScope(), id)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}

	var data school.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(orig, api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.UpdateStudent(orig, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Student updated successfully",
		"student": std,
	})
}

func (api *schoolApi) destroyStudent(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "student_id")
	if err != nil {
		return school.ErrStudentNotFound
	}
	if err = api.svc.DeleteStudent(prin.SchoolScope(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}

	return ctx.JSON(http.StatusOK, echo.Map{"message": "Student deleted successfully"})
}
