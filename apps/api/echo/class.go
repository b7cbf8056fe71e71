package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
)

type classApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerClassAPI(
	g *echo.Group,
	bearer echo.MiddlewareFunc,
	svc *school.Service,
	validate *validator.Validate,
) {
	api := classApi{svc: svc, validate: validate}

	cg := g.Group("/schools/classes", bearer, kindMiddleware(auth.KindSchool))
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:class_id", api.retrieve)
	cg.PUT("/:class_id", api.update)
	cg.DELETE("/:class_id", api.destroy)
	cg.POST("/:class_id/assign-teacher", api.assignTeacher)
	cg.POST("/:class_id/assign-students", api.assignStudents)
}

func (api *classApi) query(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	classes, err := api.svc.QueryClasses(prin.SchoolScope())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []school.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) create(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data school.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(prin.SchoolScope(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Class created successfully",
		"class":   cls,
	})
}

// retrieve returns the class with its assigned teacher and roster.
func (api *classApi) retrieve(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "class_id")
	if err != nil {
		return school.ErrClassNotFound
	}
	detail, err := api.svc.GetClassDetail(prin.SchoolScope(), id)
	if err != nil {
		return errors.Wrap(err, "finding class by ID")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *classApi) update(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "class_id")
	if err != nil {
		return school.ErrClassNotFound
	}
	orig, err := api.svc.GetClass(prin.SchoolScope(), id)
	if err != nil {
		return errors.Wrap(err, "finding class by ID")
	}

	var data school.UpdateClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err = data.Validate(orig, api.validate); err != nil {
		return err
	}

	cls, err := api.svc.UpdateClass(orig, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Class updated successfully",
		"class":   cls,
	})
}

func (api *classApi) destroy(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "class_id")
	if err != nil {
		return school.ErrClassNotFound
	}
	if err = api.svc.DeleteClass(prin.SchoolScope(), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}

	return ctx.JSON(http.StatusOK, echo.Map{"message": "Class deleted successfully"})
}

func (api *classApi) assignTeacher(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "class_id")
	if err != nil {
		return school.ErrClassNotFound
	}

	var data school.AssignTeacher
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignTeacher")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.AssignTeacher(prin.SchoolScope(), id, data)
	if err != nil {
		return errors.Wrap(err, "assigning teacher")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Teacher assigned successfully",
		"class":   cls,
	})
}

func (api *classApi) assignStudents(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	id, err := intParam(ctx, "class_id")
	if err != nil {
		return school.ErrClassNotFound
	}

	var data school.AssignStudents
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignStudents")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	detail, err := api.svc.AssignStudents(prin.SchoolScope(), id, data)
	if err != nil {
		return errors.Wrap(err, "assigning students")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Students assigned successfully",
		"class":   detail,
	})
}
