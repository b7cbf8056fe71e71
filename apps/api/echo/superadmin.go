package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
)

type superAdminApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSuperAdminAPI(
	g *echo.Group,
	bearer echo.MiddlewareFunc,
	svc *school.Service,
	validate *validator.Validate,
) {
	api := superAdminApi{svc: svc, validate: validate}

	sg := g.Group("/superadmin", bearer, kindMiddleware(auth.KindSuperAdmin))
	sg.POST("/schools", api.createSchool)
	sg.POST("/schools/:school_id/students", api.createStudent)
}

func (api *superAdminApi) createSchool(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	sch, err := api.svc.CreateSchool(data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "School created successfully",
		"school":  sch,
	})
}

func (api *superAdminApi) createStudent(ctx echo.Context) error {
	schoolID, err := intParam(ctx, "school_id")
	if err != nil {
		return school.ErrSchoolNotFound
	}
	if _, err = api.svc.GetSchool(schoolID); err != nil {
		return errors.Wrap(err, "finding school by ID")
	}

	var data school.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.CreateStudent(schoolID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "Student created successfully",
		"student": std,
	})
}

func intParam(ctx echo.Context, name string) (int, error) {
	return strconv.Atoi(ctx.Param(name))
}
