package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
)

type teacherApi struct {
	svc *school.Service
}

func registerTeacherAPI(g *echo.Group, bearer echo.MiddlewareFunc, svc *school.Service) {
	api := teacherApi{svc: svc}

	tg := g.Group("/teachers", bearer, kindMiddleware(auth.KindTeacher))
	tg.GET("/class", api.getClass)
	tg.GET("/class/students", api.getClassStudents)
}

func (api *teacherApi) getClass(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	cls, err := api.svc.TeacherClass(prin.ID)
	if err != nil {
		return errors.Wrap(err, "finding class by teacher")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *teacherApi) getClassStudents(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	students, err := api.svc.TeacherClassStudents(prin.ID)
	if err != nil {
		return errors.Wrap(err, "querying class students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}
