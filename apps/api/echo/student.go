package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
)

// Student endpoints always act on the token-bound student; no client-supplied
// id is ever accepted.
type studentApi struct {
	svc *school.Service
}

func registerStudentAPI(g *echo.Group, bearer echo.MiddlewareFunc, svc *school.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", bearer, kindMiddleware(auth.KindStudent))
	sg.GET("/profile", api.getProfile)
	sg.GET("/school", api.getSchool)
	sg.GET("/class", api.getClass)
	sg.GET("/teacher", api.getTeacher)
}

type (
	StudentProfileResponse struct {
		ID      int      `json:"id"`
		Name    string   `json:"name"`
		Email   string   `json:"email"`
		ClassID null.Int `json:"class_id"`
	}

	StudentSchoolResponse struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	StudentClassResponse struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		SchoolID int    `json:"school_id"`
	}

	StudentTeacherResponse struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
)

func (api *studentApi) getProfile(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	std, err := api.svc.StudentProfile(prin.ID)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, StudentProfileResponse{
		ID:      std.ID,
		Name:    std.Name,
		Email:   std.Email,
		ClassID: std.SchoolClassID,
	})
}

func (api *studentApi) getSchool(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	sch, err := api.svc.StudentSchool(prin.ID)
	if err != nil {
		return errors.Wrap(err, "finding student school")
	}
	return ctx.JSON(http.StatusOK, StudentSchoolResponse{
		ID:    sch.ID,
		Name:  sch.Name,
		Email: sch.Email,
	})
}

func (api *studentApi) getClass(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	cls, err := api.svc.StudentClass(prin.ID)
	if err != nil {
		return errors.Wrap(err, "finding student class")
	}
	return ctx.JSON(http.StatusOK, StudentClassResponse{
		ID:       cls.ID,
		Name:     cls.Name,
		SchoolID: cls.SchoolID,
	})
}

func (api *studentApi) getTeacher(ctx echo.Context) error {
	prin, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	tch, err := api.svc.StudentTeacher(prin.ID)
	if err != nil {
		return errors.Wrap(err, "finding student teacher")
	}
	return ctx.JSON(http.StatusOK, StudentTeacherResponse{
		ID:    tch.ID,
		Name:  tch.Name,
		Email: tch.Email,
	})
}
