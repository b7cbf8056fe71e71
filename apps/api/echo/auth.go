package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

var contextPrincipalKey = "principal"

var errNoPrincipalInCtx = errors.New("principal not found in echo.Context")

// bearerAuthMiddleware resolves the `Authorization: Bearer <token>` header to
// the authenticated Principal and stores it in the request context. Any
// malformed, unknown or revoked token is rejected the same way.
func bearerAuthMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				return errMissingToken
			}

			prin, err := svc.ResolveToken(raw)
			if err != nil {
				if errors.Cause(err) == auth.ErrInvalidToken {
					return errTokenInvalid
				}
				return errors.Wrap(err, "resolving token")
			}

			ctx.Set(contextPrincipalKey, prin)
			return next(ctx)
		}
	}
}

// kindMiddleware only lets principals of the given kind through. Everyone else
// gets the same opaque Unauthorized.
func kindMiddleware(kind auth.Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			prin, err := getContextPrincipal(ctx)
			if err != nil {
				return errHttpForbidden
			}
			if prin.Kind != kind {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func getContextPrincipal(ctx echo.Context) (auth.Principal, error) {
	if prin, ok := ctx.Get(contextPrincipalKey).(auth.Principal); ok {
		return prin, nil
	}
	return auth.Principal{}, errNoPrincipalInCtx
}

// Login endpoints

type authApi struct {
	svc      *auth.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, svc *auth.Service, validate *validator.Validate) {
	api := authApi{svc: svc, validate: validate}

	// TODO: rate limit login endpoints
	g.POST("/superadmin/login", api.login(auth.KindSuperAdmin))
	g.POST("/schools/login", api.login(auth.KindSchool))
	g.POST("/teachers/login", api.login(auth.KindTeacher))
	g.POST("/students/login", api.login(auth.KindStudent))
}

func (api *authApi) login(kind auth.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data LoginRequest
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to LoginRequest")
		}
		if err := data.Validate(api.validate); err != nil {
			return err
		}

		prin, err := api.svc.Authenticate(kind, data.Email, data.Password)
		if err != nil {
			if errors.Cause(err) == auth.ErrInvalidCredentials {
				return errInvalidCredentials
			}
			return errors.Wrap(err, "authenticating")
		}

		token, err := api.svc.IssueToken(prin, "api")
		if err != nil {
			return errors.Wrap(err, "issuing token")
		}

		return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Principal: prin})
	}
}

type (
	// LoginRequest carries the credentials for any principal kind; superadmin
	// identifiers are free-form strings posted in the email field.
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token     string         `json:"token"`
		Principal auth.Principal `json:"principal"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email)
	return validate.Struct(lr)
}
