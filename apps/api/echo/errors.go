package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

var (
	errMissingToken       = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed token")
	errTokenInvalid       = echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "Unauthorized")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string][]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = append(fldErrs[vErr.Field()], vErr.Translate(translator))
			}
			code = http.StatusUnprocessableEntity
			message = echo.Map{"errors": fldErrs}
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string][]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = append(fldErrs[fErr.Field], fErr.Error)
				}
				message = echo.Map{"errors": fldErrs}
			} else {
				message = origErr.Error()
			}
			code = http.StatusUnprocessableEntity
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = echo.Map{"message": origErr.Error()}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var prin auth.Principal
			if p, pErr := getContextPrincipal(ctx); pErr == nil {
				prin = p
			}
			logger.Error(msg, errors.Wrap(err, msg), prin)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
