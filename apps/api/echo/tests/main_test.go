package tests

import (
	"fmt"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/storage/database/inmem"
)

const testPassword = "s3cret!"

// superAdminStore is the slice of the identity repository the fixtures need.
type superAdminStore interface {
	auth.IdentityRepository
	CreateSuperAdmin(sa auth.SuperAdmin) (auth.SuperAdmin, error)
}

var (
	memDB     *inmem.DB
	idnRepo   superAdminStore
	authSvc   *auth.Service
	schoolSvc *school.Service
	app       echoapi.Server

	errMissingToken = httpErr{Error: "missing or malformed token"}
	errInvalidToken = httpErr{Error: "invalid token"}
	errForbidden    = httpErr{Error: "Unauthorized"}
)

// testLogger satisfies core.Logger; nothing to report during tests.
type testLogger struct{}

func (testLogger) Enable(bool) {}

func (testLogger) Debug(string, ...interface{}) {}

func (testLogger) Info(string, ...interface{}) {}

func (testLogger) Warn(string, ...interface{}) {}

func (testLogger) Error(msg string, _ ...interface{}) { fmt.Println("ERROR :", msg) }
func (testLogger) Fatal(msg string, _ ...interface{}) { fmt.Println("FATAL :", msg) }

func TestMain(m *testing.M) {
	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret-key",
	}

	// set up DB & repos
	memDB = inmem.NewDB()
	idnRepo = inmem.NewIdentityRepository(memDB)
	tokRepo := inmem.NewTokenRepository(memDB)
	schRepo := inmem.NewSchoolRepository(memDB)

	// set up services
	authSvc = auth.NewService(idnRepo, tokRepo, conf)
	schoolSvc = school.NewService(schRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     testLogger{},
			AuthSvc:    authSvc,
			SchoolSvc:  schoolSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	os.Exit(m.Run())
}

func resetDB(t *testing.T) {
	t.Helper()
	memDB.Reset()
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
