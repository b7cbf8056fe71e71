package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/postgres"
)

var logger *log.Logger

// identityStore is the slice of the postgres identity repository the CLI needs.
type identityStore interface {
	auth.IdentityRepository
	CreateSuperAdmin(sa auth.SuperAdmin) (auth.SuperAdmin, error)
	UpdateIdentityPassword(kind auth.Kind, id int, hash []byte) error
}

type commandLine struct {
	conf    *core.Config
	db      *sqlx.DB
	idnRepo identityStore
	authSvc *auth.Service
}

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	idnRepo := postgres.NewIdentityRepository(db)

	// start CLI
	cli := commandLine{
		conf:    conf,
		db:      db,
		idnRepo: idnRepo,
		authSvc: auth.NewService(idnRepo, postgres.NewTokenRepository(db), conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
