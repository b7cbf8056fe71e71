package main

import (
	"github.com/trezcool/darasa/storage/database"
)

var migrateRunFunc = database.RunMigrationCommand // mockable

func (cli *commandLine) migrate(command string, args ...string) error {
	return migrateRunFunc(cli.db, cli.conf, command, args...)
}
