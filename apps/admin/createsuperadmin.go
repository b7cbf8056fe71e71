package main

import (
	"fmt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

func (cli *commandLine) createSuperAdmin(name, identifier, pwd string) error {
	sa := auth.SuperAdmin{
		Name:  core.CleanString(name),
		Email: core.CleanString(identifier),
	}
	if err := sa.SetPassword(pwd); err != nil {
		return err
	}

	sa, err := cli.idnRepo.CreateSuperAdmin(sa)
	if err != nil {
		return err
	}
	fmt.Printf("superadmin %q created (id=%d)\n", sa.Email, sa.ID)
	return nil
}
