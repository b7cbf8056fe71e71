package main

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

// resetPassword swaps a principal's password digest and kills all its live
// tokens so stolen ones die with the old password.
func (cli *commandLine) resetPassword(kind auth.Kind, identifier, pwd string) error {
	if kind == auth.KindSuperAdmin {
		identifier = core.CleanString(identifier)
	} else {
		identifier = core.CleanString(identifier, true /* lower */)
	}

	idn, err := cli.idnRepo.GetIdentityByEmail(kind, identifier)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err = cli.idnRepo.UpdateIdentityPassword(kind, idn.ID, hash); err != nil {
		return err
	}
	if err = cli.authSvc.RevokePrincipalTokens(kind, idn.ID); err != nil {
		return err
	}

	fmt.Printf("password reset for %s %q; all tokens revoked\n", kind, identifier)
	return nil
}
