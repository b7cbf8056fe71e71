package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core/auth"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                        - run a goose migration command (up, down, status, ...)")
	fmt.Println("  createsuperadmin -name NAME -identifier ID    - create a superadmin; the password is prompted next")
	fmt.Println("  resetpassword -kind KIND -identifier ID       - reset a principal's password and revoke its tokens")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createSuperAdminCmd := flag.NewFlagSet("createsuperadmin", flag.ExitOnError)
	createSuperAdminName := createSuperAdminCmd.String("name", "", "The superadmin's display name.")
	createSuperAdminIdentifier := createSuperAdminCmd.String("identifier", "", "The superadmin's login identifier. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordKind := resetPasswordCmd.String("kind", "", "The principal kind: superadmin, school, teacher or student.")
	resetPasswordIdentifier := resetPasswordCmd.String("identifier", "", "The principal's login identifier. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2], args[3:]...)
	case "createsuperadmin":
		if err := createSuperAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createSuperAdminName == "" || *createSuperAdminIdentifier == "" {
			createSuperAdminCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(createSuperAdminCmd)
		if err != nil {
			return err
		}
		return cli.createSuperAdmin(*createSuperAdminName, *createSuperAdminIdentifier, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		kind := auth.Kind(*resetPasswordKind)
		if !kind.Valid() || *resetPasswordIdentifier == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(kind, *resetPasswordIdentifier, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
