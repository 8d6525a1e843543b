package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-admin/core/auth"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *sqlx.DB
	issuer *auth.Issuer
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                 - run a goose command (up, down, status, version, ...)")
	fmt.Fprintln(cli.out, "  token -subject ID [-name NAME] [-ttl]  - issue an API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenSubject := tokenCmd.String("subject", "", "The ID of the principal the token is issued to.")
	tokenName := tokenCmd.String("name", "", "The display name of the principal.")
	tokenTTL := tokenCmd.Duration("ttl", 0, "How long the token is valid (defaults to the configured JWT expiration delta).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenSubject == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSubject, *tokenName, *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}
