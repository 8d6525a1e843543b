package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/masomo-admin/core"
)

var isTerminalFunc = term.IsTerminal // mockable

// token prints a token for the given principal. Only the bare token is printed when stdout is piped.
func (cli *commandLine) token(subject, name string, ttl time.Duration) error {
	token, err := cli.issuer.Generate(core.Principal{ID: subject, Name: name}, ttl)
	if err != nil {
		return err
	}
	if isTerminalFunc(int(os.Stdout.Fd())) {
		fmt.Fprintf(cli.out, "Token for %q:\n%s\n", subject, token)
		return nil
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
