// Command masomoctl reads and edits the academics resources of a Masomo API.
package main

import (
	"fmt"
	"os"

	"github.com/trezcool/masomo-admin/core"
)

func main() {
	if err := newRootCmd(os.Stdout, core.NewConfig).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
