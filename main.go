package main

import (
	"fmt"
	"os"

	"github.com/lost-woods/variates/src/cli"
)

func main() {
	if err := cli.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
