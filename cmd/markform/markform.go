package main

import (
	"fmt"
	"os"

	"github.com/jlevy/markform/internal/markform/cli"
)

func main() {
	if err := cli.NewDefaultMarkformCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
