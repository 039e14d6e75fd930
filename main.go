package main

import (
	"os"

	"github.com/locvowork/xlfilecreator/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
