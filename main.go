package main

import (
	"os"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/cmd"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
