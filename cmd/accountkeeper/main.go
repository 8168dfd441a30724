package main

import (
	"log/slog"
	"os"

	"github.com/iudanet/accountkeeper/internal/client/cli"
	"github.com/iudanet/accountkeeper/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	root, closeApp := cli.NewRootCommand(iocli.NewStdio(), cli.BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	})

	err := root.Execute()

	if closeErr := closeApp(); closeErr != nil {
		slog.Error("failed to close database", "error", closeErr)
		if err == nil {
			err = closeErr
		}
	}

	if err != nil {
		// Cobra уже напечатал ошибку
		os.Exit(1)
	}
}
