package cli

import (
	"github.com/spf13/cobra"

	"github.com/iudanet/accountkeeper/internal/client/iocli"
)

func newVersionCommand(console iocli.IO, build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipApp": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			console.Println("accountkeeper")
			console.Printf("Version:    %s\n", build.Version)
			console.Printf("Build Date: %s\n", build.BuildDate)
			console.Printf("Git Commit: %s\n", build.GitCommit)
		},
	}
}
