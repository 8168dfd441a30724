package cli

import (
	"github.com/spf13/cobra"
)

func newCreateCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new empty LOCAL account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runCreate(cmd)
		},
	}
}

func (a *App) runCreate(cmd *cobra.Command) error {
	account := a.repo.Create(cmd.Context())
	if err := a.saveError(); err != nil {
		return err
	}

	a.io.Println("✓ Account created")
	a.io.Printf("ID: %s\n", account.ID)
	a.io.Println()
	a.io.Printf("Run 'accountkeeper update %s --login <login> --prompt-password' to fill it in.\n", account.ID)
	return nil
}
