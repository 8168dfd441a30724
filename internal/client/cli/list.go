package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runList()
		},
	}
}

func (a *App) runList() error {
	list := a.repo.List()

	if len(list) == 0 {
		a.io.Println("No accounts found.")
		a.io.Println()
		a.io.Println("Use 'accountkeeper create' to add your first account.")
		return nil
	}

	a.io.Printf("Found %d account(s):\n", len(list))
	a.io.Println()

	for i, account := range list {
		login := account.Login
		if login == "" {
			login = "(no login)"
		}
		a.io.Printf("%d. %s [%s]\n", i+1, login, account.Type)
		a.io.Printf("   ID:     %s\n", account.ID)
		a.io.Printf("   Labels: %s\n", formatLabels(account.Labels))
		a.io.Println()
	}

	a.io.Println("Note: Passwords are hidden. Use 'accountkeeper get <id> --reveal' to view them.")
	return nil
}

func newGetCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show account details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reveal, _ := cmd.Flags().GetBool("reveal")
			return app().runGet(args[0], reveal)
		},
	}
	cmd.Flags().Bool("reveal", false, "Show the password in clear text")
	return cmd
}

func (a *App) runGet(id string, reveal bool) error {
	account, ok := a.repo.GetByID(id)
	if !ok {
		return fmt.Errorf("account not found with ID: %s", id)
	}

	return a.printAccount(account, reveal)
}
