package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runDelete(cmd, args[0])
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) runDelete(cmd *cobra.Command, id string) error {
	account, ok := a.repo.GetByID(id)
	if !ok {
		// Удаление отсутствующей записи - не ошибка
		a.io.Printf("No account with ID %s, nothing to delete.\n", id)
		return nil
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		a.io.Println("About to delete:")
		if err := a.printAccount(account, false); err != nil {
			return err
		}
		a.io.Println()

		confirmed, err := a.confirm("Are you sure you want to delete this account?")
		if err != nil {
			return err
		}
		if !confirmed {
			a.io.Println("Deletion cancelled.")
			return nil
		}
	}

	a.repo.Delete(cmd.Context(), id)
	if err := a.saveError(); err != nil {
		return err
	}

	a.io.Println("✓ Account deleted")
	return nil
}

func newClearCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all accounts",
		Args:  cobra.NoArgs,
		// clear разрешен и при поврежденном хранилище
		Annotations: map[string]string{"recover": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runClear(cmd)
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *App) runClear(cmd *cobra.Command) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirmed, err := a.confirm(fmt.Sprintf("Delete all %d account(s)?", a.repo.Count()))
		if err != nil {
			return err
		}
		if !confirmed {
			a.io.Println("Cancelled.")
			return nil
		}
	}

	a.repo.Clear(cmd.Context())
	if err := a.saveError(); err != nil {
		return err
	}

	a.io.Println("✓ All accounts deleted")
	return nil
}
