package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/accountkeeper/internal/models"
	"github.com/iudanet/accountkeeper/internal/validation"
)

func newUpdateCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an account",
		Long: `Change fields of an account. Only the flags you pass are applied.

Switching the type to ldap removes the stored password; a password is only
accepted for LOCAL accounts. The resulting account is validated first and the
update is refused when it is invalid, unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runUpdate(cmd, args[0])
		},
	}

	addFieldFlags(cmd)
	cmd.Flags().Bool("prompt-password", false, "Read the password interactively")
	cmd.Flags().Bool("force", false, "Apply the update even if validation fails")

	return cmd
}

func (a *App) runUpdate(cmd *cobra.Command, id string) error {
	account, ok := a.repo.GetByID(id)
	if !ok {
		return fmt.Errorf("account not found with ID: %s", id)
	}

	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}

	if prompt, _ := cmd.Flags().GetBool("prompt-password"); prompt {
		password, err := a.io.ReadPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		patch.Password = models.Some(password)
	}

	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update. Use --labels, --type, --login or --password")
	}

	draft := validation.ApplyPatch(validation.InputFromAccount(account), patch)
	result := a.engine.ValidateAccount(draft)
	a.engine.SetResult(id, result)

	if !result.IsValid() {
		a.io.Println("Validation failed:")
		a.printValidation(result)
		if force, _ := cmd.Flags().GetBool("force"); !force {
			return fmt.Errorf("account %s is invalid, nothing changed (use --force to save anyway)", id)
		}
		a.io.Println("Saving anyway (--force).")
	}

	if !a.repo.Update(cmd.Context(), id, patch) {
		return fmt.Errorf("account not found with ID: %s", id)
	}
	if err := a.saveError(); err != nil {
		return err
	}

	updated, _ := a.repo.GetByID(id)
	a.io.Println("✓ Account updated")
	return a.printAccount(updated, false)
}
