package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/accountkeeper/internal/validation"
)

func newValidateCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [id]",
		Short: "Check account fields without saving",
		Long: `Check account fields without saving anything.

With an id, the stored account is checked, with any flags applied on top of
it as a pending update. Without an id, only the flags are checked as a new
draft; the type must then be given explicitly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runValidate(cmd, args)
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func (a *App) runValidate(cmd *cobra.Command, args []string) error {
	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}

	var (
		draft validation.AccountInput
		key   string
	)

	if len(args) == 1 {
		account, ok := a.repo.GetByID(args[0])
		if !ok {
			return fmt.Errorf("account not found with ID: %s", args[0])
		}
		draft = validation.ApplyPatch(validation.InputFromAccount(account), patch)
		key = account.ID
	} else {
		draft = validation.AccountInput{
			Type:     patch.Type,
			Labels:   patch.Labels.Value,
			Login:    patch.Login.Value,
			Password: patch.Password.Value,
		}
	}

	result := a.engine.ValidateAccount(draft)
	if key != "" {
		a.engine.SetResult(key, result)
	}

	a.printValidation(result)

	if !a.engine.IsValid(result) {
		return fmt.Errorf("validation failed")
	}

	a.io.Println("✓ Account is valid")
	return nil
}
