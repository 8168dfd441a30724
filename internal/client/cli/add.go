package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/accountkeeper/internal/models"
	"github.com/iudanet/accountkeeper/internal/validation"
)

func newAddCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Create an account interactively",
		Long: `Ask for the account fields one by one and create the account only if
all of them are valid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runAdd(cmd)
		},
	}
}

func (a *App) runAdd(cmd *cobra.Command) error {
	a.io.Println("=== Add Account ===")
	a.io.Println()

	rawType, err := a.io.ReadInput("Type (local/ldap) [local]: ")
	if err != nil {
		return fmt.Errorf("failed to read type: %w", err)
	}
	accountType := models.AccountTypeLocal
	if rawType != "" {
		t, ok := models.ParseAccountType(rawType)
		if !ok {
			return fmt.Errorf("unknown account type: %s. Use: local or ldap", rawType)
		}
		accountType = t
	}

	login, err := a.io.ReadInput("Login: ")
	if err != nil {
		return fmt.Errorf("failed to read login: %w", err)
	}

	patch := models.AccountPatch{
		Type:  models.Some(accountType),
		Login: models.Some(login),
	}

	// Для LDAP пароль не хранится, не спрашиваем
	if accountType == models.AccountTypeLocal {
		password, err := a.io.ReadPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		patch.Password = models.Some(password)
	}

	labels, err := a.io.ReadInput(`Labels (separated by ";", optional): `)
	if err != nil {
		return fmt.Errorf("failed to read labels: %w", err)
	}
	patch.Labels = models.Some(labels)

	draft := validation.ApplyPatch(validation.AccountInput{Type: models.Some(models.AccountTypeLocal)}, patch)
	result := a.engine.ValidateAccount(draft)
	if !result.IsValid() {
		a.io.Println()
		a.io.Println("Validation failed:")
		a.printValidation(result)
		return fmt.Errorf("account is invalid, nothing created")
	}

	created := a.repo.CreateFrom(cmd.Context(), patch)
	if err := a.saveError(); err != nil {
		return err
	}
	a.engine.SetResult(created.ID, result)

	a.io.Println()
	a.io.Println("✓ Account added successfully!")
	return a.printAccount(created, false)
}
