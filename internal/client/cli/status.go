package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/accountkeeper/internal/models"
	"github.com/iudanet/accountkeeper/internal/validation"
)

func newStatusCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage status and validate all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().runStatus()
		},
	}
}

func (a *App) runStatus() error {
	view := statusView{
		Backend: a.cfg.Storage.Backend,
		Path:    a.cfg.Storage.Path,
		Key:     a.cfg.Storage.Key,
		Sealed:  a.cfg.Storage.Passphrase != "",
	}

	// Проверяем все записи, результаты остаются в движке
	for _, account := range a.repo.List() {
		view.Total++
		if account.Type == models.AccountTypeDirectory {
			view.Directory++
		} else {
			view.Local++
		}
		a.engine.SetResult(account.ID, a.engine.ValidateAccount(validation.InputFromAccount(account)))
	}

	for _, account := range a.repo.List() {
		if result, ok := a.engine.GetResult(account.ID); ok && !result.IsValid() {
			view.Invalid = append(view.Invalid, account.ID)
		}
	}

	if err := statusTmpl.Execute(a.io, view); err != nil {
		return fmt.Errorf("failed to render status: %w", err)
	}
	return nil
}
