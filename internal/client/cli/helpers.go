package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/accountkeeper/internal/models"
	"github.com/iudanet/accountkeeper/internal/validation"
)

// maskPassword скрывает пароль при выводе
func maskPassword(password *string) string {
	if password == nil {
		return "(none)"
	}
	if *password == "" {
		return "(empty)"
	}
	return "********"
}

func formatLabels(labels []models.Label) string {
	if len(labels) == 0 {
		return "-"
	}
	texts := make([]string, 0, len(labels))
	for _, l := range labels {
		texts = append(texts, l.Text)
	}
	return strings.Join(texts, ", ")
}

func (a *App) printAccount(account *models.Account, reveal bool) error {
	view := accountView{
		ID:       account.ID,
		Type:     string(account.Type),
		Login:    account.Login,
		Password: maskPassword(account.Password),
		Labels:   formatLabels(account.Labels),
	}
	if reveal && account.Password != nil {
		view.Password = *account.Password
	}

	if err := accountTmpl.Execute(a.io, view); err != nil {
		return fmt.Errorf("failed to render account: %w", err)
	}
	return nil
}

func (a *App) printValidation(result validation.AccountValidation) {
	fields := []struct {
		name   string
		result validation.Result
	}{
		{"labels", result.Labels},
		{"type", result.Type},
		{"login", result.Login},
		{"password", result.Password},
	}

	for _, f := range fields {
		if f.result.IsValid {
			a.io.Printf("  ✓ %-8s\n", f.name)
		} else {
			a.io.Printf("  ✗ %-8s %s\n", f.name, f.result.ErrorMessage)
		}
	}
}

// patchFromFlags собирает patch только из флагов, явно указанных пользователем
func patchFromFlags(cmd *cobra.Command) (models.AccountPatch, error) {
	var patch models.AccountPatch
	flags := cmd.Flags()

	if flags.Changed("labels") {
		v, _ := flags.GetString("labels")
		patch.Labels = models.Some(v)
	}
	if flags.Changed("type") {
		v, _ := flags.GetString("type")
		t, ok := models.ParseAccountType(v)
		if !ok {
			return patch, fmt.Errorf("unknown account type: %s. Use: local or ldap", v)
		}
		patch.Type = models.Some(t)
	}
	if flags.Changed("login") {
		v, _ := flags.GetString("login")
		patch.Login = models.Some(v)
	}
	if flags.Changed("password") {
		v, _ := flags.GetString("password")
		patch.Password = models.Some(v)
	}

	return patch, nil
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("labels", "", `Labels separated by ";" (e.g. "work; vpn")`)
	cmd.Flags().String("type", "", "Account type: local or ldap")
	cmd.Flags().String("login", "", "Login")
	cmd.Flags().String("password", "", "Password (not recommended, use --prompt-password)")
}

func (a *App) confirm(prompt string) (bool, error) {
	answer, err := a.io.ReadInput(prompt + " (yes/no): ")
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y", nil
}
