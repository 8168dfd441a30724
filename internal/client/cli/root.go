package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/accountkeeper/internal/client/iocli"
	"github.com/iudanet/accountkeeper/internal/config"
)

// NewRootCommand builds the accountkeeper command tree.
// Each subcommand gets a fully wired App through PersistentPreRunE.
// The returned function closes the storage; call it after Execute, also on error.
func NewRootCommand(console iocli.IO, build BuildInfo) (*cobra.Command, func() error) {
	var (
		configFile string
		app        *App
	)

	root := &cobra.Command{
		Use:   "accountkeeper",
		Short: "Manage locally stored account records",
		Long: `accountkeeper keeps a small collection of account records in a local
database. An account is either LOCAL (login and password) or LDAP
(directory-backed: login only, the password is never stored).`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}

			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())

			store, closeFn, err := OpenStore(cmd.Context(), cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}

			app = NewApp(cmd.Context(), console, store, cfg, logger)
			app.closeFn = closeFn

			// Поврежденные данные не перезаписываем молча: только явный clear
			if err := app.repo.LastError(); err != nil && cmd.Annotations["recover"] != "true" {
				_ = app.Close()
				app = nil
				return fmt.Errorf("failed to load accounts: %w (run 'accountkeeper clear --yes' to reset)", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to config file (default: ./accountkeeper.yaml if present)")
	flags.String("backend", "", "Storage backend: bolt, sqlite or memory")
	flags.String("db", "", "Path to local database")
	flags.String("passphrase", "", "Encrypt stored data with this passphrase (prefer ACCOUNTKEEPER_STORAGE_PASSPHRASE)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	appFn := func() *App { return app }

	root.AddCommand(
		newCreateCommand(appFn),
		newAddCommand(appFn),
		newUpdateCommand(appFn),
		newDeleteCommand(appFn),
		newGetCommand(appFn),
		newListCommand(appFn),
		newClearCommand(appFn),
		newValidateCommand(appFn),
		newStatusCommand(appFn),
		newVersionCommand(console, build),
	)

	closeApp := func() error {
		if app == nil {
			return nil
		}
		err := app.Close()
		app = nil
		return err
	}

	return root, closeApp
}

// needsApp сообщает, нужно ли команде открытое хранилище.
// Встроенные help и completion работают и без него, в том числе при поврежденных данных.
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipApp"] == "true" {
			return false
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}
