package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/tote/internal/app"
	"github.com/five82/tote/internal/shop"
)

// globalFlags are shared by the TUI and every subcommand.
type globalFlags struct {
	configPath  string
	prefsPath   string
	pollSeconds int
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tote: %s\n", describe(err))
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "tote",
		Short: "Shop from the terminal",
		Long: `tote is a terminal client for the store: browse your cart, saved
addresses and orders, and change them without waiting on the server.

Run without a subcommand to open the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file path (default ~/.config/tote/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "UI preferences path (default ~/.config/tote/prefs.toml)")
	pf.IntVar(&flags.pollSeconds, "poll", 0, "refresh interval in seconds (default from config)")

	root.AddCommand(
		newCartCmd(flags),
		newAddressesCmd(flags),
		newOrdersCmd(flags),
		newDefaultCmd(flags),
		newCancelCmd(flags),
		newReturnCmd(flags),
		newCheckoutCmd(flags),
		newLogCmd(flags),
	)
	return root
}

func (f *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath: f.configPath,
		PrefsPath:  f.prefsPath,
		PollEvery:  f.pollSeconds,
	}
}

// describe prefers the user-facing message of backend errors.
func describe(err error) string {
	var apiErr *shop.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}
