// Command fraudctl scores files offline and performs operator tasks against
// a fraudscore deployment.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bibbank/fraudscore/pkg/observability"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "fraudctl",
		Short:         "Score transaction files and manage fraudscore",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			observability.InitLogger(observability.LogConfig{
				Level:   v.GetString("log_level"),
				Format:  "text",
				Service: "fraudctl",
				Output:  cmd.ErrOrStderr(),
			})
		},
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		scoreCmd(v),
		predictCmd(v),
		migrateCmd(v),
		tokenCmd(),
		devCertsCmd(),
	)
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
