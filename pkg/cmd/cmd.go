package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/intprof/intprof/internal/settings"
	"github.com/intprof/intprof/pkg/cmd/cpu"
	"github.com/intprof/intprof/pkg/cmd/options"
)

const logLevelInfo = "info"

func NewCommand(o *options.CommonOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   settings.CmdName,
		Short: fmt.Sprintf("%s is a sampling CPU profiler for embedded managed runtimes", settings.CmdName),
		Long: fmt.Sprintf(`
%s periodically interrupts the process with a CPU-time interval timer, captures
the call stack of the embedded runtime thread that was executing, aggregates
identical stacks into counts and emits the result as a pprof profile.
`, settings.CmdName),
		DisableAutoGenTag: true,
	}
	cmd.AddCommand(cpu.NewCommand(cpu.NewOptions(cpu.WithCommonOptions(o))))
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", logLevelInfo, "Log level (trace, debug, info, warn, error, fatal, panic)")

	return cmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to happen once.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(
		log.ConsoleWriter{Out: os.Stderr},
	).With().Timestamp().Logger()

	o := options.NewCommonOptions(
		options.WithContext(ctx),
		options.WithLogger(logger),
	)

	if err := NewCommand(o).Execute(); err != nil {
		os.Exit(1)
	}
}
