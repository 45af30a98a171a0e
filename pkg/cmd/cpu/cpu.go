package cpu

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/intprof/intprof/internal/output"
	"github.com/intprof/intprof/internal/settings"
	"github.com/intprof/intprof/pkg/profiler"
	"github.com/intprof/intprof/pkg/report"
)

const CmdName = "cpu"

func NewCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   CmdName,
		Short: "Profile CPU time of the bundled demo workload",
		Long: fmt.Sprintf(`
%s runs the sampling CPU profiler against a synthetic interpreter workload
bundled with %s and writes the collected profile in pprof format.
`, CmdName, settings.CmdName),
		DisableAutoGenTag: true,
		RunE:              o.Run,
	}
	cmd.Flags().DurationVarP(&o.duration, "duration", "d", o.duration, "Profiling duration")
	cmd.Flags().DurationVar(&o.period, "period", o.period, "Sampling period in consumed CPU time")
	cmd.Flags().StringVarP(&o.output, "output", "o", o.output, "Path of the pprof profile to write")
	cmd.Flags().IntVar(&o.top, "top", 10, "Number of heaviest traces to print")
	cmd.Flags().BoolVar(&o.status, "status", true, "Periodically print the session status")

	return cmd
}

func (o *Options) Run(cmd *cobra.Command, _ []string) error {
	var err error
	o.LogLevel, err = cmd.Flags().GetString("log-level")
	if err != nil {
		return errors.Wrap(err, "failed to get log level")
	}
	logLevel, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		o.Logger.Fatal().Err(err).Msg("invalid log level")
	}
	o.Logger = o.Logger.Level(logLevel)

	rt, stopWorkload := startWorkload()
	defer stopWorkload()

	p := profiler.NewCPUProfiler(
		profiler.WithRuntime(rt),
		profiler.WithDuration(o.duration),
		profiler.WithPeriod(o.period),
		profiler.WithLogger(o.Logger),
	)

	statusCtx, stopStatus := context.WithCancel(o.Ctx)
	defer stopStatus()

	var prof *profiler.Profile
	g := new(errgroup.Group)
	g.Go(func() error {
		defer stopStatus()
		var err error
		prof, err = p.Collect(o.Ctx)

		return err
	})
	if o.status {
		start := time.Now()
		g.Go(func() error {
			output.StatusBar(statusCtx, time.Second, func() {
				output.PrintLeft(output.PrettySessionStatus(time.Since(start), o.duration))
			})
			fmt.Println()

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "failed to collect the profile")
	}

	f, err := os.Create(o.output)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", o.output)
	}
	defer f.Close()

	if err := report.NewBuilder().WriteReport(f, prof); err != nil {
		return errors.Wrap(err, "failed to write the profile report")
	}
	o.Logger.Info().Str("path", o.output).Int("traces", len(prof.Samples)).Msg("profile written")

	for i, s := range prof.Samples {
		if i >= o.top {
			break
		}
		fmt.Printf("%8d  %s\n", s.Count, s.Frames[0])
	}

	return nil
}
