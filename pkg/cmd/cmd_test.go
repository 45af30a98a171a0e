package cmd_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	log "github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/intprof/intprof/pkg/cmd"
	"github.com/intprof/intprof/pkg/cmd/options"
)

func newTestOptions() *options.CommonOptions {
	return options.NewCommonOptions(
		options.WithContext(context.Background()),
		options.WithLogger(log.New(log.ConsoleWriter{Out: os.Stderr})),
	)
}

func TestNewCommand(t *testing.T) {
	root := cmd.NewCommand(newTestOptions())

	require.NotNil(t, root)
	require.Equal(t, "intprof", root.Name())
	require.Contains(t, root.Short, "sampling CPU profiler")
	require.True(t, root.HasSubCommands())
	require.True(t, root.DisableAutoGenTag)
}

func TestCommandSubcommands(t *testing.T) {
	root := cmd.NewCommand(newTestOptions())

	names := make([]string, 0)
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	require.Contains(t, names, "cpu")
}

func TestCommandLogLevelFlag(t *testing.T) {
	root := cmd.NewCommand(newTestOptions())

	flag := root.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
	require.Equal(t, "string", flag.Value.Type())
	require.Equal(t, "info", flag.DefValue)
	require.Contains(t, flag.Usage, "Log level")
}

func TestCommandHelp(t *testing.T) {
	root := cmd.NewCommand(newTestOptions())

	var output bytes.Buffer
	root.SetOut(&output)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())

	help := output.String()
	require.Contains(t, help, "intprof")
	require.Contains(t, help, "Available Commands:")
	require.Contains(t, help, "cpu")
}

func TestCommandInvalidFlag(t *testing.T) {
	root := cmd.NewCommand(newTestOptions())

	var output bytes.Buffer
	root.SetErr(&output)
	root.SetArgs([]string{"--invalid-flag"})

	require.Error(t, root.Execute())
	require.Contains(t, output.String(), "unknown flag")
}
