package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aleister1102/globalping-bots/internal/app"
	"github.com/aleister1102/globalping-bots/internal/config"
	"github.com/aleister1102/globalping-bots/internal/platform/terminal"
	"github.com/spf13/cobra"
)

const (
	rootUse   = "globalping"
	rootShort = "Run Globalping measurements from the terminal"
	rootLong  = `globalping runs the same commands as the chat bots against the Globalping API
and prints the results to the terminal.`

	runUse     = "run <command> [args...]"
	runShort   = "Run a command, e.g. ping google.com from Europe"
	runExample = `  globalping run ping google.com from Berlin --limit 3
  globalping run http https://example.com --full
  globalping run help dns`

	explainUse   = "explain <command> [args...]"
	explainShort = "Print the API request a command would send, without sending it"
)

// errCommandFailed signals that a reply was already printed as an error.
var errCommandFailed = errors.New("command failed")

type cliOptions struct {
	configPath string
	noColor    bool
	all        bool
}

type streams struct {
	out io.Writer
	err io.Writer
}

func newRootCmd(s streams) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           rootUse,
		Short:         rootShort,
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(s.out)
	root.SetErr(s.err)
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML/JSON configuration file")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable styled output")

	run := &cobra.Command{
		Use:     runUse,
		Short:   runShort,
		Example: runExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd.Context(), s, opts, args)
		},
	}
	run.Flags().BoolVar(&opts.all, "all", false, "print every probe result instead of the configured maximum")
	// Everything after the command name belongs to the measurement.
	run.Flags().SetInterspersed(false)

	explain := &cobra.Command{
		Use:   explainUse,
		Short: explainShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return explainCommand(s, opts, args)
		},
	}
	explain.Flags().SetInterspersed(false)

	limits := &cobra.Command{
		Use:   "limits",
		Short: "Show the current API rate limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd.Context(), s, opts, []string{"limits"})
		},
	}

	root.AddCommand(run, explain, limits)
	return root
}

func newApp(opts *cliOptions, s streams) (*app.App, error) {
	return app.New(app.Options{
		ConfigPath: opts.configPath,
		Surface:    config.SurfaceTerminal,
		Service:    "globalping-cli",
		Console:    s.err,
	})
}

func runCommand(ctx context.Context, s streams, opts *cliOptions, words []string) error {
	a, err := newApp(opts, s)
	if err != nil {
		return err
	}
	defer a.Close()

	surface := a.Surface()
	if opts.all {
		surface.MaxProbes = math.MaxInt32
	}

	reply := a.Service.HandleWords(ctx, words, surface)
	printer := terminal.NewPrinter(s.out, !opts.noColor && terminal.UseColor(s.out))
	if err := printer.Print(reply); err != nil {
		return err
	}
	if reply.IsError {
		return errCommandFailed
	}
	return nil
}

func explainCommand(s streams, opts *cliOptions, words []string) error {
	a, err := newApp(opts, s)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := a.Service.Explain(strings.Join(words, " "))
	if err != nil {
		fmt.Fprintln(s.err, err.Error())
		return errCommandFailed
	}

	data, err := terminal.FormatRequest(req, terminal.IsTerminal(s.out))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, string(data))
	return err
}
