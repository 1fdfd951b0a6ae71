// Package main is the entry point for the blockpad editor.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blockpad/blockpad/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:          "blockpad",
		Short:        "A terminal block editor",
		Long:         "Blockpad is a terminal editor for block-structured documents\nwith keyboard shortcuts for selection, history, and block actions.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	root.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to configuration file")
	root.Flags().StringVar(&opts.LogLevel, "log-level", "", "logging verbosity (debug, info, warn, error)")
	root.Flags().StringVar(&opts.LogFile, "log-file", "", "log file path")
	root.Flags().BoolVar(&opts.ReadOnly, "readonly", false, "lock the document against structural and content changes")

	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("blockpad %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func run(opts app.Options) error {
	application, err := app.New(opts)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return nil
		}
		return err
	}
	return nil
}
