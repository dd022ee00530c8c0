// Package cli wires the cobra command surface around the review service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/diffscope/internal/patch"
	"github.com/bkyoung/diffscope/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrFindingsAboveThreshold is returned when findings at or above the
// fail-on severity survive the run. The host process maps it to a
// non-zero exit.
var ErrFindingsAboveThreshold = errors.New("findings at or above fail-on threshold")

// Reviewer defines the dependency required to run the review command.
type Reviewer interface {
	Review(ctx context.Context, req review.Request) (review.Result, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Defaults holds per-run settings resolved from configuration.
type Defaults struct {
	Model         string
	RepoDir       string
	FailOn        string
	LineTolerance int
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Reviewer Reviewer
	Args     Arguments
	Defaults Defaults
	Keys     patch.KeyReader // for interactive fix application
	Version  string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "ds",
		Short: "Diff-scoped skill analysis CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}
