package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAwarenessCmd creates the awareness command.
func NewAwarenessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "awareness",
		Short: "Show privacy tips from the scan backend",
		Long: `Awareness prints the scan backend's privacy education content: the tip
of the day, a short quiz with its answers and the leaderboard.

Examples:
  # Show today's tip and quiz
  privacypulse awareness

  # Save the content as Markdown
  privacypulse awareness --markdown -o awareness.md`,
		Args: cobra.NoArgs,
		RunE: runAwarenessCmd,
	}
	addOutputFlags(cmd)
	return cmd
}

// runAwarenessCmd executes the awareness command.
func runAwarenessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := readOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	sess, err := newSession(cmd.Context(), cfg, setupLogger(cfg.Verbose), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer sess.Close()

	content, err := sess.api.Awareness(cmd.Context())
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // best effort on exit

	_, err = newFormatWriter(out, cfg).WriteAwareness(content)
	return err
}
