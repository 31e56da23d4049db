package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacypulse/internal/config"
)

// NewRootCmd creates the root command for PrivacyPulse.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "privacypulse",
		Short: "Privacy policy and tracker auditing tool for web pages",
		Long: `PrivacyPulse audits web pages for privacy risks.

It locates a page's privacy policy, sends it to the PrivacyPulse scan
backend for a transparency score and summary, and detects the third-party
trackers (scripts, iframes and pixels) the page embeds.

Results are kept in a local database so the last scan and the scan history
can be shown again without network access.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("config", "c", "",
		"Configuration file path (default: .privacypulse in current or home directory)")
	flags.String("api", "",
		"Scan backend base URL (default: "+config.DefaultAPIBase+", or $"+config.EnvAPIBase+")")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for each HTTP request")
	flags.String("proxy", "", "Route traffic through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	flags.Bool("tor", false, "Start an embedded Tor daemon and route traffic through it")
	flags.Bool("respect-robots", false, "Skip pages disallowed by robots.txt")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewLastCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewAwarenessCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
