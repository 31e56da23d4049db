// Package main provides the entry point for the PrivacyPulse CLI.
//
// PrivacyPulse audits a web page for privacy risks: it finds the page's
// privacy policy, asks the scan backend to summarize it, and lists the
// third-party trackers the page embeds.
//
// Usage:
//
//	privacypulse scan <url>
//	privacypulse compare <urlA> <urlB>
//
// See --help for all available options.
package main

// main is the entry point for PrivacyPulse.
func main() {
	Execute()
}
