// Package report renders scan reports and site comparisons.
//
// Three formats are provided:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for other tools
//   - MarkdownWriter: GitHub-flavored Markdown for sharing
//
// Every writer implements both Writer and ComparisonWriter, so the CLI
// picks a format once and uses it for any command.
//
// Text that comes from the scan backend is untrusted. The Markdown writer
// strips HTML from it before rendering.
package report
