// Package config holds PrivacyPulse settings: the scan backend address,
// network and proxy options, report output, local storage, and per-site
// overrides loaded from a .privacypulse YAML file.
//
// Values are layered in this order, later layers winning: built-in defaults
// from NewConfig, the configuration file, the PRIVACYPULSE_API environment
// variable, and finally command-line flags.
package config
