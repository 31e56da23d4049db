// Package tor builds the HTTP clients PrivacyPulse uses to reach audited
// sites and the scan backend.
//
// Traffic goes out directly, through any SOCKS5 proxy given as host:port, or
// through an embedded Tor daemon started with tornago. Clients built here
// also attach per-site headers and cookies so that pages behind a login can
// be audited.
//
// Nothing in this package keeps global state. Build a Proxy or an
// EmbeddedTor and pass the resulting *http.Client to the components that
// need it.
package tor
