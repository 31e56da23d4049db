// Package log builds the slog loggers used by privacypulse.
//
// Scanning a page touches data that should never reach a terminal or a CI
// log verbatim: Set-Cookie headers, consent tokens, API keys for the scan
// backend, and tracker URLs whose query strings carry visitor identifiers.
// SecureHandler wraps any slog.Handler and rewrites such attributes before
// they are written.
//
// Masking rules:
//   - attributes whose key names a credential (authorization, api_key, ...)
//     are replaced with MaskValue
//   - cookie attributes keep the cookie names and drop the values, so
//     "_ga=GA1.2.3; sid=xyz" is logged as "_ga=***; sid=***"
//   - URL attributes keep scheme, host and path, and mask the values of
//     identifying query parameters (uid, cid, token, ...)
//   - any string value that looks like a bearer token, JWT or long API key
//     is replaced with MaskValue
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("page fetched", "url", u, "set-cookie", header)
//	slog.SetDefault(logger)
package log
