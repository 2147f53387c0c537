// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Site configuration can hold cookies, custom headers and proxy URLs with
// credentials. With --verbose the fetcher logs request details, so every
// record passes through SecureHandler, which masks:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, JWTs, keys)
//   - user:password credentials inside URLs, e.g. socks5 proxy URLs
//   - token and signature query parameters of crawled links
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("fetching", "url", pageURL, "cookie", "consent=yes") // cookie is masked
//	slog.SetDefault(logger)
package log
