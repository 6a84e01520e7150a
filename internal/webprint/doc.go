// Package webprint provides an HTTP client for the WebPrint service API.
//
// # Overview
//
// Every WebPrint response travels in a {code, message, data} envelope;
// code 1000 signals success and anything else is a business error. The
// client normalizes all failure modes into a single typed error:
//
//   - Business errors (envelope present, code != 1000) resolve to the
//     fixed per-code message table, falling back to the server message,
//     falling back to a generic string naming the code.
//   - HTTP error statuses without a valid envelope resolve to a fixed
//     per-status table (400, 401, 403, 404, 408, 429, 500, 502, 503,
//     504) with a generic fallback.
//   - Transport failures (refused, timeout, DNS) resolve to one generic
//     network message.
//
// All three arrive as *APIError; context cancellation passes through
// untouched so pollers can tell teardown apart from failure.
//
// # Client Usage
//
//	client, err := webprint.NewClient(webprint.Config{
//		BaseURL: "http://localhost:8080",
//	})
//	if err != nil {
//		return err
//	}
//	printers, err := client.Printers(ctx)
//
// GET operations are read-only and safe to retry. POST and upload
// operations are never retried automatically.
//
// # Request Logging
//
// When Config.EnableLogging is set, every request and response is
// logged through the injected zerolog logger with a generated
// X-Request-ID. Logging never affects control flow.
package webprint
