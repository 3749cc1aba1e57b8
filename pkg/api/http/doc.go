// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Registration, login and the refresh token lifecycle
//   - The OAuth token-exchange proxy
//   - The room relay and event stream control surfaces
//   - The SSE event stream itself
//   - Streaming chat completions
//   - Health checks and Prometheus metrics
package http
