// Package llm provides chat-completion client implementations.
//
// The factory creates streamers based on provider configuration.
// Currently supports:
//   - Anthropic Claude
package llm
