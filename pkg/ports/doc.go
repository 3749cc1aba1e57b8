// Package ports defines the interfaces between the application core and
// its adapters: storage, metrics, the LLM client and the OAuth upstream.
package ports
