// Package storage provides storage implementations.
//
// Implementations:
//   - sqlite: GORM-backed user persistence
//   - redis: refresh token store with TTL
//   - memory: in-memory for testing
package storage
