// Package domain defines the core entities shared across the pulse
// services: users, notifications, chat messages and stream events.
package domain
