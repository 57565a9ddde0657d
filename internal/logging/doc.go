// Package logging provides structured logging utilities for taskpilot.
//
// It centralizes attribute naming so every package logs the same keys for
// the same concepts (operation, action, status, duration), and provides
// PII-safe helpers: recipient emails are hashed before logging so entries
// can be correlated without exposing addresses.
package logging
