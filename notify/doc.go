// Package notify turns consolidated pipeline results into analyst-facing
// email reports. Report composition is pure and testable; delivery goes
// through a Relay, with an SMTP implementation for production and a mock
// relay that records messages for development.
package notify
