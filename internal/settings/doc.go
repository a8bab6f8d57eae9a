// Package settings persists overlay preferences in a small SQLite key-value
// table.
//
// The store plays the role a browser extension's synced storage would: the
// CLI writes the selected caption style, and a running overlay picks the
// change up by polling Revision. Each Set bumps a per-key revision counter so
// readers can tell a real change from a repeated read without comparing
// timestamps.
package settings
