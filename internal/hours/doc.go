// Package hours collates Toggl time entries into per-project and per-user
// totals and renders them, either as plain text or as a live terminal
// dashboard.
package hours
