// Package services holds the external tracking services a new project is
// published to.
//
// FromConfig builds a Registry with a client for every service that has an
// API token configured. Publish then creates the project on each of them in
// turn, continuing past individual failures.
package services
