// Package timesheet turns collated Toggl hours into billable lines.
//
// Each project ID is charged against the workorder that lists it in a TOML
// workorder book:
//
//	[[workorder]]
//	id = "R123456"
//	funder = "BBSRC"
//	trac_type = "Internal FEC"
//	payment_type = "DI"
//	hourly_rate = 45.5
//	projects = ["P2024-CRD-FZLL"]
//
// Projects without a complete workorder are left off the sheet.
package timesheet
