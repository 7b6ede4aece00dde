// Command marquee scrapes movie attributes for the titles listed in a
// spreadsheet, stores one row per title in SQLite, and exports the results as
// CSV (and optionally parquet) with an optional email delivery.
//
// Subcommands:
//
//	run       process every title in the workbook, then export
//	resolve   look up a single title without storing it
//	export    rewrite the exports from the existing database
//	rows      print stored rows
//	config    create, validate, or show configuration
//	test-notify  send a test ntfy notification
package main
