// Package main provides the entry point for the csv2wiki CLI.
//
// csv2wiki turns the rows of a CSV file into MediaWiki pages, one page per
// row with a section per column, plus a table of contents page and a
// category page per distinct value of the last column. It also ships the
// small tools that surround that job: a Google Sheets exporter and a
// Subversion authz file validator.
//
// Usage:
//
//	csv2wiki create proposals.csv WikiUser
//	csv2wiki delete WikiUser
//	csv2wiki authz [authz_file] [checkout_dir]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
