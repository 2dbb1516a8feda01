// Package model defines the data structures shared by the sync pipeline,
// the run history database and the report writers.
//
// This package contains the following main types:
//   - SyncReport: everything one create run did to the wiki
//   - PageResult: one CSV row and the page it became
//   - Warning: a non-fatal problem, classified by Severity
//   - SimpleReport: the counts shown to the user at the end of a run
//
// All types serialize to JSON; SyncReport is stored as-is in the history
// database.
package model
