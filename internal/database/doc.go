// Package database stores the history of create runs in SQLite.
//
// Each run is one row in the runs table: the wiki site, the input file and
// its SHA3-256 digest, a few counts for listing, and the full SyncReport as
// JSON. The delete command reads the most recent run to learn which
// category pages it created.
//
// The driver is modernc.org/sqlite, so the binary stays CGO-free.
package database
