// Package table reads the tabular input that csv2wiki turns into wiki pages.
//
// The first record is the Header; every following record is a Row. Rows
// are not required to have the same number of cells as the Header.
package table
