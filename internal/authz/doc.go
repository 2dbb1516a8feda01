// Package authz validates a Subversion authz file against a checkout.
//
// Two checks run on every validation:
//
//   - existence: every section header added by the last commit or by the
//     uncommitted diff (a "+[/trunk/..." line) must name a directory that
//     exists in the checkout
//   - uniqueness: no section header may appear twice in the current file
//
// The svn output is collected through a Runner so tests can replace the
// svn binary.
package authz
