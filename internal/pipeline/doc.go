// Package pipeline turns CSV rows into wiki pages.
//
// A create run is a Pipeline of three steps executed in order:
//
//   - SyncPagesStep writes one page per data row and folds the rows into an
//     Outcome holding the table of contents lines and the category labels.
//   - WriteTOCStep saves the table of contents page.
//   - WriteCategoriesStep saves an empty page per category label.
//
// A fatal error in any step stops the pipeline, so the table of contents
// and the category pages are only written once every row has been synced.
// The wiki is always passed in explicitly through the Wiki interface;
// DryRunWiki implements it without touching the network.
package pipeline
