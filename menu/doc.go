// Package menu implements the menu processing domain: submission
// handling and the stage pipeline (extract, categorize, then a fan-out
// that translates, describes, and illustrates each item) reporting
// progress through the session broadcaster.
package menu
