// Package snapshot stores follower snapshots as plain text files.
//
// A snapshot is one username per line, named after the time it was taken:
//
//	followers_20240131_093000.txt
//
// Files are written once through a temporary file and never overwritten.
// Load and ReadLines read them back for comparison, ignoring blank lines and
// surrounding whitespace.
package snapshot
