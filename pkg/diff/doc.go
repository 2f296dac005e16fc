// Package diff compares two follower snapshots and renders a plain text
// report of who stopped following and who started.
package diff
