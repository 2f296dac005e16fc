package diff

import (
	"time"

	"igfollowers/pkg/snapshot"
)

// Result is the set difference between two snapshots
type Result struct {
	Lost     []string
	Gained   []string
	OldCount int
	NewCount int
	Net      int
}

// Compute compares two snapshots. Lost and Gained are sorted.
func Compute(old, new snapshot.Set) Result {
	return Result{
		Lost:     old.Minus(new).Sorted(),
		Gained:   new.Minus(old).Sorted(),
		OldCount: old.Len(),
		NewCount: new.Len(),
		Net:      new.Len() - old.Len(),
	}
}

// Report is a rendered comparison of two named snapshots
type Report struct {
	GeneratedAt time.Time
	OldName     string
	NewName     string
	Result
}

// Run loads both snapshots and compares them. Both files are read before
// anything is computed, so a missing file yields no report at all.
func Run(oldPath, newPath string, now time.Time) (*Report, error) {
	old, err := snapshot.Load(oldPath)
	if err != nil {
		return nil, err
	}
	cur, err := snapshot.Load(newPath)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: now,
		OldName:     oldPath,
		NewName:     newPath,
		Result:      Compute(old, cur),
	}, nil
}
