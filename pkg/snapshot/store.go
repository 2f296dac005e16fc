package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	errs "igfollowers/pkg/errors"
)

const (
	// DefaultPrefix is the filename prefix of snapshot files
	DefaultPrefix = "followers"

	// TimestampLayout is the creation time embedded in snapshot filenames
	TimestampLayout = "20060102_150405"

	// Extension of snapshot files
	Extension = ".txt"
)

// Snapshot is a snapshot file found on disk
type Snapshot struct {
	Path      string
	CreatedAt time.Time
}

// Name returns the file name of the snapshot
func (s Snapshot) Name() string {
	return filepath.Base(s.Path)
}

// Store writes snapshot files into one directory
type Store struct {
	dir    string
	prefix string
	clock  func() time.Time
}

// NewStore creates a snapshot store, creating dir if it doesn't exist
func NewStore(dir, prefix string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errs.NewStorageError(dir, "failed to create output directory", err)
	}
	return &Store{dir: dir, prefix: prefix, clock: time.Now}, nil
}

// SetClock replaces the time source used to name new snapshots
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the snapshot file name for a creation time
func (s *Store) FileName(t time.Time) string {
	return fmt.Sprintf("%s_%s%s", s.prefix, t.Format(TimestampLayout), Extension)
}

// Write persists usernames, one per line in the given order, as a new snapshot
// and returns its path. An existing snapshot is never overwritten.
func (s *Store) Write(usernames []string) (string, error) {
	path := filepath.Join(s.dir, s.FileName(s.clock()))

	tmp, err := os.CreateTemp(s.dir, "."+s.prefix+"-*.tmp")
	if err != nil {
		return "", errs.NewStorageError(path, "failed to create temporary file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	for _, name := range usernames {
		w.WriteString(name)
		w.WriteByte('\n')
	}
	err = w.Flush()
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", errs.NewStorageError(path, "failed to write snapshot", err)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		return "", errs.NewStorageError(path, "failed to set snapshot permissions", err)
	}

	// link instead of rename: link fails when the target exists
	err = linkFile(tmpName, path)
	if linkUnsupported(err) {
		err = copyExclusive(tmpName, path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", errs.NewStorageError(path, "snapshot already exists", nil)
		}
		return "", errs.NewStorageError(path, "failed to move snapshot into place", err)
	}

	return path, nil
}

var linkFile = os.Link

// linkUnsupported reports whether err means the filesystem has no hard links.
// FAT and exFAT answer EPERM, some FUSE mounts ENOSYS or EOPNOTSUPP.
func linkUnsupported(err error) bool {
	return err != nil && (errors.Is(err, errors.ErrUnsupported) || errors.Is(err, fs.ErrPermission))
}

// copyExclusive copies src to a newly created dst, failing if dst exists
func copyExclusive(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// ReadLines reads a snapshot in file order. Whitespace is trimmed, blank lines
// are skipped and repeated names are kept only once.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NewInputError(path, "snapshot file not found", nil)
		}
		return nil, errs.NewInputError(path, "cannot open snapshot file", err)
	}
	defer f.Close()

	var names []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.NewInputError(path, "cannot read snapshot file", err)
	}
	return names, nil
}

// Load reads a snapshot as a set
func Load(path string) (Set, error) {
	names, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	return NewSet(names...), nil
}

// ParseTimestamp extracts the creation time from a snapshot file name such as
// followers_20240131_093000.txt. The time is interpreted as local time.
func ParseTimestamp(name string) (time.Time, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, Extension) {
		return time.Time{}, false
	}
	base = strings.TrimSuffix(base, Extension)
	if len(base) < len(TimestampLayout)+2 || base[len(base)-len(TimestampLayout)-1] != '_' {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(TimestampLayout, base[len(base)-len(TimestampLayout):], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// List returns the snapshots in dir with the given prefix, oldest first
func List(dir, prefix string) ([]Snapshot, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.NewInputError(dir, "cannot read snapshot directory", err)
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix+"_") {
			continue
		}
		// the timestamp must directly follow the prefix
		if len(name) != len(prefix)+1+len(TimestampLayout)+len(Extension) {
			continue
		}
		created, ok := ParseTimestamp(name)
		if !ok {
			continue
		}
		snapshots = append(snapshots, Snapshot{Path: filepath.Join(dir, name), CreatedAt: created})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].Path < snapshots[j].Path
		}
		return snapshots[i].CreatedAt.Before(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Latest returns the n newest snapshots, oldest first
func Latest(dir, prefix string, n int) ([]Snapshot, error) {
	snapshots, err := List(dir, prefix)
	if err != nil {
		return nil, err
	}
	if len(snapshots) < n {
		return nil, errs.NewInputError(dir, fmt.Sprintf("need %d snapshots, found %d", n, len(snapshots)), nil)
	}
	return snapshots[len(snapshots)-n:], nil
}
