package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirStore is a directory-backed artifact store.
//
// Each instance's latest draft is kept in a single file
// <dir>/<instanceID>.html, written atomically via a temp file and rename
// so a crashed write never leaves a truncated draft behind.
type DirStore struct {
	dir string
}

// NewDirStore creates a DirStore rooted at dir, creating the directory if
// needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// SaveDraft stores html as the latest draft for an instance.
func (d *DirStore) SaveDraft(_ context.Context, instanceID, html string) error {
	path, err := d.path(instanceID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, "draft-*")
	if err != nil {
		return fmt.Errorf("failed to create temp draft: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(html); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close draft: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace draft: %w", err)
	}
	return nil
}

// LatestDraft returns the most recently saved draft for an instance.
func (d *DirStore) LatestDraft(_ context.Context, instanceID string) (string, error) {
	path, err := d.path(instanceID)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read draft: %w", err)
	}
	return string(data), nil
}

// path maps an instance ID to its draft file, rejecting IDs that would
// escape the artifact directory.
func (d *DirStore) path(instanceID string) (string, error) {
	if instanceID == "" || strings.ContainsAny(instanceID, `/\`) || strings.Contains(instanceID, "..") {
		return "", fmt.Errorf("invalid instance id for artifact path: %q", instanceID)
	}
	return filepath.Join(d.dir, instanceID+".html"), nil
}
