package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliphost/cliphost/models"
)

const dateLayout = "2006-01-02"

var (
	// ErrNotFound is returned when a requested file does not exist under the root.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidPath is returned for date folders or filenames that do not
	// match the expected shape or try to escape the storage root.
	ErrInvalidPath = errors.New("invalid storage path")
)

var (
	dateFolderRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	legacyNameRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\.[A-Za-z0-9]+$`)
)

// Store manages the date-partitioned upload tree under a single root.
type Store struct {
	Root string
}

// New creates the storage root if absent and returns a Store for it.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{Root: root}, nil
}

// DateFolder formats t as the folder label for its local calendar day.
func DateFolder(t time.Time) string {
	return t.Format(dateLayout)
}

// NewID generates the random 128-bit identifier that names a stored file.
func NewID() string {
	return uuid.NewString()
}

// NewFilename generates a unique on-disk name for a file with the given extension.
func NewFilename(ext string) string {
	return NewID() + "." + ext
}

// IsLegacyName reports whether name looks like a bare "{uuid}.{ext}" filename
// from before links carried a date folder.
func IsLegacyName(name string) bool {
	return legacyNameRe.MatchString(name)
}

// EnsureDay creates the date folder for t if needed and returns its label.
// MkdirAll treats an already existing folder as success, so concurrent first
// uploads of the day cannot race each other into an error.
func (s *Store) EnsureDay(t time.Time) (string, error) {
	folder := DateFolder(t)
	if err := os.MkdirAll(filepath.Join(s.Root, folder), 0o755); err != nil {
		return "", fmt.Errorf("create date folder %s: %w", folder, err)
	}
	return folder, nil
}

// Save streams r into {root}/{folder}/{name}. A partially written file is
// removed when the copy fails. Returns the byte count and absolute path.
func (s *Store) Save(folder, name string, r io.Reader) (int64, string, error) {
	path := filepath.Join(s.Root, folder, name)
	out, err := os.Create(path)
	if err != nil {
		return 0, "", fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return 0, "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return 0, "", fmt.Errorf("close %s: %w", path, err)
	}
	return written, path, nil
}

// Remove deletes a stored file, ignoring files that are already gone.
func (s *Store) Remove(folder, name string) error {
	err := os.Remove(filepath.Join(s.Root, folder, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Resolve maps a date folder and filename to an absolute path, rejecting
// anything that is not a plain name inside a date-shaped folder.
func (s *Store) Resolve(folder, name string) (string, error) {
	if !dateFolderRe.MatchString(folder) {
		return "", ErrInvalidPath
	}
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.Root, folder, name), nil
}

// FindLegacy scans the date folders for a bare filename and returns the folder
// containing it. The scan is O(folders) per miss, which is the accepted
// ceiling for old links at this scale.
func (s *Store) FindLegacy(name string) (string, error) {
	if !IsLegacyName(name) {
		return "", ErrNotFound
	}
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return "", fmt.Errorf("scan storage root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || !dateFolderRe.MatchString(entry.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.Root, entry.Name(), name)); err == nil {
			return entry.Name(), nil
		}
	}
	return "", ErrNotFound
}

// SidecarMetadata is the content of a "{file}.meta.json" sidecar written next
// to an upload when metadata preservation is enabled.
type SidecarMetadata struct {
	MimeType   string                 `json:"mimeType"`
	ClientType string                 `json:"clientType"`
	Size       int64                  `json:"size"`
	UploadedAt time.Time              `json:"uploadedAt"`
	Player     *models.PlayerMetadata `json:"player,omitempty"`
}

// WriteMetadata writes the sidecar for the file at path.
func (s *Store) WriteMetadata(path string, meta SidecarMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(path+".meta.json", data, 0o644); err != nil {
		return fmt.Errorf("write metadata sidecar: %w", err)
	}
	return nil
}
