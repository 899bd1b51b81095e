package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sokinpui/blocktoggle/internal/document"
)

// BackupSuffix is appended to a file's path to name its backup.
const BackupSuffix = ".bak"

// RootMarker identifies the repository root.
const RootMarker = "pixi.toml"

// ErrNotFound is returned when the file to patch does not exist.
var ErrNotFound = errors.New("file not found")

// FindRepoRoot walks up from start to the first directory containing
// RootMarker. It returns start itself when no such directory exists.
func FindRepoRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, RootMarker)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}

// PathResolver finds absolute paths relative to a root directory.
type PathResolver struct {
	root string
}

// NewPathResolver creates a resolver for root. An empty root means the
// repository root found from the current directory.
func NewPathResolver(root string) (*PathResolver, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
		return &PathResolver{root: FindRepoRoot(wd)}, nil
	}
	abs, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return nil, fmt.Errorf("invalid root directory '%s': %w", root, err)
	}
	return &PathResolver{root: abs}, nil
}

// Root returns the resolver's root directory.
func (r *PathResolver) Root() string {
	return r.root
}

// Resolve returns p unchanged if absolute, otherwise joined to the root.
func (r *PathResolver) Resolve(p string) string {
	p = ExpandHome(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.root, p)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !hasHomePrefix(p) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func hasHomePrefix(p string) bool {
	return len(p) > 1 && p[0] == '~' && (p[1] == '/' || p[1] == filepath.Separator)
}

// NormalizeNested handles clones that produce dir/nested/... layouts: when
// dir has no marker file but dir/nested does, the nested directory is used.
func NormalizeNested(dir, nested, marker string) string {
	if nested == "" || marker == "" {
		return dir
	}
	inner := filepath.Join(dir, nested)
	if !IsDir(inner) {
		return dir
	}
	if Exists(filepath.Join(dir, marker)) || !Exists(filepath.Join(inner, marker)) {
		return dir
	}
	return inner
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReadText reads a whole file, mapping a missing file to ErrNotFound.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// LoadDocument reads path into a line store.
func LoadDocument(path string) (*document.Document, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, err
	}
	return document.Parse(text), nil
}

// WriteAtomic replaces path's content through a temporary file in the same
// directory, keeping the original file mode.
func WriteAtomic(path, content string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.WriteString(tmp, content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// BackupPath returns the backup file name for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// WriteBackup stores content next to path and returns the backup's path.
func WriteBackup(path, content string) (string, error) {
	bak := BackupPath(path)
	if err := WriteAtomic(bak, content); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return bak, nil
}

// GetFileSHA256 returns the hex SHA-256 of a file's content.
func GetFileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashString returns the hex SHA-256 of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
