// Package env reads optional directive values from a .env file and the
// process environment.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FileName is the dotenv file looked up in the repository root.
const FileName = ".env"

// Source looks values up in a dotenv file first loaded from the repository
// root and then in the process environment. The process environment wins.
type Source struct {
	file map[string]string
}

// Load reads root/.env if it exists. A missing file is not an error.
func Load(root string) (*Source, error) {
	path := filepath.Join(root, FileName)
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Source{file: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &Source{file: values}, nil
}

// Lookup returns the value of key and whether it was set.
func (s *Source) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	if s == nil {
		return "", false
	}
	v, ok := s.file[key]
	return v, ok && v != ""
}
