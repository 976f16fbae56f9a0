// Package jsonfile reads and atomically writes indented JSON documents.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrEmpty file exists but holds no data.
var ErrEmpty = errors.New("file is empty")

// Read decodes the file at path into v. A missing file yields os.ErrNotExist (wrapped).
func Read(path string, v any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", filepath.Base(path))
	}

	if len(payload) == 0 {
		return errors.Wrapf(ErrEmpty, "read %s", filepath.Base(path))
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return errors.Wrapf(err, "decode %s", filepath.Base(path))
	}

	return nil
}

// Write encodes v and replaces the file atomically via temp file.
func Write(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrapf(err, "write %s temp file", filepath.Base(path))
	}

	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "persist %s", filepath.Base(path))
	}

	return nil
}

// IsNotExist reports whether err comes from a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
