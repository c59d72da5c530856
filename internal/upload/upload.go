// Package upload validates image files and copies them into a local assets
// directory, returning a URL the editor can embed. It stands in for a remote
// object store behind the same contract: validate, store, hand back a
// location plus a description.
package upload

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxAssetSize is the default upload size cap.
const MaxAssetSize = 5 * 1024 * 1024

var (
	// ErrMissingAsset is returned when no file was provided.
	ErrMissingAsset = errors.New("upload: no file provided")

	// ErrAssetTooLarge is returned when the file exceeds the size cap.
	ErrAssetTooLarge = errors.New("upload: file exceeds size limit")

	// ErrUnsupportedAssetType is returned for non-image files.
	ErrUnsupportedAssetType = errors.New("upload: unsupported file type")
)

// allowedTypes are the image MIME types the editor can embed.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Result describes a stored asset.
type Result struct {
	// URL locates the stored copy.
	URL string
	// Description is the file's base name, used as the embed's fallback
	// description.
	Description string
}

// LocalStore copies validated images into a directory on disk.
type LocalStore struct {
	dir     string
	maxSize int64
}

// NewLocalStore builds a store rooted at dir. maxSize <= 0 uses the default
// cap.
func NewLocalStore(dir string, maxSize int64) *LocalStore {
	if maxSize <= 0 {
		maxSize = MaxAssetSize
	}
	return &LocalStore{dir: dir, maxSize: maxSize}
}

// Store validates the file at path and copies it into the assets directory
// under a fresh name. Validation failures leave the store untouched.
func (s *LocalStore) Store(path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, ErrMissingAsset
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingAsset, path)
		}
		return Result{}, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s is a directory", ErrMissingAsset, path)
	}
	if info.Size() > s.maxSize {
		return Result{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrAssetTooLarge, info.Size(), s.maxSize)
	}

	// Sniff the actual content type; extensions lie.
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("detect file type: %w", err)
	}
	if !allowedTypes[mtype.String()] {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedAssetType, mtype.String())
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return Result{}, fmt.Errorf("create assets dir: %w", err)
	}

	name, err := assetName(mtype.Extension())
	if err != nil {
		return Result{}, fmt.Errorf("generate asset name: %w", err)
	}
	dst := filepath.Join(s.dir, name)
	if err := copyFile(path, dst); err != nil {
		return Result{}, fmt.Errorf("store asset: %w", err)
	}

	return Result{
		URL:         "file://" + dst,
		Description: filepath.Base(path),
	}, nil
}

// assetName generates a random file name with the sniffed extension.
func assetName(ext string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b) + ext, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
