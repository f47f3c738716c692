// Package filex reads intake documents from disk and writes downloaded
// attachments back to it.
package filex

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize caps documents read for intake.
const MaxUploadSize = 20 << 20

func EnsureSubdDir(dirName string) (string, error) {
	if filepath.IsAbs(dirName) {
		if err := os.MkdirAll(dirName, 0o770); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dirName, err)
		}
		return dirName, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ReadUpload loads path and sniffs its content type from the bytes,
// falling back to the extension when sniffing is inconclusive.
func ReadUpload(path string) (*models.Upload, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxUploadSize {
		return nil, fmt.Errorf("%s is too large (%d bytes, max %d)", path, fi.Size(), MaxUploadSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &models.Upload{
		Name:     filepath.Base(path),
		MimeType: DetectType(filepath.Base(path), data),
		Data:     data,
	}, nil
}

// DetectType returns the bare media type of data, without parameters.
func DetectType(name string, data []byte) string {
	mt, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	if mt == "application/octet-stream" || mt == "text/plain" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			mt, _, _ = strings.Cut(byExt, ";")
		}
	}
	return strings.TrimSpace(mt)
}

// fallbackName is used when a stored name has no usable base component.
const fallbackName = "attachment"

// WriteDownload stores data as dir/name and returns the written path.
func WriteDownload(dir, name string, data []byte) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	switch base {
	case ".", "..", string(filepath.Separator):
		base = fallbackName
	}
	path := filepath.Join(dir, base)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
