package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubdDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubdDir("preupload")
	require.NoError(t, err)

	want := filepath.Join(tmp, "preupload")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubdDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureSubdDir("preupload")
	require.NoError(t, err)

	second, err := EnsureSubdDir("preupload")
	require.NoError(t, err)

	require.Equal(t, first, second)
	fi, err := os.Stat(second)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureSubdDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("preupload", []byte("x"), 0o660))

	_, err := EnsureSubdDir("preupload")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestEnsureSubdDir_AbsolutePath(t *testing.T) {
	want := filepath.Join(t.TempDir(), "downloads")

	got, err := EnsureSubdDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestReadUpload_SniffsContent(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	path := filepath.Join(dir, "envelope.bin")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	u, err := ReadUpload(path)
	require.NoError(t, err)
	require.Equal(t, "envelope.bin", u.Name)
	require.Equal(t, "image/png", u.MimeType)
	require.Equal(t, png, u.Data)
}

func TestReadUpload_PDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "letter.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"), 0o600))

	u, err := ReadUpload(path)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", u.MimeType)
	require.True(t, u.Scannable())
}

func TestReadUpload_PlainTextIsNotScannable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some notes"), 0o600))

	u, err := ReadUpload(path)
	require.NoError(t, err)
	require.Equal(t, "text/plain", u.MimeType)
	require.False(t, u.Scannable())
}

func TestReadUpload_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadUpload(filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)

	_, err = ReadUpload(dir)
	require.Error(t, err)
}

func TestWriteDownload_StripsDirectories(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDownload(dir, "../../etc/scan.pdf", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "scan.pdf"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("x"), b)
}

func TestWriteDownload_FallbackName(t *testing.T) {
	for _, name := range []string{"", "  ", ".", "..", "../..", "/"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			path, err := WriteDownload(dir, name, []byte("pdf"))
			require.NoError(t, err)
			require.Equal(t, filepath.Join(dir, "attachment"), path)

			b, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, []byte("pdf"), b)
		})
	}
}
