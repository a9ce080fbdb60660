package storage

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestResolveDocumentURL(t *testing.T) {
	bucket, path, err := ResolveDocumentURL(
		"https://files.example.com/storage/v1/object/public/proc-77/submissions/abc/application.pdf",
		"proc-77",
	)
	require.NoError(t, err)
	require.Equal(t, "proc-77", bucket)
	require.Equal(t, "submissions/abc/application.pdf", path)
}

func TestResolveDocumentURLNestedPath(t *testing.T) {
	bucket, path, err := ResolveDocumentURL(
		"http://localhost:9000/storage/v1/object/public/proc-1/a/b/c/d.docx",
		"proc-1",
	)
	require.NoError(t, err)
	require.Equal(t, "proc-1", bucket)
	require.Equal(t, "a/b/c/d.docx", path)
}

func TestResolveDocumentURLRejectsShortPaths(t *testing.T) {
	_, _, err := ResolveDocumentURL("https://files.example.com/storage/v1/object", "proc-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid document URL format")
}

func TestResolveDocumentURLRejectsBadScheme(t *testing.T) {
	_, _, err := ResolveDocumentURL("ftp://files.example.com/storage/v1/object/public/b/p", "proc-1")
	require.Error(t, err)
}

func TestResolveDocumentURLRequiresProcurementID(t *testing.T) {
	_, _, err := ResolveDocumentURL("https://files.example.com/storage/v1/object/public/b/p", "")
	require.Error(t, err)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{}, zerolog.New(io.Discard))
	require.Error(t, err)
}
