package provision

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tarEntry describes one entry of a test package.
type tarEntry struct {
	name    string
	body    string
	mode    int64
	typ     byte
	linkTgt string
}

// writeToolPackage writes a gzipped tarball to a temp file and returns its path.
func writeToolPackage(t *testing.T, entries []tarEntry) string {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		typ := e.typ
		if typ == 0 {
			typ = tar.TypeReg
		}
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     e.mode,
			Size:     int64(len(e.body)),
			Typeflag: typ,
			Linkname: e.linkTgt,
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if typ == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	pkgPath := filepath.Join(t.TempDir(), "smtools-linux-x64.tar.gz")
	require.NoError(t, os.WriteFile(pkgPath, buf.Bytes(), 0o600))
	return pkgPath
}

func TestExtractStripsWrapperDirectory(t *testing.T) {
	t.Parallel()

	pkgPath := writeToolPackage(t, []tarEntry{
		{name: "smtools-linux-x64/", typ: tar.TypeDir, mode: 0o755},
		{name: "smtools-linux-x64/smctl", body: "#!/bin/sh\n", mode: 0o755},
		{name: "smtools-linux-x64/lib/pkcs11.so", body: "lib", mode: 0o644},
	})

	installDir := t.TempDir()
	i := New(nil, "https://example.test", "k", installDir, WithPlatform("linux"))

	require.NoError(t, i.extract(context.Background(), pkgPath))

	info, err := os.Stat(filepath.Join(installDir, "smctl"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	_, err = os.Stat(filepath.Join(installDir, "lib", "pkcs11.so"))
	assert.NoError(t, err)
}

func TestExtractFlatPackage(t *testing.T) {
	t.Parallel()

	pkgPath := writeToolPackage(t, []tarEntry{
		{name: "smctl", body: "#!/bin/sh\n", mode: 0o755},
	})

	installDir := t.TempDir()
	i := New(nil, "https://example.test", "k", installDir, WithPlatform("linux"))

	require.NoError(t, i.extract(context.Background(), pkgPath))

	_, err := os.Stat(filepath.Join(installDir, "smctl"))
	assert.NoError(t, err)
}

func TestExtractRejectsUnsafePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry tarEntry
	}{
		{
			name:  "path traversal",
			entry: tarEntry{name: "pkg/../../evil", body: "x", mode: 0o644},
		},
		{
			name:  "escaping symlink target",
			entry: tarEntry{name: "pkg/link", typ: tar.TypeSymlink, linkTgt: "../../etc/passwd"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pkgPath := writeToolPackage(t, []tarEntry{tt.entry})

			i := New(nil, "https://example.test", "k", t.TempDir(), WithPlatform("linux"))
			err := i.extract(context.Background(), pkgPath)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unsafe")
		})
	}
}

func TestExtractHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	pkgPath := writeToolPackage(t, []tarEntry{
		{name: "pkg/smctl", body: "x", mode: 0o755},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	i := New(nil, "https://example.test", "k", t.TempDir(), WithPlatform("linux"))
	err := i.extract(ctx, pkgPath)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStripLeadingComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry string
		isDir bool
		want  string
	}{
		{name: "wrapped file", entry: "smtools-linux-x64/smctl", want: "smctl"},
		{name: "wrapped nested file", entry: "smtools-linux-x64/lib/a.so", want: "lib/a.so"},
		{name: "wrapper dir itself", entry: "smtools-linux-x64", isDir: true, want: ""},
		{name: "top-level file", entry: "smctl", want: "smctl"},
		{name: "nested dir keeps lower components", entry: "pkg/lib", isDir: true, want: "lib"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stripLeadingComponent(tt.entry, tt.isDir))
		})
	}
}
