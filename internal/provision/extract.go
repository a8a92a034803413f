package provision

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// extract unpacks a tool package tarball into the install dir.
//
// The vendor wraps the package contents in a versioned top-level directory;
// the leading path component is stripped so the tool lands directly in the
// install dir. Entry paths must stay inside the destination.
func (i *Installer) extract(ctx context.Context, pkgPath string) error {
	f, err := os.Open(pkgPath)
	if err != nil {
		return fmt.Errorf("open package: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompress package: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read package: %w", err)
		}

		cleaned := path.Clean(strings.TrimPrefix(header.Name, "./"))
		if cleaned == "." || cleaned == "/" {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(cleaned)) {
			return fmt.Errorf("unsafe path %q in package", header.Name)
		}

		name := stripLeadingComponent(cleaned, header.Typeflag == tar.TypeDir)
		if name == "" {
			continue
		}

		dest := filepath.Join(i.installDir, filepath.FromSlash(name))
		switch header.Typeflag {
		case tar.TypeDir:
			//nolint:gosec // G115: mode from the vendor package header
			if err := os.MkdirAll(dest, fs.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := extractRegular(dest, header, tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if !filepath.IsLocal(filepath.FromSlash(header.Linkname)) {
				return fmt.Errorf("unsafe link target %q in package", header.Linkname)
			}
			if err := os.Symlink(header.Linkname, dest); err != nil && !errors.Is(err, fs.ErrExist) {
				return err
			}
		default:
			return fmt.Errorf("unsupported entry type %q for %s", header.Typeflag, header.Name)
		}
	}

	return nil
}

// extractRegular writes one regular file entry to dest.
func extractRegular(dest string, header *tar.Header, tr *tar.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	//nolint:gosec // G304: dest validated against the install dir, G115: mode from package header
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(header.Mode))
	if err != nil {
		return err
	}
	//nolint:gosec // G110: the package is a trusted vendor release, size-bounded by download
	_, copyErr := io.Copy(f, tr)
	closeErr := f.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

// stripLeadingComponent removes the first path component from a cleaned
// entry path. Top-level file entries keep their name; top-level directory
// entries map to the empty string, since they only exist to wrap the
// stripped paths.
func stripLeadingComponent(name string, isDir bool) string {
	idx := strings.Index(name, "/")
	if idx < 0 {
		if isDir {
			return ""
		}
		return name
	}
	return name[idx+1:]
}
