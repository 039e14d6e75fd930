package xlbatch

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ZipDir archives the files of dir into <dir>.zip and removes dir.
func ZipDir(dir string) (string, error) {
	target := filepath.Clean(dir) + ".zip"
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", target, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	base := filepath.Base(filepath.Clean(dir))
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(base, rel))
		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if err != nil {
		zw.Close()
		return "", fmt.Errorf("zipping %s: %w", dir, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finishing %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("removing %s: %w", dir, err)
	}
	return target, nil
}
