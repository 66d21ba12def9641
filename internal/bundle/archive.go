package bundle

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// writeArchive packs every regular file under srcDir into a gzip-compressed
// tar at dstPath. Entries are stored relative to srcDir so extraction yields
// the series directory's contents without absolute paths. The archive is
// written to a temp file first and renamed into place, so readers never see
// a partial archive.
func writeArchive(dstPath, srcDir string) (files int, bytes int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".cohort-*.tar.gz.tmp")
	if err != nil {
		return 0, 0, err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(srcDir, path)
		if relErr != nil {
			return relErr
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		hdr, hdrErr := tar.FileInfoHeader(info, "")
		if hdrErr != nil {
			return hdrErr
		}
		hdr.Name = filepath.ToSlash(rel)
		if writeErr := tw.WriteHeader(hdr); writeErr != nil {
			return writeErr
		}
		in, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		n, copyErr := io.Copy(tw, in)
		closeErr := in.Close()
		if copyErr != nil {
			return copyErr
		}
		if closeErr != nil {
			return closeErr
		}
		files++
		bytes += n
		return nil
	})
	if walkErr != nil {
		err = walkErr
		return 0, 0, err
	}
	if err = tw.Close(); err != nil {
		return 0, 0, err
	}
	if err = gz.Close(); err != nil {
		return 0, 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, 0, err
	}
	if files == 0 {
		err = fmt.Errorf("no regular files under %s", srcDir)
		_ = os.Remove(tmpPath)
		return 0, 0, err
	}
	if err = os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, 0, err
	}
	return files, bytes, nil
}

func writeManifestFile(path string, summary Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
