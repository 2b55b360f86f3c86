package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ProgressFunc reports download progress: bytesDownloaded, totalBytes.
// total is zero or negative when the size is unknown.
type ProgressFunc func(downloaded, total int64)

// Download fetches url into dst. The body is written to dst+".part" and
// renamed on success, so dst never holds a partial file. sizeHint is used as
// the total when the server sends no Content-Length.
func Download(ctx context.Context, client *http.Client, url, dst string, sizeHint int64, progressFn ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "qboxup-updater")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := dst + ".part"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := true
	defer func() {
		_ = f.Close()
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	total := resp.ContentLength
	if total <= 0 {
		total = sizeHint
	}

	if err := copyWithProgress(f, resp.Body, total, progressFn); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanup = false
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, progressFn ProgressFunc) error {
	if progressFn == nil {
		_, err := io.Copy(dst, src)
		return err
	}

	buf := make([]byte, 32*1024)
	var downloaded int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}
			downloaded += int64(n)
			progressFn(downloaded, total)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
