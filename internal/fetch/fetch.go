// Package fetch downloads playlists and guide files over HTTP with retry,
// resume and progress reporting.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/avfs/avfs"
	"github.com/avfs/avfs/vfs/osfs"
	"github.com/sirupsen/logrus"

	"github.com/streamhaven/iptvcat/internal/epg"
	"github.com/streamhaven/iptvcat/internal/httpclient"
	"github.com/streamhaven/iptvcat/internal/metrics"
)

const (
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultConnectTimeout = 30 * time.Second
	DefaultReadTimeout    = 120 * time.Second
	DefaultChunkSize      = 64 * 1024
	DefaultUserAgent      = "iptvcat/1.0"
)

// ProgressFunc receives the bytes written so far and the expected total.
// total is -1 when the server did not announce a length.
type ProgressFunc func(written, total int64)

// Config tunes a Downloader. Zero values take the package defaults.
type Config struct {
	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ChunkSize      int
	UserAgent      string

	// Client overrides the HTTP client built from the timeouts above.
	Client *http.Client
	// FS is where downloaded files land. Defaults to the OS filesystem.
	FS avfs.VFS
}

// Downloader fetches remote resources to files, retrying transient failures
// and resuming partial downloads through HTTP range requests.
type Downloader struct {
	cfg    Config
	client *http.Client
	vfs    avfs.VFS
	log    *logrus.Entry
}

func New(cfg Config) *Downloader {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := cfg.Client
	if client == nil {
		client = httpclient.WithTimeouts(cfg.ConnectTimeout, cfg.ReadTimeout)
	}
	vfs := cfg.FS
	if vfs == nil {
		vfs = osfs.New()
	}
	return &Downloader{
		cfg:    cfg,
		client: client,
		vfs:    vfs,
		log:    logrus.WithField("component", "fetch"),
	}
}

// DownloadToFile fetches rawurl into dest, retrying up to MaxRetries times
// with a fixed delay between attempts. A partial file left by a failed
// attempt is resumed with a range request rather than refetched. progress
// may be nil.
func (d *Downloader) DownloadToFile(ctx context.Context, rawurl, dest string, progress ProgressFunc) error {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			metrics.DownloadRetries.Inc()
			d.log.WithError(lastErr).WithFields(logrus.Fields{
				"url":     rawurl,
				"attempt": attempt,
			}).Warn("retrying download")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.cfg.RetryDelay):
			}
		}
		if err := d.downloadOnce(ctx, rawurl, dest, progress); err != nil {
			lastErr = err
			continue
		}
		metrics.Downloads.Inc()
		return nil
	}
	return fmt.Errorf("download failed after %d attempts: %w", d.cfg.MaxRetries, lastErr)
}

func (d *Downloader) downloadOnce(ctx context.Context, rawurl, dest string, progress ProgressFunc) error {
	var offset int64
	if fi, err := d.vfs.Stat(dest); err == nil {
		offset = fi.Size()
	}

	if err := httpclient.GlobalHostLimit.Wait(ctx, rawurl); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := httpclient.DoWithRetry(ctx, d.client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	flags := os.O_WRONLY | os.O_CREATE
	switch resp.StatusCode {
	case http.StatusOK:
		// Full body, even if we asked for a range. Start over.
		offset = 0
		flags |= os.O_TRUNC
	case http.StatusPartialContent:
		flags |= os.O_APPEND
	default:
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = offset + resp.ContentLength
	}

	f, err := d.vfs.OpenFile(dest, flags, 0o644)
	if err != nil {
		return err
	}

	written := offset
	buf := make([]byte, d.cfg.ChunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				return werr
			}
			written += int64(n)
			metrics.DownloadBytes.Add(float64(n))
			if progress != nil {
				progress(written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			// Keep the partial file so the next attempt can resume.
			f.Close()
			return rerr
		}
	}
	if err := f.Close(); err != nil {
		return err
	}
	if total >= 0 && written < total {
		return fmt.Errorf("short body: got %d of %d bytes", written, total)
	}
	if progress != nil {
		progress(written, written)
	}
	return nil
}

// DownloadAndParse fetches an XMLTV guide into a temporary file, parses it
// and removes the file whether or not parsing succeeded.
func (d *Downloader) DownloadAndParse(ctx context.Context, rawurl string, progress ProgressFunc) (*epg.Data, error) {
	ext := ".xml"
	if u, err := url.Parse(rawurl); err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".gz") {
		ext = ".xml.gz"
	}
	dir := d.vfs.TempDir()
	_ = d.vfs.MkdirAll(dir, 0o755)
	tmp := d.vfs.Join(dir, fmt.Sprintf("guide-%d%s", time.Now().UnixNano(), ext))

	if err := d.DownloadToFile(ctx, rawurl, tmp, progress); err != nil {
		d.vfs.Remove(tmp)
		return nil, err
	}
	defer d.vfs.Remove(tmp)
	return epg.ParseFileFS(d.vfs, tmp)
}

// FetchString fetches a small text resource, typically an M3U playlist.
func (d *Downloader) FetchString(ctx context.Context, rawurl string) (string, error) {
	if err := httpclient.GlobalHostLimit.Wait(ctx, rawurl); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)

	resp, err := httpclient.DoWithRetry(ctx, d.client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
