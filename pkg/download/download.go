package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

var (
	// ErrTooLarge is returned when the body exceeds Options.MaxSize
	ErrTooLarge = errors.New("download exceeds maximum size")
	// ErrNotMedia is returned when ValidateAudio is set and the bytes are not audio or video
	ErrNotMedia = errors.New("downloaded content is not audio or video")
)

const (
	partialSuffix = ".part"
	// leaves room under the usual 255 byte limit for temp and copy suffixes
	maxNameBytes = 200
)

// Options configures the download behavior
type Options struct {
	MaxSize       int64         // Maximum file size in bytes (0 = no limit)
	Timeout       time.Duration // Download timeout
	ProgressFunc  ProgressFunc  // Optional progress callback
	UserAgent     string        // User agent string
	ValidateAudio bool          // Reject content that is not audio or video
}

// ProgressFunc is called during download to report progress. total is -1
// when the server sent no Content-Length.
type ProgressFunc func(downloaded, total int64)

// DefaultOptions returns default download options
func DefaultOptions() Options {
	return Options{
		MaxSize:       500 * 1024 * 1024, // 500MB default max
		Timeout:       10 * time.Minute,
		UserAgent:     "castsync/1.0",
		ValidateAudio: true,
	}
}

// Result contains information about a successful download
type Result struct {
	FilePath     string    // Final path of the file
	MediaType    string    // Media type detected from the content
	Extension    string    // Extension used for FilePath, with leading dot
	Size         int64     // Size in bytes
	ETag         string    // ETag header if present
	LastModified time.Time // Last-Modified header if present
}

// Downloader fetches episode audio into a directory
type Downloader struct {
	client  *http.Client
	options Options
}

// NewDownloader creates a new downloader with the given options
func NewDownloader(options Options) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true, // Don't compress audio
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// Download streams rawURL into dir as <name><ext>, where ext comes from the
// detected media type or, failing that, the URL. The file only appears under
// its final name once it is complete.
func (d *Downloader) Download(ctx context.Context, rawURL, dir, name string) (*Result, error) {
	log := logrus.WithFields(logrus.Fields{"url": rawURL, "dir": dir})
	log.Debug("starting download")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if d.options.UserAgent != "" {
		req.Header.Set("User-Agent", d.options.UserAgent)
	}
	req.Header.Set("Accept", "audio/*,video/*,*/*")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if d.options.MaxSize > 0 && resp.ContentLength > d.options.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, resp.ContentLength, d.options.MaxSize)
	}

	tmp, err := os.CreateTemp(dir, SanitizeFilename(name)+"_*"+partialSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := d.copy(resp.Body, tmp, resp.ContentLength)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	mtype, err := mimetype.DetectFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("detecting media type: %w", err)
	}
	if d.options.ValidateAudio && !isMedia(mtype) {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %s", ErrNotMedia, mtype.String())
	}

	ext := mtype.Extension()
	if ext == "" || !isMedia(mtype) {
		ext = extensionFromURL(rawURL)
	}

	finalPath, err := freePath(dir, SanitizeFilename(name), ext)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("moving download into place: %w", err)
	}

	result := &Result{
		FilePath:  finalPath,
		MediaType: mtype.String(),
		Extension: ext,
		Size:      written,
		ETag:      resp.Header.Get("ETag"),
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		if t, err := http.ParseTime(lastMod); err == nil {
			result.LastModified = t
		}
	}

	log.WithFields(logrus.Fields{
		"path":  finalPath,
		"bytes": written,
		"type":  result.MediaType,
	}).Info("download complete")
	return result, nil
}

func (d *Downloader) copy(src io.Reader, dst io.Writer, total int64) (int64, error) {
	reader := src
	if d.options.ProgressFunc != nil {
		reader = &progressReader{
			reader:   src,
			total:    total,
			callback: d.options.ProgressFunc,
		}
	}

	// One byte past the limit tells an oversized body apart from an exact fit
	if d.options.MaxSize > 0 {
		reader = io.LimitReader(reader, d.options.MaxSize+1)
	}

	written, err := io.Copy(dst, reader)
	if err != nil {
		return written, fmt.Errorf("failed to download: %w", err)
	}
	if d.options.MaxSize > 0 && written > d.options.MaxSize {
		return written, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, d.options.MaxSize)
	}
	return written, nil
}

// freePath picks dir/base+ext, or base (2)+ext and so on when episodes share a
// title, so an earlier download is never replaced.
func freePath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for n := 2; n <= 1000; n++ {
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
	return "", fmt.Errorf("too many downloads named %q in %s", base, dir)
}

// CleanupPartials removes unfinished downloads in dir older than maxAge.
func CleanupPartials(dir string, maxAge time.Duration) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+partialSuffix))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	var removed int
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		logrus.WithField("dir", dir).Debugf("cleaned up %d partial downloads", removed)
	}
	return removed, nil
}

// SanitizeFilename turns an episode title into a portable file name.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			if !lastUnderscore {
				b.WriteRune('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}

	cleaned := strings.Trim(strings.TrimSpace(b.String()), ".")
	if len(cleaned) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = strings.TrimSpace(cleaned[:cut])
	}
	if cleaned == "" || cleaned == "_" {
		return "episode"
	}
	return cleaned
}

func isMedia(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		s := m.String()
		if strings.HasPrefix(s, "audio/") || strings.HasPrefix(s, "video/") || s == "application/ogg" {
			return true
		}
	}
	return false
}

func extensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if isValidAudioExtension(strings.TrimPrefix(ext, ".")) {
		return ext
	}
	return ""
}

// isValidAudioExtension checks if extension is valid for audio files
func isValidAudioExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case "mp3", "m4a", "aac", "ogg", "wav", "flac", "opus", "webm", "mp4":
		return true
	}
	return false
}

// progressReader wraps a reader to report progress
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	callback   ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.downloaded += int64(n)
		pr.callback(pr.downloaded, pr.total)
	}
	return n, err
}
