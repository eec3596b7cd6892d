// Package media exposes file inspection actions: content-based MIME
// detection and a unified fetch that resolves either a URL or a workspace
// path to a local file.
package media

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/aretw0/workbench"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxFileSize = 100 << 20 // 100 MiB

	fetchDirName = "fetched"
)

// Collection provides the media inspection action set.
type Collection struct {
	*workbench.Base
	httpc       *http.Client
	maxFileSize int64
}

// Option configures a Collection.
type Option func(*Collection)

// WithMaxFileSize overrides the fetch byte ceiling.
func WithMaxFileSize(n int64) Option {
	return func(c *Collection) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// WithHTTPClient injects a custom HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Collection) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

// NewCollection builds the media collection. No extension restriction: any
// file may be inspected.
func NewCollection(cfg workbench.Config, opts ...Option) (*Collection, error) {
	base, err := workbench.NewBase(cfg, "media")
	if err != nil {
		return nil, err
	}
	c := &Collection{
		Base:        base,
		httpc:       &http.Client{},
		maxFileSize: defaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Logger().Info("media inspection service initialized", "workspace", c.Workspace())
	return c, nil
}

// Actions returns the registration table.
func (c *Collection) Actions() []workbench.Action {
	return []workbench.Action{
		{
			Name:        "detect_mime_type",
			Description: "Detect the MIME type of a workspace file from its content.",
			Params: []workbench.Param{
				{Name: "file_path", Type: workbench.ParamString, Description: "Path to the file, relative to the workspace.", Required: true},
			},
			Handler: c.detectMimeType,
		},
		{
			Name:        "fetch_file",
			Description: "Resolve a source to a local file: downloads URLs into the workspace, validates local paths in place. Returns the local path and detected MIME type.",
			Params: []workbench.Param{
				{Name: "source", Type: workbench.ParamString, Description: "HTTP/HTTPS URL or workspace file path.", Required: true},
				{Name: "max_size_mb", Type: workbench.ParamNumber, Description: "Byte ceiling for this fetch, in megabytes."},
				{Name: "timeout_seconds", Type: workbench.ParamNumber, Description: "Fetch timeout in seconds."},
			},
			Handler: c.fetchFile,
		},
	}
}

func (c *Collection) detectMimeType(ctx context.Context, args map[string]any) workbench.Response {
	var a struct {
		FilePath string `mapstructure:"file_path"`
	}
	if err := workbench.DecodeArgs(args, &a); err != nil {
		return workbench.FromError(err)
	}

	path, err := c.Sandbox().ValidateFilePath(a.FilePath)
	if err != nil {
		return workbench.FromError(err)
	}

	mimeType, ext := sniff(path)
	stat, err := os.Stat(path)
	if err != nil {
		return workbench.FromError(workbench.Internalf("cannot stat file: %v", err))
	}

	meta := map[string]any{
		"file_path":       path,
		"mime_type":       mimeType,
		"extension":       ext,
		"file_size_bytes": stat.Size(),
	}
	return workbench.SuccessWithMetadata(mimeType, meta)
}

type fetchArgs struct {
	Source         string `mapstructure:"source"`
	MaxSizeMB      int    `mapstructure:"max_size_mb"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (c *Collection) fetchFile(ctx context.Context, args map[string]any) workbench.Response {
	var a fetchArgs
	if err := workbench.DecodeArgs(args, &a); err != nil {
		return workbench.FromError(err)
	}
	if a.Source == "" {
		return workbench.FromError(workbench.Validationf("source cannot be empty"))
	}

	timeout := defaultTimeout
	if a.TimeoutSeconds > 0 {
		timeout = time.Duration(a.TimeoutSeconds) * time.Second
	}
	maxBytes := c.maxFileSize
	if a.MaxSizeMB > 0 {
		maxBytes = int64(a.MaxSizeMB) << 20
	}

	local := a.Source
	fetched := false
	if isHTTP(a.Source) {
		var err error
		local, err = c.download(ctx, a.Source, timeout, maxBytes)
		if err != nil {
			c.Logger().Warn("fetch failed", "source", a.Source, "err", err)
			return workbench.FromError(err)
		}
		fetched = true
	}

	resolved, err := c.Sandbox().ValidateFilePath(local)
	if err != nil {
		return workbench.FromError(err)
	}

	// Local sources get the same ceiling as downloads.
	if !fetched {
		stat, err := os.Stat(resolved)
		if err != nil {
			return workbench.FromError(workbench.Internalf("cannot stat file: %v", err))
		}
		if stat.Size() > maxBytes {
			return workbench.FromError(workbench.SizeLimitf(
				"file size %d exceeds the maximum of %d bytes", stat.Size(), maxBytes))
		}
	}

	mimeType, _ := sniff(resolved)
	meta := map[string]any{
		"source":    a.Source,
		"file_path": resolved,
		"fetched":   fetched,
		"mime_type": mimeType,
	}
	return workbench.SuccessWithMetadata(resolved, meta)
}

// download streams a URL into <workspace>/fetched with a fresh name that
// keeps the source extension. The byte ceiling is checked against
// Content-Length before the body is read and again while copying.
func (c *Collection) download(ctx context.Context, rawURL string, timeout time.Duration, maxBytes int64) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", workbench.Validationf("invalid URL format: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// HEAD pre-check. Servers that reject HEAD still get the copy-side guard.
	if head, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil); err == nil {
		if resp, err := c.httpc.Do(head); err == nil {
			resp.Body.Close()
			if resp.ContentLength > maxBytes {
				return "", workbench.SizeLimitf(
					"remote file size %d exceeds the maximum of %d bytes", resp.ContentLength, maxBytes)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", workbench.Validationf("cannot build request: %v", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", workbench.Upstreamf("network error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", workbench.Upstreamf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}
	if resp.ContentLength > maxBytes {
		return "", workbench.SizeLimitf(
			"content length %d exceeds the maximum of %d bytes", resp.ContentLength, maxBytes)
	}

	name := uuid.NewString()
	if ext := path.Ext(u.Path); ext != "" {
		name += ext
	}
	dest, err := c.Sandbox().SecureOutputPath(filepath.Join(fetchDirName, name))
	if err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", workbench.Internalf("cannot create output file: %v", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(resp.Body, maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		os.Remove(dest)
		return "", workbench.Upstreamf("download interrupted: %v", copyErr)
	case closeErr != nil:
		os.Remove(dest)
		return "", workbench.Internalf("cannot finalize output file: %v", closeErr)
	case n > maxBytes:
		os.Remove(dest)
		return "", workbench.SizeLimitf("download exceeded the maximum of %d bytes", maxBytes)
	}

	c.Logger().Info("fetched remote file", "url", rawURL, "path", dest, "bytes", n)
	return dest, nil
}

func isHTTP(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// sniff detects a file's MIME type from its content, falling back to the
// extension table when the content cannot be read, then to octet-stream.
func sniff(name string) (mimeType, ext string) {
	if m, err := mimetype.DetectFile(name); err == nil {
		return m.String(), m.Extension()
	}
	ext = strings.ToLower(filepath.Ext(name))
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt, ext
	}
	return "application/octet-stream", ext
}
