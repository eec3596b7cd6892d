// Package download exposes secure file download actions. Output paths are
// always re-anchored under the collection workspace (caller-supplied absolute
// paths are not honoured), downloads stream through a temporary file next to
// the target, and a byte ceiling is enforced both from the Content-Length
// pre-check and while copying.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aretw0/workbench"
)

const (
	defaultTimeout     = 3 * time.Minute
	defaultMaxFileSize = 1 << 30 // 1 GiB
)

// baseHeaders are sent with every download request; caller headers are
// merged on top.
var baseHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/91.0.4472.124 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
}

// Result is the structured outcome of one download operation.
type Result struct {
	URL             string              `json:"url"`
	FilePath        string              `json:"file_path"`
	Success         bool                `json:"success"`
	FileSizeBytes   int64               `json:"file_size_bytes,omitempty"`
	DurationSeconds float64             `json:"duration_seconds"`
	Timestamp       string              `json:"timestamp"`
	StatusCode      int                 `json:"status_code,omitempty"`
	ContentType     string              `json:"content_type,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
	ErrorKind       workbench.ErrorKind `json:"error_kind,omitempty"`
}

// Collection provides the download action set.
type Collection struct {
	*workbench.Base
	httpc       *http.Client
	maxFileSize int64
}

// Option configures a Collection.
type Option func(*Collection)

// WithMaxFileSize overrides the download byte ceiling.
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

// NewCollection builds the download collection. No extension restriction:
// any file type may be saved, the sandbox constrains only where.
func NewCollection(cfg workbench.Config, opts ...Option) (*Collection, error) {
	base, err := workbench.NewBase(cfg, "download")
	if err != nil {
		return nil, err
	}
	c := &Collection{
		Base: base,
		// Per-request deadlines come from the invocation context.
		httpc:       &http.Client{},
		maxFileSize: defaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Logger().Info("download service initialized", "workspace", c.Workspace())
	return c, nil
}

// Actions returns the registration table.
func (c *Collection) Actions() []workbench.Action {
	return []workbench.Action{
		{
			Name:        "download_file",
			Description: "Download a file from an HTTP/HTTPS URL into the workspace, with options for timeout, overwrite and custom headers.",
			Params: []workbench.Param{
				{Name: "url", Type: workbench.ParamString, Description: "URL of the file to download.", Required: true},
				{Name: "output_path", Type: workbench.ParamString, Description: "File path to save the download, relative to the workspace.", Required: true},
				{Name: "timeout_seconds", Type: workbench.ParamNumber, Description: "Download timeout in seconds."},
				{Name: "overwrite", Type: workbench.ParamBoolean, Description: "Overwrite the file if it already exists."},
				{Name: "headers", Type: workbench.ParamObject, Description: "Custom headers for the download request."},
				{Name: "output_format", Type: workbench.ParamString, Description: "Output format: 'markdown', 'json' or 'text'."},
			},
			Handler: c.downloadFile,
		},
		{
			Name:        "download_capabilities",
			Description: "Describe the download service capabilities and current configuration.",
			Handler:     c.capabilities,
		},
	}
}

type downloadArgs struct {
	URL            string            `mapstructure:"url"`
	OutputPath     string            `mapstructure:"output_path"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	Overwrite      bool              `mapstructure:"overwrite"`
	Headers        map[string]string `mapstructure:"headers"`
	OutputFormat   string            `mapstructure:"output_format"`
}

func (c *Collection) downloadFile(ctx context.Context, args map[string]any) workbench.Response {
	var a downloadArgs
	if err := workbench.DecodeArgs(args, &a); err != nil {
		return workbench.FromError(err)
	}
	if err := validateURL(a.URL); err != nil {
		return workbench.FromError(err)
	}

	// All path decisions happen before any network I/O.
	finalPath, err := c.Sandbox().SecureOutputPath(a.OutputPath)
	if err != nil {
		c.Logger().Warn("output path rejected", "path", a.OutputPath, "err", err)
		return workbench.FromError(err)
	}
	if _, err := os.Stat(finalPath); err == nil && !a.Overwrite {
		return workbench.Failure(workbench.KindValidation,
			fmt.Sprintf("file already exists at %q, set overwrite to replace it", finalPath))
	}

	timeout := defaultTimeout
	if a.TimeoutSeconds > 0 {
		timeout = time.Duration(a.TimeoutSeconds) * time.Second
	}

	c.Logger().Info("initiating download", "url", a.URL, "path", finalPath)
	res := c.fetch(ctx, a.URL, finalPath, timeout, a.Headers)
	if !res.Success {
		c.Logger().Warn("download failed", "url", a.URL, "kind", res.ErrorKind, "err", res.ErrorMessage)
		return workbench.Failure(res.ErrorKind, res.ErrorMessage)
	}

	c.Logger().Info("download completed", "url", a.URL, "bytes", res.FileSizeBytes)
	return workbench.SuccessWithMetadata(formatResult(res, a.OutputFormat), res.metadata())
}

// fetch performs the single GET round trip and streams the body to a
// temporary file next to the target, renaming on success so a partial
// download never lands at the final path.
func (c *Collection) fetch(ctx context.Context, rawURL, dest string, timeout time.Duration, extra map[string]string) Result {
	start := time.Now()
	res := Result{
		URL:       rawURL,
		FilePath:  dest,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	fail := func(kind workbench.ErrorKind, format string, args ...any) Result {
		res.Success = false
		res.ErrorKind = kind
		res.ErrorMessage = fmt.Sprintf(format, args...)
		res.DurationSeconds = time.Since(start).Seconds()
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(workbench.KindValidation, "cannot build request: %v", err)
	}
	for k, v := range baseHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fail(workbench.KindUpstream, "network error: %v", err)
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")

	if resp.StatusCode >= 400 {
		return fail(workbench.KindUpstream, "HTTP %d fetching %s", resp.StatusCode, rawURL)
	}
	if resp.ContentLength > c.maxFileSize {
		return fail(workbench.KindSizeLimit,
			"content length %d exceeds the maximum of %d bytes", resp.ContentLength, c.maxFileSize)
	}

	tmpPath := dest + ".part"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fail(workbench.KindInternal, "cannot create output file: %v", err)
	}

	// LimitReader gives one extra byte so an over-limit body is detectable
	// without reading it all.
	n, copyErr := io.Copy(f, io.LimitReader(resp.Body, c.maxFileSize+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		os.Remove(tmpPath)
		return fail(workbench.KindUpstream, "download interrupted: %v", copyErr)
	case closeErr != nil:
		os.Remove(tmpPath)
		return fail(workbench.KindInternal, "cannot finalize output file: %v", closeErr)
	case n > c.maxFileSize:
		os.Remove(tmpPath)
		return fail(workbench.KindSizeLimit, "download exceeded the maximum of %d bytes", c.maxFileSize)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fail(workbench.KindInternal, "cannot move download into place: %v", err)
	}

	res.Success = true
	res.FileSizeBytes = n
	res.DurationSeconds = time.Since(start).Seconds()
	return res
}

func (c *Collection) capabilities(ctx context.Context, args map[string]any) workbench.Response {
	meta := map[string]any{
		"supported_schemes":   []string{"http", "https"},
		"supported_formats":   []string{"markdown", "json", "text"},
		"default_timeout":     defaultTimeout.String(),
		"max_file_size_bytes": c.maxFileSize,
		"workspace":           c.Workspace(),
	}
	return workbench.SuccessWithMetadata(formatCapabilities(c.Workspace(), c.maxFileSize), meta)
}

// validateURL checks scheme and host; only http and https are downloadable.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return workbench.Validationf("invalid URL format: %v", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return workbench.Validationf("URL must include a scheme (http:// or https://)")
	}
	if scheme != "http" && scheme != "https" {
		return workbench.Validationf("unsupported URL scheme %q, supported: http, https", u.Scheme)
	}
	if u.Host == "" {
		return workbench.Validationf("URL must include a valid host")
	}
	return nil
}

func (r Result) metadata() map[string]any {
	return map[string]any{
		"url":              r.URL,
		"file_path":        r.FilePath,
		"file_size_bytes":  r.FileSizeBytes,
		"duration_seconds": r.DurationSeconds,
		"timestamp":        r.Timestamp,
		"status_code":      r.StatusCode,
		"content_type":     r.ContentType,
	}
}
