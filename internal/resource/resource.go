// Package resource loads the images referenced by deferred placeholders.
//
// A source is fetched over HTTP(S), decoded from a data: URI, or read from
// disk relative to a base directory. Whatever the origin, the bytes must
// sniff as an image or the load fails.
package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/tdewolff/parse/v2"
)

// DefaultMaxBytes caps the size of a loaded resource.
const DefaultMaxBytes = 16 << 20

// DefaultTimeout bounds a single HTTP fetch.
const DefaultTimeout = 30 * time.Second

// Sentinel errors for resource loading.
var (
	ErrEmptySource = errors.New("empty resource source")
	ErrFetch       = errors.New("fetching resource failed")
	ErrStatus      = errors.New("unexpected HTTP status")
	ErrDataURI     = errors.New("malformed data URI")
	ErrRead        = errors.New("reading resource failed")
	ErrTooLarge    = errors.New("resource exceeds size limit")
	ErrNotImage    = errors.New("resource is not an image")
)

// Resource is a loaded image.
type Resource struct {
	Source string
	MIME   string
	Data   []byte
}

// Loader loads one resource by source reference.
type Loader interface {
	Load(ctx context.Context, src string) (*Resource, error)
}

// Fetcher is the default Loader.
type Fetcher struct {
	client   *http.Client
	baseDir  string
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithBaseDir resolves relative sources against dir.
func WithBaseDir(dir string) Option {
	return func(f *Fetcher) { f.baseDir = dir }
}

// WithMaxBytes sets the size limit. Non-positive values keep the default.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ Loader = (*Fetcher)(nil)

// Load implements Loader.
func (f *Fetcher) Load(ctx context.Context, src string) (*Resource, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(src, "data:"):
		data, err = f.decodeDataURI(src)
	case isHTTP(src):
		data, err = f.fetch(ctx, src)
	default:
		data, err = f.readFile(src)
	}
	if err != nil {
		return nil, err
	}

	mime, ok := sniffImage(data)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, describe(src))
	}
	return &Resource{Source: src, MIME: mime, Data: data}, nil
}

func (f *Fetcher) fetch(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrStatus, resp.StatusCode, src)
	}
	return f.readLimited(resp.Body, src)
}

func (f *Fetcher) decodeDataURI(src string) ([]byte, error) {
	_, data, err := parse.DataURI([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataURI, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: data URI of %d bytes", ErrTooLarge, len(data))
	}
	return data, nil
}

func (f *Fetcher) readFile(src string) ([]byte, error) {
	path := src
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, filepath.FromSlash(path))
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer func() { _ = file.Close() }()
	return f.readLimited(file, src)
}

// readLimited reads at most maxBytes, failing when r holds more.
func (f *Fetcher) readLimited(r io.Reader, src string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, src)
	}
	return data, nil
}

func isHTTP(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// sniffImage returns the MIME type of an image payload.
func sniffImage(data []byte) (string, bool) {
	if filetype.IsImage(data) {
		kind, err := filetype.Match(data)
		if err == nil {
			return kind.MIME.Value, true
		}
	}
	if isSVG(data) {
		return "image/svg+xml", true
	}
	return "", false
}

// isSVG recognizes SVG documents, which have no magic number.
func isSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// describe shortens data URIs for error messages.
func describe(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 32 {
		return src[:32] + "..."
	}
	return src
}
