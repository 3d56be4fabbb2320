package raster

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Resolver fetches and decodes a source reference: a data URL, an http(s)
// URL from an allowed host, an "/assets/<name>" path served from AssetDir,
// or a plain file path.
type Resolver struct {
	AssetDir string
	Client   *http.Client
	// AllowFiles permits plain filesystem paths outside AssetDir.
	AllowFiles bool
	// RemoteHosts lists the hosts ("host" or "host:port") http(s) sources
	// may be fetched from. "*" allows any host; empty disables fetching.
	RemoteHosts []string
}

// NewResolver returns a Resolver with a bounded HTTP client.
func NewResolver(assetDir string) *Resolver {
	return &Resolver{
		AssetDir: assetDir,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve decodes src. The context bounds network fetches.
func (r *Resolver) Resolve(ctx context.Context, src string) (image.Image, error) {
	switch {
	case src == "":
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)
	case IsDataURL(src):
		return DecodeDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		if !r.remoteAllowed(src) {
			return nil, fmt.Errorf("%w: remote host not allowed: %.60s", ErrUnsupportedSource, src)
		}
		return r.fetch(ctx, src)
	case strings.HasPrefix(src, "/assets/"):
		if r.AssetDir == "" {
			return nil, fmt.Errorf("%w: no asset directory for %s", ErrUnsupportedSource, src)
		}
		name := filepath.Base(strings.TrimPrefix(src, "/assets/"))
		return decodeFile(filepath.Join(r.AssetDir, name))
	case r.AllowFiles:
		return decodeFile(src)
	}
	return nil, fmt.Errorf("%w: %.40s", ErrUnsupportedSource, src)
}

func (r *Resolver) remoteAllowed(src string) bool {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return false
	}
	for _, h := range r.RemoteHosts {
		if h == "*" || strings.EqualFold(h, u.Host) || strings.EqualFold(h, u.Hostname()) {
			return true
		}
	}
	return false
}

func (r *Resolver) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	if resp.ContentLength > MaxSourceSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}
	return Decode(io.LimitReader(resp.Body, MaxSourceSize))
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
