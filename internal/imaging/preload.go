// Package imaging loads user photos and rasterizes case designs.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	// Uploaded photos are PNG or JPEG.
	_ "image/jpeg"
	_ "image/png"
)

// DefaultLoadTimeout bounds how long a source image may take to arrive.
const DefaultLoadTimeout = 10 * time.Second

// maxImageBytes caps how much image data Preload will read.
const maxImageBytes = 16 << 20

// ErrLoadTimeout reports that the image did not arrive within the load
// timeout. Distinct from LoadError so callers can tell a hung fetch from a
// broken resource.
var ErrLoadTimeout = errors.New("image load timed out")

// LoadError reports that a source image could not be fetched or decoded.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load image %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SourceImage is a successfully loaded and decoded user photo.
type SourceImage struct {
	Image  image.Image
	Format string
	Width  int
	Height int
}

// HostPolicy decides how image URLs are rewritten before fetching. URLs on a
// known image host pass through unmodified; ProxyTemplate, when set, routes
// everything else through a CORS proxy by substituting %s with the escaped
// original URL. The default policy rewrites nothing.
type HostPolicy struct {
	ImageHosts    []string
	ProxyTemplate string
}

// IsImageHost reports whether rawURL points at one of the known image hosts.
func (p HostPolicy) IsImageHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := u.Hostname()
	for _, h := range p.ImageHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// RewriteURL applies the proxy policy to rawURL.
func (p HostPolicy) RewriteURL(rawURL string) string {
	if rawURL == "" || p.ProxyTemplate == "" || p.IsImageHost(rawURL) {
		return rawURL
	}
	return fmt.Sprintf(p.ProxyTemplate, url.QueryEscape(rawURL))
}

// Loader fetches and decodes source images.
type Loader struct {
	client  *http.Client
	policy  HostPolicy
	timeout time.Duration
	logger  *slog.Logger
}

// LoaderConfig holds configuration for a Loader.
type LoaderConfig struct {
	Client  *http.Client
	Policy  HostPolicy
	Timeout time.Duration // Optional: defaults to DefaultLoadTimeout
}

// NewLoader creates a new image loader.
func NewLoader(cfg LoaderConfig, logger *slog.Logger) *Loader {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultLoadTimeout
	}

	return &Loader{
		client:  client,
		policy:  cfg.Policy,
		timeout: timeout,
		logger:  logger,
	}
}

// Preload fetches rawURL and decodes it into a SourceImage. It fails with
// ErrLoadTimeout when the deadline elapses and with a LoadError for any other
// fetch or decode failure.
func (l *Loader) Preload(ctx context.Context, rawURL string) (*SourceImage, error) {
	target := l.policy.RewriteURL(rawURL)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &LoadError{URL: target, Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return nil, fmt.Errorf("fetch %s: %w", target, ErrLoadTimeout)
		}
		return nil, &LoadError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{URL: target, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	img, format, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("decode %s: %w", target, ErrLoadTimeout)
		}
		return nil, &LoadError{URL: target, Err: err}
	}

	bounds := img.Bounds()
	l.logger.Debug("image_preloaded",
		"url", target,
		"format", format,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
	)

	return &SourceImage{
		Image:  img,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
