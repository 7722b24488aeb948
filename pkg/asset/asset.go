// Package asset loads background and visitor photo images.
//
// A source may be an http(s) URL, a file:// URL, a base64 or
// percent-encoded data: URL, or a plain file path. Remote sources are
// cached through a [cache.Cache] and concurrent requests for the same
// source share one download.
//
// Decoding honors EXIF orientation, so phone photos come out upright.
// Supported formats are PNG, JPEG, GIF and WebP.
package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/badgekit/pkg/cache"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/httputil"
	"github.com/matzehuels/badgekit/pkg/observability"
)

// Loader fetches and decodes images.
type Loader struct {
	client  *httputil.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	baseDir string
	logger  *log.Logger
	group   singleflight.Group
}

// Option configures a Loader.
type Option func(*Loader)

// WithClient sets the HTTP client used for remote sources.
func WithClient(c *httputil.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithCache caches remote sources in c under keys from keyer.
func WithCache(c cache.Cache, keyer cache.Keyer) Option {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
		if keyer != nil {
			l.keyer = keyer
		}
	}
}

// WithTTL sets how long remote sources stay cached.
func WithTTL(d time.Duration) Option {
	return func(l *Loader) { l.ttl = d }
}

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader. Without options it fetches with a default
// client and caches nothing.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client: httputil.NewClient(),
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		ttl:    cache.AssetTTL,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and decodes src.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	data, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode decodes image bytes, applying EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image")
	}
	return img, nil
}

// Fetch returns the raw bytes of src.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if err := errors.ValidateAssetURL(src); err != nil {
		return nil, err
	}

	switch scheme := schemeOf(src); scheme {
	case "data":
		return decodeDataURL(src)
	case "http", "https":
		return l.fetchRemote(ctx, src)
	case "file":
		u, err := url.Parse(src)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid file URL")
		}
		return l.readFile(u.Path)
	default:
		return l.readFile(src)
	}
}

func (l *Loader) fetchRemote(ctx context.Context, src string) ([]byte, error) {
	key := l.keyer.AssetKey(src)
	v, err, shared := l.group.Do(key, func() (any, error) {
		if data, ok, err := l.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "asset")
			return data, nil
		} else if err != nil {
			l.logger.Warn("asset cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "asset")

		data, err := l.client.Get(ctx, src)
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
			l.logger.Warn("asset cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "asset", len(data))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug("asset fetch shared", "src", redact(src))
	}
	return v.([]byte), nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return data, nil
}

// decodeDataURL decodes data:[<mediatype>][;base64],<data>.
func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders omit padding.
			if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed base64 data URL")
			}
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed data URL")
	}
	return []byte(data), nil
}

func schemeOf(src string) string {
	scheme, _, ok := strings.Cut(src, ":")
	if !ok || len(scheme) < 2 {
		return ""
	}
	return strings.ToLower(scheme)
}

// redact shortens data URLs for logging.
func redact(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 32 {
		return src[:32] + "…"
	}
	return src
}
