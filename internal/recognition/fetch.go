package recognition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DefaultFetchTimeout = 10 * time.Second

	maxModelBytes = 64 << 20
)

// Fetcher loads DenseFormat models from http(s) URLs, file URLs or local
// paths. References without a scheme are resolved against BaseURL when it
// is set.
type Fetcher struct {
	Client  *http.Client
	BaseURL string
	Timeout time.Duration
}

// Resolve turns a model reference into a URL or local path.
func (f *Fetcher) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty model reference")
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return ref, nil
	}
	if base := strings.TrimSpace(f.BaseURL); base != "" {
		return url.JoinPath(base, ref)
	}
	return ref, nil
}

// Load fetches and parses the model at ref. Every failure is a
// *ModelLoadError; deadline expiry is reported as KindTimeout.
func (f *Fetcher) Load(ctx context.Context, ref string) (Classifier, error) {
	uri, err := f.Resolve(ref)
	if err != nil {
		return nil, &ModelLoadError{URI: ref, Kind: KindFetch, Err: err}
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := f.open(ctx, uri)
	if err != nil {
		return nil, f.classify(ctx, uri, KindFetch, err)
	}
	defer body.Close()

	model, err := ParseDenseModel(io.LimitReader(body, maxModelBytes))
	if err != nil {
		return nil, f.classify(ctx, uri, KindParse, err)
	}
	return model, nil
}

func (f *Fetcher) open(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return os.Open(uri)
	}
	switch u.Scheme {
	case "file":
		return os.Open(u.Path)
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &statusError{code: resp.StatusCode}
	}
	return resp.Body, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

func (f *Fetcher) classify(ctx context.Context, uri string, kind LoadErrorKind, err error) error {
	var se *statusError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &se):
		kind = KindStatus
	}
	return &ModelLoadError{URI: uri, Kind: kind, Err: err}
}
