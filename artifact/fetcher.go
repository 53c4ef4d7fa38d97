package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"churnpredict/apperr"
	"churnpredict/monitoring"
)

// Fetcher reads the raw bytes behind a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// DefaultMaxBytes caps the size of a single artifact.
const DefaultMaxBytes = 64 << 20

var errTooLarge = errors.New("artifact exceeds size limit")

// SourceFetcher reads local files and http(s) URLs. Every failure is an
// ArtifactUnavailable error.
type SourceFetcher struct {
	client   *http.Client
	maxBytes int64
	metrics  *monitoring.Metrics
}

// NewSourceFetcher bounds HTTP fetches by timeout and every read by maxBytes.
func NewSourceFetcher(timeout time.Duration, maxBytes int64, metrics *monitoring.Metrics) *SourceFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &SourceFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		metrics:  metrics,
	}
}

// Fetch resolves locator and reads it whole.
func (f *SourceFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	src, err := Resolve(locator)
	if err != nil {
		return nil, apperr.ArtifactUnavailable(locator, err)
	}

	var data []byte
	switch src.Transport {
	case TransportHTTP:
		data, err = f.fetchHTTP(ctx, src.Target)
	default:
		data, err = f.readFile(src.Target)
	}
	if err != nil {
		f.metrics.ObserveArtifactFetch(src.Transport, "error")
		return nil, apperr.ArtifactUnavailable(locator, err)
	}
	f.metrics.ObserveArtifactFetch(src.Transport, "ok")
	return data, nil
}

func (f *SourceFetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.readLimited(file)
}

func (f *SourceFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return f.readLimited(resp.Body)
}

func (f *SourceFetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", errTooLarge, f.maxBytes)
	}
	return data, nil
}
