package broker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/n0rdy/queuewatch/queues"

	"github.com/jonboulle/clockwork"
)

const (
	defaultScheme   = "http://"
	queuesPath      = "/queues"
	maxBodySizeByte = 8 * 1024 * 1024
)

var recognizedSchemes = []string{"http://", "https://"}

type Client struct {
	httpClient *http.Client
	clock      clockwork.Clock
}

func NewClient(timeout time.Duration, clock clockwork.Clock) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		clock:      clock,
	}
}

// NormalizeAddress prepends the plain HTTP scheme when the address carries none.
func NormalizeAddress(address string) string {
	lower := strings.ToLower(address)
	for _, scheme := range recognizedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return strings.TrimRight(address, "/")
		}
	}
	return defaultScheme + strings.TrimRight(address, "/")
}

func QueuesURL(address string) (string, error) {
	target := NormalizeAddress(address) + queuesPath

	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in %q", target)
	}
	return u.String(), nil
}

// FetchQueues performs exactly one GET against `<address>/queues`.
// Every failure is returned as a *FetchError.
func (c *Client) FetchQueues(ctx context.Context, address string) (*queues.Batch, error) {
	target, err := QueuesURL(address)
	if err != nil {
		return nil, &FetchError{Kind: AddressMalformed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Kind: AddressMalformed, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: NetworkUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Kind: HTTPStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySizeByte+1))
	if err != nil {
		return nil, &FetchError{Kind: NetworkUnreachable, Err: err}
	}
	if len(body) > maxBodySizeByte {
		return nil, &FetchError{Kind: Decode, Err: fmt.Errorf("response body exceeds %d bytes", maxBodySizeByte)}
	}

	snapshots, err := queues.Decode(body)
	if err != nil {
		return nil, &FetchError{Kind: Decode, Err: err}
	}
	return queues.NewBatch(snapshots, c.clock.Now()), nil
}
