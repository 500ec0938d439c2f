package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/obs"
	"sector-partition-service/internal/ports"
	"strings"
	"time"
)

const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// OverpassProvider implements BoundaryProvider using the OpenStreetMap Overpass API.
//
// One FetchSubdivisions call issues one Overpass query selecting the
// administrative relations at the child level inside the named parent area.
// Transient failures are retried with exponential backoff up to maxAttempts.
//
// The provider is safe for concurrent use.
type OverpassProvider struct {
	session     *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	backoff     time.Duration
	// Server-side query timeout in seconds.
	queryTimeout int
}

type OverpassOption func(*OverpassProvider)

func WithHTTPClient(c *http.Client) OverpassOption {
	return func(o *OverpassProvider) { o.session = c }
}

func WithMaxAttempts(n int) OverpassOption {
	return func(o *OverpassProvider) { o.maxAttempts = n }
}

func WithBackoff(d time.Duration) OverpassOption {
	return func(o *OverpassProvider) { o.backoff = d }
}

func WithUserAgent(ua string) OverpassOption {
	return func(o *OverpassProvider) { o.userAgent = ua }
}

func NewOverpassProvider(baseURL string, timeout time.Duration, opts ...OverpassOption) (*OverpassProvider, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("overpass base url is empty")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	provider := &OverpassProvider{
		session:      &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		userAgent:    "sector-partition-service",
		maxAttempts:  3,
		backoff:      500 * time.Millisecond,
		queryTimeout: int(timeout.Seconds()),
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// FetchSubdivisions returns the child administrative areas of q.ParentName.
func (o *OverpassProvider) FetchSubdivisions(
	ctx context.Context,
	q ports.BoundaryQuery,
) (_ []domain.AdminFeature, err error) {
	defer obs.Time(ctx, "overpass.FetchSubdivisions")(&err)

	name := strings.TrimSpace(q.ParentName)
	if name == "" {
		return nil, errors.New("fetch subdivisions: parent name must be non-empty")
	}
	if q.ChildLevel <= 0 {
		return nil, fmt.Errorf("fetch subdivisions: invalid child admin level %d", q.ChildLevel)
	}

	query := buildSubdivisionQuery(name, q.ParentLevel, q.ChildLevel, o.queryTimeout)

	obs.BoundaryProviderRequestsTotal.Inc()
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, query)
	})
	if err != nil {
		obs.BoundaryProviderFailuresTotal.Inc()
		return nil, fmt.Errorf("fetch subdivisions: overpass request: %w", err)
	}
	defer resp.Body.Close()

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		obs.BoundaryProviderFailuresTotal.Inc()
		return nil, fmt.Errorf("fetch subdivisions: decode overpass response: %w", err)
	}

	// Overpass reports query errors such as timeouts inside a 200 response.
	if decoded.Remark != "" && len(decoded.Elements) == 0 && strings.Contains(decoded.Remark, "error") {
		obs.BoundaryProviderFailuresTotal.Inc()
		return nil, fmt.Errorf("fetch subdivisions: overpass remark: %s", decoded.Remark)
	}

	return decoded.features(q.ChildLevel), nil
}
