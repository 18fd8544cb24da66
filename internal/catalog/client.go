// Package catalog checks product existence against the remote product
// catalog service.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikhilarsid/review-service/internal/domain"
	"github.com/nikhilarsid/review-service/pkg/httpclient"
)

const tracerName = "github.com/nikhilarsid/review-service/internal/catalog"

// DefaultTimeout bounds a single existence check when none is configured.
const DefaultTimeout = 3 * time.Second

// Check outcomes.
const (
	outcomeFound       = "found"
	outcomeNotFound    = "not_found"
	outcomeUnavailable = "unavailable"
)

var checksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_product_checks_total",
		Help: "Product existence checks against the catalog service by outcome.",
	},
	[]string{"outcome"},
)

// Client queries GET {baseURL}/api/v1/products/{id}. It never retries on
// its own; the Doer it is given decides that.
type Client struct {
	doer    httpclient.Doer
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a catalog client. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(doer httpclient.Doer, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		doer:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// CircuitOpenFallback reports an open breaker as an unavailable catalog.
func CircuitOpenFallback(_ context.Context, err error) (*http.Response, error) {
	return nil, domain.CatalogUnavailable(err)
}

// CheckProduct returns nil when the catalog knows the product (and variant,
// if given). A 404 yields an error matching domain.ErrProductNotFound; every
// other failure, including timeouts, yields domain.ErrCatalogUnavailable.
// authorization is forwarded verbatim as the Authorization header.
func (c *Client) CheckProduct(ctx context.Context, productID, variantID, authorization string) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.CheckProduct",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("product.id", productID),
			attribute.String("product.variant_id", variantID),
		),
	)
	defer func() {
		outcome := outcomeFound
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			outcome = outcomeNotFound
		case err != nil:
			outcome = outcomeUnavailable
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("catalog.outcome", outcome))
		span.End()
		checksTotal.WithLabelValues(outcome).Inc()
	}()

	req, err := c.newRequest(ctx, productID, variantID, authorization)
	if err != nil {
		return domain.CatalogUnavailable(err)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog request failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, domain.ErrCatalogUnavailable) {
			return err
		}
		return domain.CatalogUnavailable(err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if !httpclient.IsSuccess(resp.StatusCode) && resp.StatusCode != http.StatusNotFound {
		cause := httpclient.ParseResponseError(resp, "catalog")
		c.logger.WarnContext(ctx, "unexpected catalog response",
			slog.String("product_id", productID),
			slog.Int("status", resp.StatusCode),
			slog.String("error", cause.Error()),
		)
		return domain.CatalogUnavailable(cause)
	}

	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode == http.StatusNotFound {
		return domain.ProductNotFound(productID)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, productID, variantID, authorization string) (*http.Request, error) {
	target := c.baseURL + "/api/v1/products/" + url.PathEscape(productID)
	if variantID != "" {
		target += "?" + url.Values{"variantId": {variantID}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}
