package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/log"
	"github.com/morikuni/failure/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GeneralInfoName is the result name of the primary call
const GeneralInfoName = "GENERAL_INFO"

// Fetcher issues one named sub-resource query
type Fetcher interface {
	Fetch(ctx context.Context, res section.Resource, ref section.Ref) section.Result
}

var _ Fetcher = (*Client)(nil)

// Fetch POSTs the resource payload for ref and returns a tagged result.
// It never returns an error: transport, status and decode failures are
// all reported through the result.
func (c *Client) Fetch(ctx context.Context, res section.Resource, ref section.Ref) section.Result {
	ctx, span := tracer.Start(ctx, "portal.Fetch", trace.WithAttributes(
		attribute.String("resource", res.Name),
		attribute.String("term", ref.Term),
		attribute.String("crn", ref.CRN),
	))
	defer span.End()

	result := c.fetch(ctx, res.Name, http.MethodPost, c.howdy+res.Path, res.Payload(ref), ref)
	if !result.OK() {
		span.SetStatus(codes.Error, result.Reason)
	}
	return result
}

// GeneralInfo issues the primary detail call for ref. The portal answers
// 200 with an empty body for sections that do not exist, so callers must
// check the payload, not the status.
func (c *Client) GeneralInfo(ctx context.Context, ref section.Ref) section.Result {
	ctx, span := tracer.Start(ctx, "portal.GeneralInfo", trace.WithAttributes(
		attribute.String("term", ref.Term),
		attribute.String("crn", ref.CRN),
	))
	defer span.End()

	q := url.Values{}
	q.Set("term", ref.Term)
	q.Set("subject", "")
	q.Set("course", "")
	q.Set("crn", ref.CRN)
	return c.fetch(ctx, GeneralInfoName, http.MethodGet, c.howdy+generalInfoPath+"?"+q.Encode(), nil, ref)
}

func (c *Client) fetch(ctx context.Context, name, method, u string, body any, ref section.Ref) section.Result {
	logger := log.Logger.With("resource", name, "term", ref.Term, "crn", ref.CRN)

	if err := ref.Validate(); err != nil {
		return section.Failed(name, section.StatusException, 0, reason(err))
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newJSONRequest(ctx, method, u, body)
	if err != nil {
		return section.Failed(name, section.StatusException, 0, reason(err))
	}

	payload, status, err := c.doJSON(req)
	if err != nil {
		logger.Warn("Sub-resource fetch failed", "status", status, "error", reason(err))
		if failure.Is(err, ErrHTTPStatus) {
			return section.Failed(name, section.StatusHTTPError, status, fmt.Sprintf("status %d", status))
		}
		return section.Failed(name, section.StatusException, status, reason(err))
	}

	logger.Debug("Sub-resource fetched")
	return section.Succeeded(name, DeepDecode(payload))
}
