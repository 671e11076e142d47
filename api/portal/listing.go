package portal

import (
	"context"
	"net/http"

	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/log"
	"github.com/morikuni/failure/v2"
)

// Classes fetches every class record of term. An empty slice with a nil
// error means the portal knows no classes for the term. The listing is
// large, so it runs under the caller's deadline only.
func (c *Client) Classes(ctx context.Context, term string) ([]section.Class, error) {
	ctx, span := tracer.Start(ctx, "portal.Classes")
	defer span.End()

	c.primeSession(ctx)

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.howdy+classesPath, map[string]string{"termCode": term})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", c.howdy+"/uPortal/p/public-class-search-ui.ctf1/max/render.uP")

	body, _, err := c.doJSON(req)
	if err != nil {
		return nil, err
	}

	rows, err := asRecords(body)
	if err != nil {
		return nil, failure.Wrap(err, failure.Context{"term": term})
	}
	classes := make([]section.Class, len(rows))
	for i, row := range rows {
		classes[i] = section.Class(DeepDecode(row).(map[string]any))
	}
	log.Debug("Fetched class listing", "term", term, "count", len(classes))
	return classes, nil
}

// Terms fetches the list of all known terms
func (c *Client) Terms(ctx context.Context) ([]section.Term, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodGet, c.howdy+termsPath, nil)
	if err != nil {
		return nil, err
	}
	body, _, err := c.doJSON(req)
	if err != nil {
		return nil, err
	}

	rows, err := asRecords(body)
	if err != nil {
		return nil, err
	}
	terms := make([]section.Term, len(rows))
	for i, row := range rows {
		terms[i] = section.Term(row)
	}
	return terms, nil
}

// primeSession obtains the session cookies the listing endpoint expects.
// Failures are ignored; the listing call reports its own errors.
func (c *Client) primeSession(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.howdy+primePath, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", userAgent)
	res, err := c.hc.Do(req)
	if err != nil {
		log.Debug("Session priming failed", "error", err)
		return
	}
	res.Body.Close()
}

func asRecords(body any) ([]map[string]any, error) {
	if body == nil {
		return []map[string]any{}, nil
	}
	list, ok := body.([]any)
	if !ok {
		return nil, failure.New(ErrDecode, failure.Message("Portal listing is not a list"))
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, failure.New(ErrDecode, failure.Message("Portal listing holds a non-object row"))
		}
		out = append(out, m)
	}
	return out, nil
}
