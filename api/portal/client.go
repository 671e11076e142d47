package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/log"
	"github.com/morikuni/failure/v2"
	"go.opentelemetry.io/otel"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:130.0) Gecko/20100101 Firefox/130.0"

var tracer = otel.Tracer("github.com/aggieseek/seatwatch/api/portal")

// Options configures a Client
type Options struct {
	HowdyBaseURL   string
	CompassBaseURL string
	// Timeout bounds each individual call. Zero means no per-call timeout.
	Timeout time.Duration
	// HTTPClient replaces the default client, mainly for tests
	HTTPClient *http.Client
}

// Client talks to the registration portal: the JSON API on Howdy and
// the server-rendered pages on Compass.
type Client struct {
	howdy   string
	compass string
	timeout time.Duration
	hc      *http.Client
}

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		// The listing endpoint only answers with a session cookie
		jar, _ := cookiejar.New(nil)
		tr := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
		hc = &http.Client{Jar: jar, Transport: log.NewTransport(tr)}
	}
	return &Client{
		howdy:   opts.HowdyBaseURL,
		compass: opts.CompassBaseURL,
		timeout: opts.Timeout,
		hc:      hc,
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) newJSONRequest(ctx context.Context, method, u string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, failure.Wrap(err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, failure.Wrap(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("Origin", c.howdy)
	}
	return req, nil
}

// doJSON sends req and decodes the JSON body into a generic value. The
// status code is returned whenever a response arrived.
func (c *Client) doJSON(req *http.Request) (any, int, error) {
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, failure.Wrap(err, failure.WithCode(ErrTransport),
			failure.Message("Portal request failed"),
			failure.Context{"url": req.URL.String()})
	}
	defer res.Body.Close()

	if err := checkStatus(req, res); err != nil {
		return nil, res.StatusCode, err
	}

	var out any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		if err == io.EOF {
			return nil, res.StatusCode, nil
		}
		return nil, res.StatusCode, failure.Wrap(err, failure.WithCode(ErrDecode),
			failure.Message("Portal returned a malformed body"),
			failure.Context{"url": req.URL.String()})
	}
	return out, res.StatusCode, nil
}

func checkStatus(req *http.Request, res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return failure.New(ErrHTTPStatus,
		failure.Message(fmt.Sprintf("Portal answered %d", res.StatusCode)),
		failure.Context{
			"url":    req.URL.String(),
			"status": fmt.Sprint(res.StatusCode),
			"body":   string(b),
		},
	)
}

// SyllabusURL is the deterministic syllabus document link for ref
func (c *Client) SyllabusURL(ref section.Ref) string {
	q := url.Values{}
	q.Set("doctype_in", "SY")
	q.Set("crn_in", ref.CRN)
	q.Set("termcode_in", ref.Term)
	return c.compass + showDocPath + "?" + q.Encode()
}

// CVURL links to an instructor's generated CV. The portal keys CVs by
// the instructor's internal id; without it the directory search is the
// best available link.
func (c *Client) CVURL(pidm, name string) string {
	if pidm != "" {
		q := url.Values{}
		q.Set("doctype_in", "CV")
		q.Set("pidm_in", pidm)
		return c.compass + showDocPath + "?" + q.Encode()
	}
	q := url.Values{}
	q.Set("branch", "people")
	q.Set("cn", name)
	return directoryURL + "?" + q.Encode()
}

const directoryURL = "https://directory.tamu.edu/"
