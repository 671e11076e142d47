package portal

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/morikuni/failure/v2"
	"golang.org/x/net/html"
)

// Seats fetches and parses the seat page for ref
func (c *Client) Seats(ctx context.Context, ref section.Ref) (section.SeatPage, error) {
	if err := ref.Validate(); err != nil {
		return section.SeatPage{}, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	q := url.Values{}
	q.Set("term_in", ref.Term)
	q.Set("crn_in", ref.CRN)
	u := c.compass + seatPagePath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return section.SeatPage{}, failure.Wrap(err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return section.SeatPage{}, failure.Wrap(err, failure.WithCode(ErrTransport),
			failure.Context{"url": u})
	}
	defer res.Body.Close()

	if err := checkStatus(req, res); err != nil {
		return section.SeatPage{}, err
	}

	page, err := ParseSeatPage(res.Body)
	if err != nil {
		return section.SeatPage{}, failure.Wrap(err, failure.Context{"term": ref.Term, "crn": ref.CRN})
	}
	if page.CRN == "" {
		page.CRN = ref.CRN
	}
	return page, nil
}

// ParseSeatPage extracts seat counters and the section label from the
// detail schedule page. A page without seat cells means the section does
// not exist.
func ParseSeatPage(r io.Reader) (section.SeatPage, error) {
	root, err := html.Parse(r)
	if err != nil {
		return section.SeatPage{}, failure.Wrap(err, failure.WithCode(ErrDecode))
	}
	doc := goquery.NewDocumentFromNode(root)

	cells := doc.Find("td.dddefault")
	if cells.Length() == 0 {
		return section.SeatPage{}, failure.New(ErrSectionNotFound,
			failure.Message("Section not found"))
	}
	if cells.Length() < 4 {
		return section.SeatPage{}, failure.New(ErrDecode,
			failure.Message("Seat table is incomplete"))
	}

	var page section.SeatPage
	counters := []*int{nil, &page.Seats.Capacity, &page.Seats.Actual, &page.Seats.Remaining}
	for i, dst := range counters {
		if dst == nil {
			continue
		}
		text := strings.TrimSpace(cells.Eq(i).Text())
		n, err := strconv.Atoi(text)
		if err != nil {
			return section.SeatPage{}, failure.Wrap(err, failure.WithCode(ErrDecode),
				failure.Message("Seat counter is not a number"),
				failure.Context{"cell": text})
		}
		*dst = n
	}

	// "{title} - {crn} - {subject number} - {section}"; titles may contain " - "
	label := strings.TrimSpace(doc.Find("th.ddlabel").First().Text())
	if parts := strings.Split(label, " - "); len(parts) >= 4 {
		n := len(parts)
		page.Title = strings.Join(parts[:n-3], " - ")
		page.CRN = strings.TrimSpace(parts[n-3])
		page.Course = strings.TrimSpace(parts[n-2])
		page.Section = strings.TrimSpace(parts[n-1])
	}

	// The second header line reads "{Semester} {Year} {Campus}..."
	var headers []string
	for _, line := range strings.Split(doc.Find("div.staticheaders").First().Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			headers = append(headers, line)
		}
	}
	if len(headers) > 1 {
		if words := strings.Fields(headers[1]); len(words) >= 2 {
			page.Term = strings.Join(words[:2], " ")
		}
	}

	return page, nil
}
