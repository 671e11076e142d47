package api

import (
	"context"

	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// SeatSource fetches the seat page of one section
type SeatSource interface {
	Seats(ctx context.Context, ref section.Ref) (section.SeatPage, error)
}

// EnrichSeats fetches seat counts for every stub concurrently and stores
// them under section.KeySeats, in place. Enrichment is best effort: a stub
// whose seats cannot be fetched is left without the key, which callers
// must read as unknown rather than zero. Stubs keep their order.
func EnrichSeats(ctx context.Context, src SeatSource, stubs []section.Class, limit int) {
	ctx, span := tracer.Start(ctx, "api.EnrichSeats", trace.WithAttributes(
		attribute.Int("stubs", len(stubs)),
	))
	defer span.End()

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, stub := range stubs {
		if stub == nil {
			continue
		}
		g.Go(func() error {
			page, err := src.Seats(ctx, stub.Ref())
			if err != nil {
				log.Debug("Seat enrichment skipped", "term", stub.Term(), "crn", stub.CRN(), "error", err)
				delete(stub, section.KeySeats)
				return nil
			}
			stub[section.KeySeats] = page.Seats.Map()
			return nil
		})
	}
	_ = g.Wait()
}
