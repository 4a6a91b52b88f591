package service

import (
	"time"

	"go-powder-ledger/internal/clock"
	"go-powder-ledger/internal/model"

	"github.com/shopspring/decimal"
)

// DailyBucket is the summed quantity for one UTC calendar day.
type DailyBucket struct {
	Date     string          `json:"date"`
	Quantity decimal.Decimal `json:"quantity"`
}

// UsageEvent is a dated quantity fed to the aggregator. Cost is optional.
type UsageEvent struct {
	Day      string
	Quantity decimal.Decimal
	Cost     *decimal.Decimal
}

// Aggregate sums events into one bucket per UTC day in [start, end], both
// inclusive and truncated to their day. Days without events get a zero
// bucket, so the series always has end-start+1 entries. A start after end
// yields an empty series.
func Aggregate(events []UsageEvent, start, end time.Time) []DailyBucket {
	start, end = clock.StartOfDay(start), clock.StartOfDay(end)
	if start.After(end) {
		return []DailyBucket{}
	}

	totals := dayTotals(events)
	buckets := make([]DailyBucket, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := clock.Day(d)
		qty, ok := totals[day]
		if !ok {
			qty = decimal.Zero
		}
		buckets = append(buckets, DailyBucket{Date: day, Quantity: qty})
	}
	return buckets
}

// dayTotals sums quantities per day. Only days that carry events appear.
func dayTotals(events []UsageEvent) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range events {
		if cur, ok := totals[e.Day]; ok {
			totals[e.Day] = cur.Add(e.Quantity)
		} else {
			totals[e.Day] = e.Quantity
		}
	}
	return totals
}

func transactionEvents(txs []model.StockTransaction) []UsageEvent {
	events := make([]UsageEvent, 0, len(txs))
	for _, t := range txs {
		events = append(events, UsageEvent{Day: clock.Day(t.Timestamp), Quantity: t.Quantity})
	}
	return events
}

func gasEvents(usages []model.GasUsage) []UsageEvent {
	events := make([]UsageEvent, 0, len(usages))
	for _, g := range usages {
		events = append(events, UsageEvent{Day: g.Date, Quantity: g.Quantity, Cost: g.TotalCost})
	}
	return events
}
