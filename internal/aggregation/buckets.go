package aggregation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipmatic/dashboard/internal/domain"
)

// ErrInvalidRange is returned when a supplied range has its start after its
// end. Inverted ranges are a caller bug, rejected before any bucket is built.
var ErrInvalidRange = errors.New("start date after end date")

// defaultWindowDays is the lookback applied when no range is given and there
// are no records to derive one from.
const defaultWindowDays = 60

// DateRange is an inclusive span of UTC calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateBucket is one calendar day of aggregated activity. Charts assume the
// bucket axis is contiguous, so zero-valued days are always emitted.
type DateBucket struct {
	Date  string       `json:"date"`
	Count int          `json:"count"`
	Sum   domain.Money `json:"sum"`
}

// BucketOrdersByDay emits one bucket per day covering rng (or a derived
// range, see buildBuckets). Count is per order; Sum is the order's protection
// line total, zero when the add-on is absent.
func BucketOrdersByDay(orders []domain.Order, rng *DateRange, now time.Time, currency string) ([]DateBucket, error) {
	records := make([]datedAmount, 0, len(orders))
	for _, o := range orders {
		records = append(records, datedAmount{
			day:    dayOf(o.CreatedAt),
			amount: o.ProtectionFee().Amount,
		})
	}
	return buildBuckets(records, rng, now, currency)
}

// BucketClaimsByDay emits one bucket per day with Sum as the claim's total
// settlement value.
func BucketClaimsByDay(claims []domain.Claim, rng *DateRange, now time.Time, currency string) ([]DateBucket, error) {
	records := make([]datedAmount, 0, len(claims))
	for _, c := range claims {
		records = append(records, datedAmount{
			day:    dayOf(c.CreatedAt),
			amount: c.SettlementTotal().Amount,
		})
	}
	return buildBuckets(records, rng, now, currency)
}

type datedAmount struct {
	day    time.Time
	amount decimal.Decimal
}

// buildBuckets resolves the range and fills every day in it. Range
// resolution: an explicit rng wins; otherwise [earliest record, today]; for
// an empty record set, [today-60d, today].
func buildBuckets(records []datedAmount, rng *DateRange, now time.Time, currency string) ([]DateBucket, error) {
	start, end, err := resolveRange(records, rng, now)
	if err != nil {
		return nil, err
	}

	type dayTotal struct {
		count int
		sum   decimal.Decimal
	}
	totals := make(map[time.Time]dayTotal)
	for _, r := range records {
		t := totals[r.day]
		t.count++
		t.sum = t.sum.Add(r.amount)
		totals[r.day] = t
	}

	var buckets []DateBucket
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		t := totals[day]
		buckets = append(buckets, DateBucket{
			Date:  day.Format("2006-01-02"),
			Count: t.count,
			Sum:   domain.NewMoney(t.sum, currency),
		})
	}
	return buckets, nil
}

func resolveRange(records []datedAmount, rng *DateRange, now time.Time) (time.Time, time.Time, error) {
	today := dayOf(now)

	if rng != nil {
		start, end := dayOf(rng.Start), dayOf(rng.End)
		if start.After(end) {
			return time.Time{}, time.Time{}, ErrInvalidRange
		}
		return start, end, nil
	}

	if len(records) == 0 {
		return today.AddDate(0, 0, -defaultWindowDays), today, nil
	}

	earliest := records[0].day
	for _, r := range records[1:] {
		if r.day.Before(earliest) {
			earliest = r.day
		}
	}
	return earliest, today, nil
}

// dayOf truncates to the UTC calendar day.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
