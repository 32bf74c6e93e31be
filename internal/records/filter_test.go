package records

import (
	"testing"
	"time"

	"chargedash/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func rec(id int64, number string, start time.Time) models.ChargingRecord {
	return models.ChargingRecord{
		ID:           id,
		RecordNumber: number,
		StartTime:    start,
		EndTime:      start.Add(90 * time.Minute),
	}
}

func testSet() []models.ChargingRecord {
	return []models.ChargingRecord{
		rec(1, "CD20250615001", testNow.Add(-2*time.Hour)),
		rec(2, "CD20250612002", testNow.AddDate(0, 0, -3)),
		rec(3, "CD20250601003", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		rec(4, "CD20250520004", testNow.AddDate(0, 0, -26)),
		rec(5, "CD20250401005", testNow.AddDate(0, 0, -75)),
	}
}

func ids(page Page) []int64 {
	out := make([]int64, 0, len(page.Records))
	for _, r := range page.Records {
		out = append(out, r.ID)
	}
	return out
}

func TestViewEmptySearchReturnsEverything(t *testing.T) {
	set := testSet()
	page := View(set, "", RangeAll, 1, 100, testNow)
	if page.Total != len(set) || len(page.Records) != len(set) {
		t.Fatalf("got total=%d records=%d, want %d", page.Total, len(page.Records), len(set))
	}
}

func TestViewSearchByRecordNumber(t *testing.T) {
	page := View(testSet(), "cd20250612", RangeAll, 1, 100, testNow)
	if page.Total != 1 || page.Records[0].ID != 2 {
		t.Fatalf("got %v, want record 2 only", ids(page))
	}
}

func TestViewSearchByFormattedDate(t *testing.T) {
	page := View(testSet(), "2025-06-01", RangeAll, 1, 100, testNow)
	if page.Total != 1 || page.Records[0].ID != 3 {
		t.Fatalf("got %v, want record 3 only", ids(page))
	}
}

func TestViewTimeRangesMonotonic(t *testing.T) {
	set := testSet()
	sizes := map[TimeRange]int{}
	members := map[TimeRange]map[int64]bool{}
	for _, rng := range []TimeRange{RangeLast7Days, RangeLast30Days, RangeAll} {
		page := View(set, "", rng, 1, 100, testNow)
		sizes[rng] = page.Total
		m := map[int64]bool{}
		for _, id := range ids(page) {
			m[id] = true
		}
		members[rng] = m
	}
	if sizes[RangeLast7Days] > sizes[RangeLast30Days] || sizes[RangeLast30Days] > sizes[RangeAll] {
		t.Fatalf("ranges not monotonic: %v", sizes)
	}
	for id := range members[RangeLast7Days] {
		if !members[RangeLast30Days][id] {
			t.Errorf("record %d in 7days but not 30days", id)
		}
	}
	for id := range members[RangeLast30Days] {
		if !members[RangeAll][id] {
			t.Errorf("record %d in 30days but not all", id)
		}
	}
}

func TestViewThisMonthBoundary(t *testing.T) {
	firstOfMonth := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lastOfMay := time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC)
	set := []models.ChargingRecord{
		rec(1, "CD-A", firstOfMonth),
		rec(2, "CD-B", lastOfMay),
	}
	page := View(set, "", RangeThisMonth, 1, 100, testNow)
	if page.Total != 1 || page.Records[0].ID != 1 {
		t.Fatalf("got %v, want only the first-of-month record", ids(page))
	}
}

func TestViewPaginationCoversFilteredSet(t *testing.T) {
	set := make([]models.ChargingRecord, 0, 7)
	for i := int64(1); i <= 7; i++ {
		set = append(set, rec(i, "CD", testNow.Add(-time.Duration(i)*time.Hour)))
	}

	seen := map[int64]int{}
	var sizes []int
	for p := 1; ; p++ {
		page := View(set, "", RangeAll, p, 3, testNow)
		if page.Total != 7 {
			t.Fatalf("page %d total = %d, want 7", p, page.Total)
		}
		if len(page.Records) == 0 {
			break
		}
		if len(page.Records) > 3 {
			t.Fatalf("page %d oversize: %d", p, len(page.Records))
		}
		sizes = append(sizes, len(page.Records))
		for _, id := range ids(page) {
			seen[id]++
		}
	}

	if len(sizes) != 3 || sizes[0] != 3 || sizes[1] != 3 || sizes[2] != 1 {
		t.Fatalf("page sizes = %v, want [3 3 1]", sizes)
	}
	if len(seen) != 7 {
		t.Fatalf("union covers %d records, want 7", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("record %d appeared %d times across pages", id, n)
		}
	}
}

func TestViewOrderPreserved(t *testing.T) {
	set := testSet()
	page := View(set, "", RangeAll, 1, 100, testNow)
	for i, r := range page.Records {
		if r.ID != set[i].ID {
			t.Fatalf("order changed at %d: got %d want %d", i, r.ID, set[i].ID)
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	cases := map[string]TimeRange{
		"":          RangeAll,
		"all":       RangeAll,
		"7days":     RangeLast7Days,
		"30days":    RangeLast30Days,
		"thisMonth": RangeThisMonth,
		"bogus":     RangeAll,
	}
	for in, want := range cases {
		if got := ParseTimeRange(in); got != want {
			t.Errorf("ParseTimeRange(%q) = %q, want %q", in, got, want)
		}
	}
}
