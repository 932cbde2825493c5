package timeline

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeries_OnePointPerDay(t *testing.T) {
	g := New(1)
	points := g.Series(day(2025, 1, 1), day(2025, 1, 7), nil)

	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	for i, p := range points {
		want := day(2025, 1, 1+i).Format("2006-01-02")
		if p.Date != want {
			t.Errorf("point %d: expected date %s, got %s", i, want, p.Date)
		}
	}
}

func TestSeries_SingleDay(t *testing.T) {
	g := New(1)
	points := g.Series(day(2025, 3, 10), day(2025, 3, 10), nil)

	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Date != "2025-03-10" {
		t.Errorf("expected date 2025-03-10, got %s", points[0].Date)
	}
}

func TestSeries_EmptyWhenFromAfterTo(t *testing.T) {
	g := New(1)
	points := g.Series(day(2025, 1, 10), day(2025, 1, 5), nil)

	if len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
}

func TestSeries_Deterministic(t *testing.T) {
	counts := map[string]int{"2025-01-03": 2}
	a := New(42).Series(day(2025, 1, 1), day(2025, 1, 14), counts)
	b := New(42).Series(day(2025, 1, 1), day(2025, 1, 14), counts)

	if len(a) != len(b) {
		t.Fatalf("series lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("point %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSeries_DifferentSeedsDiffer(t *testing.T) {
	a := New(1).Series(day(2025, 1, 1), day(2025, 1, 14), nil)
	b := New(2).Series(day(2025, 1, 1), day(2025, 1, 14), nil)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different seeds to produce different series")
	}
}

func TestSeries_PriceFloor(t *testing.T) {
	g := New(7)
	points := g.Series(day(2020, 1, 1), day(2025, 1, 1), nil)

	for _, p := range points {
		if p.Price < floorPrice {
			t.Fatalf("price %.2f on %s below floor %.0f", p.Price, p.Date, floorPrice)
		}
	}
}

func TestSeries_SentimentRange(t *testing.T) {
	g := New(7)
	points := g.Series(day(2024, 1, 1), day(2024, 12, 31), nil)

	for _, p := range points {
		if p.Sentiment < -1 || p.Sentiment > 1 {
			t.Fatalf("sentiment %.2f on %s out of range", p.Sentiment, p.Date)
		}
	}
}

func TestSeries_VolumeBounds(t *testing.T) {
	g := New(9)
	points := g.Series(day(2024, 1, 1), day(2024, 6, 30), nil)

	for _, p := range points {
		if p.Volume < minVolume || p.Volume > maxVolume {
			t.Fatalf("volume %d on %s out of range without news", p.Volume, p.Date)
		}
	}
}

func TestSeries_NewsDayBoostsVolume(t *testing.T) {
	counts := map[string]int{"2025-01-02": 3}
	// Same seed with and without news draws identical random values, so
	// the only difference is the boost itself.
	quiet := New(11).Series(day(2025, 1, 1), day(2025, 1, 3), nil)
	newsy := New(11).Series(day(2025, 1, 1), day(2025, 1, 3), counts)

	if newsy[1].NewsCount != 3 {
		t.Errorf("expected newsCount 3, got %d", newsy[1].NewsCount)
	}
	wantVolume := quiet[1].Volume + quiet[1].Volume/2
	if newsy[1].Volume != wantVolume {
		t.Errorf("expected boosted volume %d, got %d", wantVolume, newsy[1].Volume)
	}
	if newsy[0].Volume != quiet[0].Volume || newsy[2].Volume != quiet[2].Volume {
		t.Error("expected volume on days without news to be unchanged")
	}
	for _, p := range quiet {
		if p.NewsCount != 0 {
			t.Errorf("expected newsCount 0 on %s, got %d", p.Date, p.NewsCount)
		}
	}
}
