package timeline

import (
	"math"
	"math/rand/v2"
	"time"

	"news-terminal/dates"
)

const (
	startPrice = 100.0
	floorPrice = 10.0
	minVolume  = 500000
	maxVolume  = 1500000
)

// Point is one day on the frontend chart. Price, volume and sentiment
// are placeholder values; only NewsCount is real.
type Point struct {
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
	Volume    int     `json:"volume"`
	Sentiment float64 `json:"sentiment"`
	NewsCount int     `json:"newsCount"`
}

// Generator produces placeholder daily series. The same seed yields the
// same series, which keeps tests and repeated chart loads stable.
type Generator struct {
	rng *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)))}
}

// Series returns one point per calendar day in [from, to]. Price follows
// a random walk with a small weekday drift and a hard floor, volume is
// boosted by half on days that had news, and sentiment loosely tracks
// the day's price change. countsByDay is keyed YYYY-MM-DD.
func (g *Generator) Series(from, to time.Time, countsByDay map[string]int) []Point {
	var points []Point
	price := startPrice

	end := dates.Day(to)
	for d := dates.Day(from); !d.After(end); d = d.AddDate(0, 0, 1) {
		day := dates.DayKey(d)

		change := g.rng.Float64()*4 - 2
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			change += 0.2
		}
		price = math.Max(floorPrice, price+change)

		volume := minVolume + g.rng.IntN(maxVolume-minVolume+1)
		newsCount := countsByDay[day]
		if newsCount > 0 {
			volume += volume / 2
		}

		sentiment := clamp(change/4+g.rng.Float64()*0.4-0.2, -1, 1)

		points = append(points, Point{
			Date:      day,
			Price:     round2(price),
			Volume:    volume,
			Sentiment: round2(sentiment),
			NewsCount: newsCount,
		})
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
