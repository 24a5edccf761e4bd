// Package sample generates the synthetic dataset used for demo mode and as
// the fallback whenever real filings cannot be loaded.
package sample

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bighogz/insider-tracker/internal/models"
)

const Size = 50

var (
	Tickers  = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META", "NVDA", "NFLX", "AMD", "CRM"}
	Insiders = []string{
		"John Smith", "Sarah Johnson", "Michael Brown", "Emily Davis", "David Wilson",
		"Lisa Anderson", "Robert Taylor", "Jennifer Martinez", "Christopher Garcia", "Amanda Rodriguez",
	}
	Titles = []string{
		"CEO", "CFO", "CTO", "COO", "VP of Engineering", "VP of Sales", "VP of Marketing",
		"Director", "Senior Manager", "Board Member",
	}
)

// Generator is safe for concurrent use.
type Generator struct {
	Rand *rand.Rand
	Now  func() time.Time

	mu sync.Mutex
}

// New returns a generator seeded from the runtime's random source.
func New() *Generator {
	return &Generator{Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), Now: time.Now}
}

// NewSeeded returns a deterministic generator.
func NewSeeded(seed uint64, now time.Time) *Generator {
	return &Generator{
		Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Now:  func() time.Time { return now },
	}
}

// Generate returns Size schema-valid Buy/Sell trades dated within the last 30 days.
func (g *Generator) Generate() models.Dataset {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.Now()
	out := make(models.Dataset, 0, Size)
	for i := 0; i < Size; i++ {
		tt := models.Buy
		if g.Rand.IntN(2) == 1 {
			tt = models.Sell
		}
		shares := float64(100 + g.Rand.IntN(10000-100+1))
		price := math.Round((50+g.Rand.Float64()*450)*100) / 100
		out = append(out, models.Trade{
			Ticker:    pick(g.Rand, Tickers),
			Insider:   pick(g.Rand, Insiders),
			Title:     pick(g.Rand, Titles),
			TradeType: tt,
			Shares:    shares,
			Price:     price,
			Value:     models.ComputeValue(shares, price),
			Date:      now.AddDate(0, 0, -g.Rand.IntN(31)),
		})
	}
	return out
}

// Generate uses a freshly seeded generator.
func Generate() models.Dataset {
	return New().Generate()
}

func pick(r *rand.Rand, pool []string) string {
	return pool[r.IntN(len(pool))]
}
