package evasion

import (
	"browser-automator/internal/entity"
	"math/rand/v2"
	"sync"
)

const (
	minViewportWidth  = 1200
	maxViewportWidth  = 1500
	minViewportHeight = 800
	maxViewportHeight = 1100
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
}

// Generator hands out randomized identity parameters for a request context.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

func (g *Generator) Generate() entity.EvasionProfile {
	g.mu.Lock()
	defer g.mu.Unlock()

	return entity.EvasionProfile{
		UserAgent:      userAgents[g.rnd.IntN(len(userAgents))],
		ViewportWidth:  minViewportWidth + g.rnd.IntN(maxViewportWidth-minViewportWidth),
		ViewportHeight: minViewportHeight + g.rnd.IntN(maxViewportHeight-minViewportHeight),
	}
}

func UserAgents() []string {
	out := make([]string, len(userAgents))
	copy(out, userAgents)

	return out
}
