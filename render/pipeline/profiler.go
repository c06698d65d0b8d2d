package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler scope and counter names used by the renderer.
const (
	ScopeSetup    = "setup"
	ScopeAssemble = "assemble"
	ScopeDraw     = "draw"

	CountAssemblies = "assemblies"
	CountCacheHits  = "cache hits"
	CountVisible    = "visible"
	CountCulled     = "culled"
)

// Profiler records the CPU time of named frame stages and per-frame
// counters.
type Profiler struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	order  []string
	now    func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
		now:    time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	if _, seen := p.scopes[name]; !seen {
		p.order = append(p.order, name)
		p.scopes[name] = 0
	}
	p.starts[name] = p.now()
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.scopes[name] = p.now().Sub(start)
		delete(p.starts, name)
	}
}

// Duration returns the last measured time of a scope.
func (p *Profiler) Duration(name string) time.Duration {
	return p.scopes[name]
}

func (p *Profiler) SetCount(name string, count int) {
	p.counts[name] = count
}

func (p *Profiler) Count(name string) int {
	return p.counts[name]
}

// Reset zeroes timings and counters but keeps the scope order.
func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
	clear(p.counts)
}

func (p *Profiler) String() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-15s: %.2f ms\n", name, ms)
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.counts[k])
	}
	return sb.String()
}
