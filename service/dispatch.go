package service

import (
	"io"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"

	"kestrel/infra/ring"
	"kestrel/jobs/broadcaster"
	"kestrel/wire"
)

// Feed receives the per-engine trade rings as engines come up. The
// production implementation is the broadcaster; tests pass nil.
type Feed interface {
	Attach(r *ring.SPSC[broadcaster.Event])
}

// Dispatcher routes parsed commands to per-symbol engines, creating
// an engine the first time a symbol appears. It is single-goroutine
// on the submit side, matching the line reader that feeds it.
type Dispatcher struct {
	cfg     Config
	out     io.Writer
	feed    Feed
	engines btree.Map[string, *Engine]
}

func NewDispatcher(cfg Config, out io.Writer, feed Feed) *Dispatcher {
	return &Dispatcher{cfg: cfg, out: out, feed: feed}
}

// Submit routes cmd to symbol's engine, starting one if needed.
func (d *Dispatcher) Submit(symbol string, cmd wire.Command) {
	e, ok := d.engines.Get(symbol)
	if !ok {
		var fr *ring.SPSC[broadcaster.Event]
		if d.feed != nil {
			fr = ring.New[broadcaster.Event](FeedRingSize)
		}
		e = NewEngine(symbol, d.cfg, d.out, fr)
		e.Start()
		if d.feed != nil {
			d.feed.Attach(fr)
		}
		d.engines.Set(symbol, e)
		log.Info().Str("symbol", symbol).Msg("engine created")
	}
	e.Submit(cmd)
}

// Engines reports how many symbols have engines.
func (d *Dispatcher) Engines() int {
	return d.engines.Len()
}

// Close stops every engine in symbol order and returns the first
// error encountered.
func (d *Dispatcher) Close() error {
	var first error
	d.engines.Scan(func(sym string, e *Engine) bool {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}
