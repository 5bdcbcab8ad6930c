package service

import (
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"kestrel/domain/book"
	"kestrel/infra/metrics"
	"kestrel/infra/ring"
	"kestrel/jobs/broadcaster"
	"kestrel/wire"
)

const (
	ingressSize = 2048
	egressSize  = 4096

	// FeedRingSize bounds the per-engine trade feed hand-off. A full
	// feed ring drops the event (and counts the drop) rather than
	// stalling the matching worker.
	FeedRingSize = 1 << 14
)

// Config sets the initial book window and pool size for new engines.
type Config struct {
	MinPrice     book.Price
	MaxPrice     book.Price
	PoolCapacity int
}

// DefaultConfig mirrors a dense equity-style tick range. The ladder
// still grows on demand if a price lands outside the window.
func DefaultConfig() Config {
	return Config{
		MinPrice:     0,
		MaxPrice:     1 << 16,
		PoolCapacity: 1 << 16,
	}
}

// Engine runs one symbol's book. Commands enter through an SPSC ring
// and execute on a single worker goroutine; every output line (trades
// and snapshots) leaves through a second SPSC ring drained by a logger
// goroutine, so writes to out never interleave.
type Engine struct {
	symbol  string
	book    *book.OrderBook
	ingress *ring.SPSC[wire.Command]
	egress  *ring.SPSC[string]
	feed    *ring.SPSC[broadcaster.Event]
	out     io.Writer

	t          *tomb.Tomb
	workerDone chan struct{}

	// Client-id interning, owned by the worker goroutine. Free-form
	// client ids map to dense internal ids, first-seen wins.
	idLookup  map[string]book.OrderID
	idReverse []string
	nextID    book.OrderID

	fills uint64
	log   zerolog.Logger
}

// NewEngine builds an engine for symbol writing its output to out.
// feed may be nil when no trade feed egress is configured.
func NewEngine(symbol string, cfg Config, out io.Writer, feed *ring.SPSC[broadcaster.Event]) *Engine {
	e := &Engine{
		symbol:     symbol,
		book:       book.New(cfg.MinPrice, cfg.MaxPrice, cfg.PoolCapacity),
		ingress:    ring.New[wire.Command](ingressSize),
		egress:     ring.New[string](egressSize),
		feed:       feed,
		out:        out,
		workerDone: make(chan struct{}),
		idLookup:   make(map[string]book.OrderID),
		log:        log.With().Str("symbol", symbol).Logger(),
	}
	e.book.SetTradeSink(tradeSink, e)
	return e
}

// Start launches the worker and logger goroutines.
func (e *Engine) Start() {
	e.t = &tomb.Tomb{}
	e.t.Go(e.runWorker)
	e.t.Go(e.runLogger)
	e.log.Info().Msg("engine started")
}

// Submit hands a command to the worker, spinning while the ingress
// ring is full. It must be called from a single goroutine and never
// after Close.
func (e *Engine) Submit(cmd wire.Command) {
	for !e.ingress.Push(cmd) {
		runtime.Gosched()
	}
}

// Close stops the engine after draining both rings.
func (e *Engine) Close() error {
	e.t.Kill(nil)
	err := e.t.Wait()
	e.log.Info().Msg("engine stopped")
	return err
}

func (e *Engine) runWorker() error {
	defer close(e.workerDone)
	for {
		cmd, ok := e.ingress.Pop()
		if ok {
			e.execute(cmd)
			continue
		}
		select {
		case <-e.t.Dying():
			for {
				cmd, ok := e.ingress.Pop()
				if !ok {
					return nil
				}
				e.execute(cmd)
			}
		default:
			runtime.Gosched()
		}
	}
}

func (e *Engine) runLogger() error {
	for {
		line, ok := e.egress.Pop()
		if ok {
			io.WriteString(e.out, line)
			continue
		}
		select {
		case <-e.workerDone:
			for {
				line, ok := e.egress.Pop()
				if !ok {
					return nil
				}
				io.WriteString(e.out, line)
			}
		default:
			runtime.Gosched()
		}
	}
}

func (e *Engine) execute(cmd wire.Command) {
	switch cmd.Type {
	case wire.CmdBuy, wire.CmdSell:
		metrics.CommandsTotal.WithLabelValues(e.symbol, cmd.Side.String()).Inc()
		id := e.internID(cmd.ClientID)
		var minQty *book.Quantity
		if cmd.HasMin {
			m := cmd.MinQty
			minQty = &m
		}
		before := e.fills
		live := e.book.CreateOrder(id, cmd.Price, cmd.Qty, cmd.Side, cmd.TIF, minQty)
		if live == nil && e.fills == before {
			// An IOC that found nothing to cross retires cleanly;
			// everything else here is an admission refusal.
			if cmd.TIF != book.IOC || cmd.HasMin {
				metrics.RejectsTotal.WithLabelValues(e.symbol).Inc()
			}
		}

	case wire.CmdCancel:
		metrics.CommandsTotal.WithLabelValues(e.symbol, "CANCEL").Inc()
		if id, ok := e.idLookup[cmd.ClientID]; ok {
			e.book.Cancel(id)
		}

	case wire.CmdModify:
		metrics.CommandsTotal.WithLabelValues(e.symbol, "MODIFY").Inc()
		id, ok := e.idLookup[cmd.ClientID]
		if !ok {
			return
		}
		var minQty *book.Quantity
		if cmd.HasMin {
			m := cmd.MinQty
			minQty = &m
		}
		// Wire MODIFY carries no TIF; the dispatcher policy is GFD.
		e.book.Modify(id, cmd.Side, cmd.Price, cmd.Qty, book.GFD, minQty)

	case wire.CmdPrint:
		metrics.CommandsTotal.WithLabelValues(e.symbol, "PRINT").Inc()
		var sb strings.Builder
		sb.WriteString("Symbol: ")
		sb.WriteString(e.symbol)
		sb.WriteByte('\n')
		e.book.Snapshot(&sb)
		e.pushEgress(sb.String())
	}
}

func (e *Engine) pushEgress(s string) {
	for !e.egress.Push(s) {
		runtime.Gosched()
	}
}

func (e *Engine) internID(client string) book.OrderID {
	if id, ok := e.idLookup[client]; ok {
		return id
	}
	id := e.nextID
	e.nextID++
	e.idLookup[client] = id
	e.idReverse = append(e.idReverse, client)
	return id
}

func (e *Engine) clientID(id book.OrderID) string {
	if int(id) < len(e.idReverse) {
		return e.idReverse[id]
	}
	return "<unknown>"
}

// tradeSink runs inline on the worker goroutine for every fill.
func tradeSink(t *book.Trade, ctx any) {
	e := ctx.(*Engine)
	e.fills++
	metrics.TradesTotal.WithLabelValues(e.symbol).Inc()

	line := wire.FormatTrade(
		e.symbol,
		e.clientID(t.RestingID), t.RestingPx, t.TradedQty,
		e.clientID(t.IncomingID), t.IncomingPx,
	)
	e.pushEgress(line + "\n")

	if e.feed != nil {
		ev := broadcaster.Event{
			Symbol:         e.symbol,
			RestingClient:  e.clientID(t.RestingID),
			IncomingClient: e.clientID(t.IncomingID),
			RestingPx:      t.RestingPx,
			IncomingPx:     t.IncomingPx,
			Qty:            t.TradedQty,
			UnixNano:       time.Now().UnixNano(),
		}
		if !e.feed.Push(ev) {
			metrics.FeedDropped.WithLabelValues(e.symbol).Inc()
		}
	}
}
