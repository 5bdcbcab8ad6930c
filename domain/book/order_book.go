package book

import (
	"fmt"
	"io"
)

// Trade reports a single fill. One record is emitted per match-loop
// iteration, in match order: best opposite level first, FIFO within a
// level.
type Trade struct {
	RestingID  OrderID
	RestingPx  Price
	TradedQty  Quantity
	IncomingID OrderID
	IncomingPx Price
}

// TradeSink receives trade reports synchronously on the worker's
// goroutine. The opaque ctx is handed back untouched on every call so
// the sink carries no captured state of its own.
type TradeSink func(t *Trade, ctx any)

// OrderBook orchestrates both side books. It owns the order pool, the
// dense id index, and the registered trade sink. All methods must be
// called from a single goroutine.
type OrderBook struct {
	pool  *Pool
	bids  *SideBook
	asks  *SideBook
	index []*Order

	sink    TradeSink
	sinkCtx any
}

// New builds a book whose ladders initially cover [minPrice, maxPrice]
// and whose pool holds poolCapacity orders.
func New(minPrice, maxPrice Price, poolCapacity int) *OrderBook {
	return &OrderBook{
		pool: NewPool(poolCapacity),
		bids: NewSideBook(Buy, minPrice, maxPrice),
		asks: NewSideBook(Sell, minPrice, maxPrice),
	}
}

// SetTradeSink installs the callback invoked inline for each match.
func (ob *OrderBook) SetTradeSink(fn TradeSink, ctx any) {
	ob.sink = fn
	ob.sinkCtx = ctx
}

// Bids exposes the buy-side ladder for inspection.
func (ob *OrderBook) Bids() *SideBook { return ob.bids }

// Asks exposes the sell-side ladder for inspection.
func (ob *OrderBook) Asks() *SideBook { return ob.asks }

// PoolAvailable reports the free slots left in the order pool.
func (ob *OrderBook) PoolAvailable() int { return ob.pool.Available() }

func (ob *OrderBook) ensureIndex(id OrderID) {
	if int(id) < len(ob.index) {
		return
	}
	grown := make([]*Order, int(id)+1)
	copy(grown, ob.index)
	ob.index = grown
}

func (ob *OrderBook) slot(id OrderID) *Order {
	if id == InvalidOrderID || int(id) >= len(ob.index) {
		return nil
	}
	return ob.index[id]
}

// CreateOrder admits a new order and runs the match/placement pipeline.
// It returns nil when the order is rejected (duplicate id, pool
// exhausted, failed FOK or min-qty admission) or retired during
// processing (fully filled, IOC); otherwise the returned pointer stays
// valid until the order is cancelled or fully filled.
func (ob *OrderBook) CreateOrder(id OrderID, price Price, qty Quantity, side Side, tif TimeInForce, minQty *Quantity) *Order {
	if id == InvalidOrderID {
		return nil
	}
	ob.ensureIndex(id)
	if ob.index[id] != nil {
		return nil
	}
	o := ob.pool.Create(id, price, qty, side, tif, minQty)
	if o == nil {
		return nil
	}
	ob.index[id] = o
	ob.process(o)
	return ob.slot(id)
}

// Cancel removes an order. Unknown ids are a silent no-op, which makes
// cancel idempotent.
func (ob *OrderBook) Cancel(id OrderID) {
	o := ob.slot(id)
	if o == nil {
		return
	}
	if o.Resting {
		ob.sameSide(o.Side).Remove(o)
	}
	ob.index[id] = nil
	ob.pool.Destroy(o)
}

// Modify replaces an order with new terms under the same id. The order
// re-enters the full pipeline, so a side or price change can match
// immediately. All queue priority is lost. Unknown ids are a no-op.
func (ob *OrderBook) Modify(id OrderID, side Side, price Price, qty Quantity, tif TimeInForce, minQty *Quantity) {
	if ob.slot(id) == nil {
		return
	}
	ob.Cancel(id)
	ob.CreateOrder(id, price, qty, side, tif, minQty)
}

// HasOrder reports whether id maps to a live order.
func (ob *OrderBook) HasOrder(id OrderID) bool { return ob.slot(id) != nil }

// Find returns the live order for id, or nil.
func (ob *OrderBook) Find(id OrderID) *Order { return ob.slot(id) }

func (ob *OrderBook) sameSide(s Side) *SideBook {
	if s == Buy {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) oppositeSide(s Side) *SideBook {
	if s == Buy {
		return ob.asks
	}
	return ob.bids
}

func crosses(incoming *Order, restingPx Price) bool {
	if incoming.Side == Buy {
		return incoming.Price >= restingPx
	}
	return incoming.Price <= restingPx
}

// process runs admission, the match loop, and residual placement for a
// freshly admitted order.
func (ob *OrderBook) process(o *Order) {
	opp := ob.oppositeSide(o.Side)
	same := ob.sameSide(o.Side)

	// Admission runs before any side effect so FOK and min-qty
	// rejections emit no partial trades.
	available := opp.AvailableTo(o.Price, o.Side)
	if o.TIF == FOK && available < o.Quantity {
		ob.Cancel(o.ID)
		return
	}
	if o.HasMinQty && available < o.MinQty {
		ob.Cancel(o.ID)
		return
	}

	for o.Quantity > 0 {
		resting := opp.Best()
		if resting == nil {
			break
		}
		if !crosses(o, resting.Price) {
			break
		}

		traded := min(o.Quantity, resting.Quantity)
		o.Quantity -= traded
		resting.Quantity -= traded
		opp.OnFill(resting, traded)

		if ob.sink != nil {
			ob.sink(&Trade{
				RestingID:  resting.ID,
				RestingPx:  resting.Price,
				TradedQty:  traded,
				IncomingID: o.ID,
				IncomingPx: o.Price,
			}, ob.sinkCtx)
		}

		if resting.Quantity == 0 {
			ob.Cancel(resting.ID)
		}

		if o.TIF == IOC {
			ob.Cancel(o.ID)
			return
		}
	}

	if o.Quantity > 0 && o.TIF == GFD {
		same.Add(o)
	} else {
		ob.Cancel(o.ID)
	}
}

// Snapshot writes the book's aggregate state: active ask levels in
// ascending price order under "SELL:", then active bid levels in
// descending order under "BUY:". Levels drained to zero are skipped.
func (ob *OrderBook) Snapshot(w io.Writer) {
	fmt.Fprintf(w, "SELL:\n")
	ob.asks.AscendLevels(func(lvl *PriceLevel) bool {
		if lvl.Total() > 0 {
			fmt.Fprintf(w, "%d %d\n", lvl.Price(), lvl.Total())
		}
		return true
	})
	fmt.Fprintf(w, "BUY:\n")
	ob.bids.DescendLevels(func(lvl *PriceLevel) bool {
		if lvl.Total() > 0 {
			fmt.Fprintf(w, "%d %d\n", lvl.Price(), lvl.Total())
		}
		return true
	})
}
