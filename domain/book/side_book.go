package book

// SideBook holds every resting order for one side of the market in a
// dense ladder of price levels indexed by price-minPrice. An active
// bitmap marks levels that currently hold orders and bestIndex tracks
// the top of book (highest active index for bids, lowest for asks) so
// reading the top of book does not scan; the ladder is scanned only when
// the best level empties and the best index is recomputed.
type SideBook struct {
	side        Side
	minPrice    Price
	maxPrice    Price
	levels      []PriceLevel
	active      []bool
	activeCount int
	bestIndex   int // -1 when unset
}

// NewSideBook builds a ladder covering [minPrice, maxPrice]. The window
// is only the initial allocation; the ladder grows on demand when a
// price outside it arrives.
func NewSideBook(side Side, minPrice, maxPrice Price) *SideBook {
	if minPrice > maxPrice {
		minPrice, maxPrice = maxPrice, minPrice
	}
	span := int(maxPrice - minPrice + 1)
	b := &SideBook{
		side:      side,
		minPrice:  minPrice,
		maxPrice:  maxPrice,
		levels:    make([]PriceLevel, span),
		active:    make([]bool, span),
		bestIndex: -1,
	}
	for i := range b.levels {
		b.levels[i].setPrice(minPrice + Price(i))
	}
	return b
}

// Empty reports whether no active price levels remain.
func (b *SideBook) Empty() bool { return b.activeCount == 0 }

func (b *SideBook) indexOf(p Price) int  { return int(p - b.minPrice) }
func (b *SideBook) priceAt(i int) Price  { return b.minPrice + Price(i) }
func (b *SideBook) inRange(p Price) bool { return p >= b.minPrice && p <= b.maxPrice }

// ensurePrice expands the ladder so price is addressable. Growth keeps
// every existing level at its stamped price; a prepend shifts bestIndex
// by the number of inserted slots. The ladder never shrinks.
func (b *SideBook) ensurePrice(price Price) {
	if len(b.levels) == 0 {
		b.minPrice, b.maxPrice = price, price
		b.levels = append(b.levels, PriceLevel{})
		b.levels[0].setPrice(price)
		b.active = append(b.active, false)
		return
	}
	if price < b.minPrice {
		add := int(b.minPrice - price)
		levels := make([]PriceLevel, add, add+len(b.levels))
		levels = append(levels, b.levels...)
		b.levels = levels
		for i := 0; i < add; i++ {
			b.levels[i].setPrice(price + Price(i))
		}
		active := make([]bool, add, add+len(b.active))
		active = append(active, b.active...)
		b.active = active
		b.minPrice = price
		if b.bestIndex >= 0 {
			b.bestIndex += add
		}
		return
	}
	if price > b.maxPrice {
		add := int(price - b.maxPrice)
		for i := 0; i < add; i++ {
			var lvl PriceLevel
			lvl.setPrice(b.maxPrice + Price(i+1))
			b.levels = append(b.levels, lvl)
			b.active = append(b.active, false)
		}
		b.maxPrice = price
	}
}

func (b *SideBook) updateBestOnInsert(idx int) {
	if b.bestIndex < 0 {
		b.bestIndex = idx
		return
	}
	if b.side == Buy {
		if idx > b.bestIndex {
			b.bestIndex = idx
		}
	} else {
		if idx < b.bestIndex {
			b.bestIndex = idx
		}
	}
}

func (b *SideBook) recomputeBest() {
	b.bestIndex = -1
	if b.activeCount == 0 {
		return
	}
	if b.side == Buy {
		for i := len(b.levels) - 1; i >= 0; i-- {
			if b.active[i] {
				b.bestIndex = i
				return
			}
		}
	} else {
		for i := 0; i < len(b.levels); i++ {
			if b.active[i] {
				b.bestIndex = i
				return
			}
		}
	}
}

func (b *SideBook) nextActiveAfter(idx int) int {
	for i := idx + 1; i < len(b.levels); i++ {
		if b.active[i] {
			return i
		}
	}
	return -1
}

func (b *SideBook) prevActiveBefore(idx int) int {
	for i := idx - 1; i >= 0; i-- {
		if b.active[i] {
			return i
		}
	}
	return -1
}

// Add inserts an order into its price level, expanding the ladder if
// the price is outside the current window.
func (b *SideBook) Add(o *Order) {
	b.ensurePrice(o.Price)
	idx := b.indexOf(o.Price)
	lvl := &b.levels[idx]
	if !b.active[idx] {
		lvl.setPrice(o.Price)
		b.active[idx] = true
		b.activeCount++
		b.updateBestOnInsert(idx)
	}
	lvl.Add(o)
}

// Remove takes an order out of the ladder. When its level goes empty
// the active bit is cleared and, if it held the top of book, the best
// index is recomputed by scanning toward worse prices.
func (b *SideBook) Remove(o *Order) {
	if !b.inRange(o.Price) {
		return
	}
	idx := b.indexOf(o.Price)
	lvl := &b.levels[idx]
	lvl.Remove(o)
	if lvl.Empty() && b.active[idx] {
		b.active[idx] = false
		if b.activeCount > 0 {
			b.activeCount--
		}
		if b.bestIndex == idx {
			b.recomputeBest()
		}
	}
}

// Best returns the order at the front of the top-of-book queue, or nil
// when the side is empty. A best level drained by fills is deactivated
// here and the scan retries on the next candidate.
func (b *SideBook) Best() *Order {
	for {
		if b.bestIndex < 0 {
			b.recomputeBest()
			if b.bestIndex < 0 {
				return nil
			}
		}
		lvl := &b.levels[b.bestIndex]
		if top := lvl.Top(); top != nil {
			return top
		}
		if b.active[b.bestIndex] {
			b.active[b.bestIndex] = false
			if b.activeCount > 0 {
				b.activeCount--
			}
		}
		b.bestIndex = -1
	}
}

// OnFill applies a fill delta to the order's level aggregate. The level
// is deactivated once both its queue and its total are drained.
func (b *SideBook) OnFill(o *Order, delta Quantity) {
	if !b.inRange(o.Price) {
		return
	}
	idx := b.indexOf(o.Price)
	lvl := &b.levels[idx]
	lvl.OnFill(delta)
	if lvl.Total() == 0 && lvl.Empty() && b.active[idx] {
		b.active[idx] = false
		if b.activeCount > 0 {
			b.activeCount--
		}
		if b.bestIndex == idx {
			b.recomputeBest()
		}
	}
}

// AvailableTo aggregates the quantity resting at prices an incoming
// order could trade against, walking active levels from the top of book
// until the cross predicate fails. Used by FOK and minimum-quantity
// admission before any side effect.
func (b *SideBook) AvailableTo(limitPrice Price, incomingSide Side) Quantity {
	if len(b.levels) == 0 || b.activeCount == 0 || b.bestIndex < 0 {
		return 0
	}
	var total Quantity
	if incomingSide == Buy {
		idx := b.bestIndex
		if b.priceAt(idx) > limitPrice {
			return 0
		}
		for idx >= 0 && b.priceAt(idx) <= limitPrice {
			if b.active[idx] {
				total += b.levels[idx].Total()
			}
			idx = b.nextActiveAfter(idx)
		}
	} else {
		idx := b.bestIndex
		if b.priceAt(idx) < limitPrice {
			return 0
		}
		for idx >= 0 && b.priceAt(idx) >= limitPrice {
			if b.active[idx] {
				total += b.levels[idx].Total()
			}
			idx = b.prevActiveBefore(idx)
		}
	}
	return total
}

// AscendLevels visits active levels in ascending price order.
func (b *SideBook) AscendLevels(fn func(*PriceLevel) bool) {
	for i := 0; i < len(b.levels); i++ {
		if !b.active[i] {
			continue
		}
		if !fn(&b.levels[i]) {
			return
		}
	}
}

// DescendLevels visits active levels in descending price order.
func (b *SideBook) DescendLevels(fn func(*PriceLevel) bool) {
	for i := len(b.levels) - 1; i >= 0; i-- {
		if !b.active[i] {
			continue
		}
		if !fn(&b.levels[i]) {
			return
		}
	}
}
