package book

// Pool is a fixed-capacity slab of orders. The slab is allocated once
// and never grows, so every pointer handed out by Create stays valid
// until Destroy returns its slot to the free stack. No allocation
// happens in steady state.
type Pool struct {
	slab []Order
	free []*Order
}

// NewPool pre-allocates storage for capacity orders.
func NewPool(capacity int) *Pool {
	p := &Pool{
		slab: make([]Order, capacity),
		free: make([]*Order, 0, capacity),
	}
	for i := range p.slab {
		p.free = append(p.free, &p.slab[i])
	}
	return p
}

// Create pops a free slot and constructs an order in place. Returns nil
// when the pool is exhausted; the caller surfaces "not admitted".
func (p *Pool) Create(id OrderID, price Price, qty Quantity, side Side, tif TimeInForce, minQty *Quantity) *Order {
	if len(p.free) == 0 {
		return nil
	}
	o := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	*o = Order{
		ID:       id,
		Price:    price,
		Quantity: qty,
		Side:     side,
		TIF:      tif,
	}
	if minQty != nil {
		o.MinQty = *minQty
		o.HasMinQty = true
	}
	o.node.order = o
	return o
}

// Destroy returns an order's slot to the pool. The pointer must not be
// used afterwards.
func (p *Pool) Destroy(o *Order) {
	if o == nil {
		return
	}
	o.node.next, o.node.prev = nil, nil
	o.Resting = false
	o.ID = InvalidOrderID
	p.free = append(p.free, o)
}

// Capacity reports the maximum number of simultaneously live orders.
func (p *Pool) Capacity() int { return len(p.slab) }

// Available reports the number of free slots.
func (p *Pool) Available() int { return len(p.free) }
