package book

// node is the intrusive hook embedded in every Order. The back-pointer
// resolves "pop a node, return its order" without a parallel lookup.
type node struct {
	order *Order
	next  *node
	prev  *node
}

// Order is a single client order. Instances are allocated from the
// book's pool and keep a stable address until destroyed, so the ladder
// and the id index hold raw pointers to them. An order is reachable in
// exactly one place at a time: transiently on the worker's stack while
// it matches, or in one price-level queue once it rests.
type Order struct {
	ID       OrderID
	Price    Price
	Quantity Quantity // remaining
	Side     Side
	TIF      TimeInForce

	// MinQty is the acceptable fill floor checked at admission.
	MinQty    Quantity
	HasMinQty bool

	// Resting is true iff the order currently occupies a price-level queue.
	Resting bool

	node node
}
