// Package book implements the single-instrument limit order book.
// It maintains a dense price ladder per side, matches crossing orders
// under price-time priority with GFD/IOC/FOK time-in-force and optional
// minimum-fill admission, and reports fills through a registered trade
// sink.
//
// The book is a single-writer structure: all mutation must happen on
// one goroutine. Orders are allocated from a fixed-capacity pool and
// never move in memory while live, so the ladder, the id index, and the
// per-level queues hold raw pointers to them.
package book
