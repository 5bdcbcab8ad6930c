// Package service is the write path of the system. A per-symbol
// Engine owns one order book on a single worker goroutine fed by an
// SPSC command ring, and a Dispatcher creates engines on first sight
// of a symbol and routes parsed commands to them. Nothing else
// mutates a book.
package service
