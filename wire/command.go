// Package wire implements the line-oriented command protocol spoken on
// stdin and the trade/snapshot lines written to stdout.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"kestrel/domain/book"
)

// CommandType enumerates the recognized verbs.
type CommandType uint8

const (
	CmdBuy CommandType = iota
	CmdSell
	CmdCancel
	CmdModify
	CmdPrint
)

// Command is one parsed instruction for a single symbol's engine. The
// engine's worker resolves ClientID to a dense internal id when it
// executes the command.
type Command struct {
	Type     CommandType
	ClientID string
	Price    book.Price
	Qty      book.Quantity
	Side     book.Side
	TIF      book.TimeInForce
	MinQty   book.Quantity
	HasMin   bool
}

func parseTIF(s string) book.TimeInForce {
	switch s {
	case "IOC":
		return book.IOC
	case "FOK":
		return book.FOK
	default:
		return book.GFD
	}
}

func parseMinSuffix(fields []string, cmd *Command) {
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] != "MIN" {
			continue
		}
		q, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			continue
		}
		cmd.MinQty = q
		cmd.HasMin = true
	}
}

// ParseLine parses everything after the symbol token. Malformed lines
// return ok=false and are ignored by the caller.
func ParseLine(rest string) (Command, bool) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Command{}, false
	}
	verb := fields[0]
	args := fields[1:]

	switch verb {
	case "BUY", "SELL":
		// <tif> <price> <qty> <client_id> [MIN <q>]
		if len(args) < 4 {
			return Command{}, false
		}
		price, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return Command{}, false
		}
		qty, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return Command{}, false
		}
		cmd := Command{
			Type:     CmdBuy,
			ClientID: args[3],
			Price:    price,
			Qty:      qty,
			Side:     book.Buy,
			TIF:      parseTIF(args[0]),
		}
		if verb == "SELL" {
			cmd.Type = CmdSell
			cmd.Side = book.Sell
		}
		parseMinSuffix(args[4:], &cmd)
		return cmd, true

	case "CANCEL":
		// <client_id>
		if len(args) < 1 {
			return Command{}, false
		}
		return Command{Type: CmdCancel, ClientID: args[0]}, true

	case "MODIFY":
		// <client_id> <BUY|SELL> <price> <qty> [MIN <q>]
		if len(args) < 4 {
			return Command{}, false
		}
		side := book.Buy
		switch args[1] {
		case "BUY":
		case "SELL":
			side = book.Sell
		default:
			return Command{}, false
		}
		price, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return Command{}, false
		}
		qty, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return Command{}, false
		}
		cmd := Command{
			Type:     CmdModify,
			ClientID: args[0],
			Side:     side,
			Price:    price,
			Qty:      qty,
			// The wire MODIFY carries no TIF; the engine applies its
			// dispatcher policy (GFD) before re-entry.
			TIF: book.GFD,
		}
		parseMinSuffix(args[4:], &cmd)
		return cmd, true

	case "PRINT":
		return Command{Type: CmdPrint}, true
	}
	return Command{}, false
}

// FormatTrade renders one fill as a protocol line. The traded quantity
// appears once per party.
func FormatTrade(symbol, restingClient string, restingPx book.Price, qty book.Quantity, incomingClient string, incomingPx book.Price) string {
	return fmt.Sprintf("%s TRADE %s %d %d %s %d %d",
		symbol, restingClient, restingPx, qty, incomingClient, incomingPx, qty)
}
