package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/domain/book"
)

func TestParseBuy(t *testing.T) {
	cmd, ok := ParseLine("BUY GFD 100 10 order1")
	require.True(t, ok)
	assert.Equal(t, CmdBuy, cmd.Type)
	assert.Equal(t, book.Buy, cmd.Side)
	assert.Equal(t, book.GFD, cmd.TIF)
	assert.Equal(t, book.Price(100), cmd.Price)
	assert.Equal(t, book.Quantity(10), cmd.Qty)
	assert.Equal(t, "order1", cmd.ClientID)
	assert.False(t, cmd.HasMin)
}

func TestParseSellIOCWithMin(t *testing.T) {
	cmd, ok := ParseLine("SELL IOC 99 25 o7 MIN 5")
	require.True(t, ok)
	assert.Equal(t, CmdSell, cmd.Type)
	assert.Equal(t, book.Sell, cmd.Side)
	assert.Equal(t, book.IOC, cmd.TIF)
	assert.True(t, cmd.HasMin)
	assert.Equal(t, book.Quantity(5), cmd.MinQty)
}

func TestParseFOK(t *testing.T) {
	cmd, ok := ParseLine("BUY FOK 100 10 x")
	require.True(t, ok)
	assert.Equal(t, book.FOK, cmd.TIF)
}

func TestUnknownTIFDefaultsToGFD(t *testing.T) {
	cmd, ok := ParseLine("BUY DAY 100 10 x")
	require.True(t, ok)
	assert.Equal(t, book.GFD, cmd.TIF)
}

func TestParseCancel(t *testing.T) {
	cmd, ok := ParseLine("CANCEL order1")
	require.True(t, ok)
	assert.Equal(t, CmdCancel, cmd.Type)
	assert.Equal(t, "order1", cmd.ClientID)
}

func TestParseModify(t *testing.T) {
	cmd, ok := ParseLine("MODIFY order1 SELL 101 7")
	require.True(t, ok)
	assert.Equal(t, CmdModify, cmd.Type)
	assert.Equal(t, book.Sell, cmd.Side)
	assert.Equal(t, book.Price(101), cmd.Price)
	assert.Equal(t, book.Quantity(7), cmd.Qty)
	assert.Equal(t, book.GFD, cmd.TIF)
}

func TestParseModifyWithMin(t *testing.T) {
	cmd, ok := ParseLine("MODIFY o BUY 50 3 MIN 2")
	require.True(t, ok)
	assert.True(t, cmd.HasMin)
	assert.Equal(t, book.Quantity(2), cmd.MinQty)
}

func TestParsePrint(t *testing.T) {
	cmd, ok := ParseLine("PRINT")
	require.True(t, ok)
	assert.Equal(t, CmdPrint, cmd.Type)
}

func TestMalformedLinesRejected(t *testing.T) {
	for _, line := range []string{
		"",
		"   ",
		"HOLD GFD 100 10 x",
		"BUY GFD 100 10",
		"BUY GFD abc 10 x",
		"BUY GFD 100 abc x",
		"CANCEL",
		"MODIFY o SIDEWAYS 100 10",
		"MODIFY o BUY 100",
		"MODIFY o BUY x 10",
	} {
		if _, ok := ParseLine(line); ok {
			t.Errorf("ParseLine(%q) accepted, want rejected", line)
		}
	}
}

func TestMinSuffixIgnoresGarbage(t *testing.T) {
	cmd, ok := ParseLine("BUY GFD 100 10 x MIN nope")
	require.True(t, ok)
	assert.False(t, cmd.HasMin)
}

func TestFormatTrade(t *testing.T) {
	line := FormatTrade("AAPL", "b1", 100, 5, "s9", 105)
	assert.Equal(t, "AAPL TRADE b1 100 5 s9 105 5", line)
}
