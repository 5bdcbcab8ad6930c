package book

import "testing"

func mkOrder(p *Pool, id OrderID, px Price, qty Quantity, side Side) *Order {
	return p.Create(id, px, qty, side, GFD, nil)
}

func TestSideBookBestTracking(t *testing.T) {
	p := NewPool(16)
	b := NewSideBook(Buy, 90, 110)

	b.Add(mkOrder(p, 1, 100, 5, Buy))
	b.Add(mkOrder(p, 2, 105, 3, Buy))
	b.Add(mkOrder(p, 3, 95, 7, Buy))

	best := b.Best()
	if best == nil || best.Price != 105 {
		t.Fatalf("best = %v, want price 105", best)
	}

	b.Remove(best)
	best = b.Best()
	if best == nil || best.Price != 100 {
		t.Errorf("best after remove = %v, want price 100", best)
	}
}

func TestSideBookAskBestIsLowest(t *testing.T) {
	p := NewPool(16)
	b := NewSideBook(Sell, 90, 110)

	b.Add(mkOrder(p, 1, 105, 5, Sell))
	b.Add(mkOrder(p, 2, 100, 3, Sell))

	best := b.Best()
	if best == nil || best.Price != 100 {
		t.Fatalf("ask best = %v, want price 100", best)
	}
}

func TestLadderExpandsBelowWindow(t *testing.T) {
	p := NewPool(16)
	b := NewSideBook(Buy, 100, 110)

	b.Add(mkOrder(p, 1, 105, 5, Buy))
	b.Add(mkOrder(p, 2, 80, 3, Buy))

	if b.minPrice != 80 {
		t.Errorf("minPrice = %d, want 80", b.minPrice)
	}
	best := b.Best()
	if best == nil || best.Price != 105 {
		t.Errorf("best after prepend = %v, want price 105 preserved", best)
	}
	for i, lvl := range b.levels {
		if lvl.Price() != b.priceAt(i) {
			t.Fatalf("level %d stamped %d, want %d", i, lvl.Price(), b.priceAt(i))
		}
	}
}

func TestLadderExpandsAboveWindow(t *testing.T) {
	p := NewPool(16)
	b := NewSideBook(Sell, 100, 110)

	b.Add(mkOrder(p, 1, 105, 5, Sell))
	b.Add(mkOrder(p, 2, 130, 3, Sell))

	if b.maxPrice != 130 {
		t.Errorf("maxPrice = %d, want 130", b.maxPrice)
	}
	best := b.Best()
	if best == nil || best.Price != 105 {
		t.Errorf("best after append = %v, want price 105", best)
	}
}

func TestInvertedWindowSwapped(t *testing.T) {
	b := NewSideBook(Buy, 110, 90)
	if b.minPrice != 90 || b.maxPrice != 110 {
		t.Errorf("window = [%d,%d], want [90,110]", b.minPrice, b.maxPrice)
	}
}

func TestAvailableToStopsAtLimit(t *testing.T) {
	p := NewPool(16)
	asks := NewSideBook(Sell, 90, 110)
	asks.Add(mkOrder(p, 1, 100, 5, Sell))
	asks.Add(mkOrder(p, 2, 101, 7, Sell))
	asks.Add(mkOrder(p, 3, 103, 9, Sell))

	if got := asks.AvailableTo(101, Buy); got != 12 {
		t.Errorf("AvailableTo(101) = %d, want 12", got)
	}
	if got := asks.AvailableTo(99, Buy); got != 0 {
		t.Errorf("AvailableTo(99) = %d, want 0", got)
	}
	if got := asks.AvailableTo(200, Buy); got != 21 {
		t.Errorf("AvailableTo(200) = %d, want 21", got)
	}
}

func TestAvailableToForSellIncoming(t *testing.T) {
	p := NewPool(16)
	bids := NewSideBook(Buy, 90, 110)
	bids.Add(mkOrder(p, 1, 100, 5, Buy))
	bids.Add(mkOrder(p, 2, 98, 7, Buy))

	if got := bids.AvailableTo(99, Sell); got != 5 {
		t.Errorf("AvailableTo(99) = %d, want 5", got)
	}
	if got := bids.AvailableTo(98, Sell); got != 12 {
		t.Errorf("AvailableTo(98) = %d, want 12", got)
	}
	if got := bids.AvailableTo(101, Sell); got != 0 {
		t.Errorf("AvailableTo(101) = %d, want 0", got)
	}
}

func TestWalksSkipInactiveLevels(t *testing.T) {
	p := NewPool(16)
	b := NewSideBook(Sell, 90, 110)
	o1 := mkOrder(p, 1, 95, 5, Sell)
	b.Add(o1)
	b.Add(mkOrder(p, 2, 100, 3, Sell))
	b.Remove(o1)

	var prices []Price
	b.AscendLevels(func(lvl *PriceLevel) bool {
		prices = append(prices, lvl.Price())
		return true
	})
	if len(prices) != 1 || prices[0] != 100 {
		t.Errorf("ascend visited %v, want [100]", prices)
	}
}
