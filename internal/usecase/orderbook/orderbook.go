package orderbook

import (
	"encoding/binary"
	"hash/crc32"
	"sort"
	"sync"
	"sync/atomic"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	orderbookv1 "github.com/muhammadchandra19/book-builder/internal/domain/orderbook/v1"
)

// checksumDepth is how many levels per side feed the divergence checksum,
// matching the venue convention of checksumming top-of-book only.
const checksumDepth = 25

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// BBO is the cached best bid and offer. HasBid/HasAsk distinguish an empty
// side from a resting price of zero.
type BBO struct {
	BidPrice int64
	AskPrice int64
	HasBid   bool
	HasAsk   bool
}

// DepthLevel is one aggregated row of a depth query.
type DepthLevel struct {
	Price      int64
	Quantity   int64
	OrderCount int64
}

type orderRef struct {
	side  orderbookv1.Side
	price int64
}

// ladder is one side of the book: a price-keyed level map plus an ascending
// sorted price index for ordered iteration.
type ladder struct {
	prices []int64
	levels map[int64]*orderbookv1.PriceLevel
}

func newLadder() *ladder {
	return &ladder{
		levels: make(map[int64]*orderbookv1.PriceLevel),
	}
}

func (l *ladder) level(price int64) (*orderbookv1.PriceLevel, bool) {
	lvl, ok := l.levels[price]
	return lvl, ok
}

// upsert returns the level at price, creating it if absent.
func (l *ladder) upsert(price int64) *orderbookv1.PriceLevel {
	if lvl, ok := l.levels[price]; ok {
		return lvl
	}

	lvl := orderbookv1.NewPriceLevel(price)
	l.levels[price] = lvl

	i := sort.Search(len(l.prices), func(i int) bool { return l.prices[i] >= price })
	l.prices = append(l.prices, 0)
	copy(l.prices[i+1:], l.prices[i:])
	l.prices[i] = price

	return lvl
}

func (l *ladder) remove(price int64) {
	if _, ok := l.levels[price]; !ok {
		return
	}
	delete(l.levels, price)

	i := sort.Search(len(l.prices), func(i int) bool { return l.prices[i] >= price })
	if i < len(l.prices) && l.prices[i] == price {
		l.prices = append(l.prices[:i], l.prices[i+1:]...)
	}
}

func (l *ladder) len() int {
	return len(l.prices)
}

// Book is a per-symbol aggregated limit order book.
//
// Structural mutations take the book mutex; the hot read paths do not. BBO
// reads load one atomic pointer, level aggregates are wait-free, and depth
// walks hold only a short read lock over the price index.
type Book struct {
	symbol   string
	tickSize int64
	lotSize  int64

	// Region of interest. A zero width disables the window; otherwise adds
	// and delta updates outside [center-width, center+width] are dropped at
	// this boundary.
	roiCenter int64
	roiWidth  int64

	mu     sync.RWMutex
	bids   *ladder
	asks   *ladder
	orders map[uint64]orderRef

	bbo      atomic.Pointer[BBO]
	checksum atomic.Uint32
	// mutations counts structural changes and feeds the running checksum so
	// that repeated identical mutations still move it.
	mutations atomic.Uint64
}

// NewBook creates an empty unbounded book for the symbol.
func NewBook(symbol string) *Book {
	return NewBookWithROI(symbol, 1, 1, 0, 0)
}

// NewBookWithROI creates a book that only tracks prices within the given
// region of interest window. Out-of-window updates are dropped on entry; no
// per-operation range checks exist beyond this boundary.
func NewBookWithROI(symbol string, tickSize, lotSize, roiCenter, roiWidth int64) *Book {
	b := &Book{
		symbol:    symbol,
		tickSize:  tickSize,
		lotSize:   lotSize,
		roiCenter: roiCenter,
		roiWidth:  roiWidth,
		bids:      newLadder(),
		asks:      newLadder(),
		orders:    make(map[uint64]orderRef),
	}
	b.bbo.Store(&BBO{})
	return b
}

// Symbol returns the symbol this book tracks.
func (b *Book) Symbol() string {
	return b.symbol
}

// TickSize returns the price scaling unit.
func (b *Book) TickSize() int64 {
	return b.tickSize
}

// LotSize returns the quantity scaling unit.
func (b *Book) LotSize() int64 {
	return b.lotSize
}

func (b *Book) inWindow(price int64) bool {
	if b.roiWidth <= 0 {
		return true
	}
	return price >= b.roiCenter-b.roiWidth && price <= b.roiCenter+b.roiWidth
}

func (b *Book) side(s orderbookv1.Side) *ladder {
	if s == orderbookv1.SideBid {
		return b.bids
	}
	return b.asks
}

// AddOrder inserts the order at its price, creating the level if absent, and
// refreshes the BBO cache and checksum. It returns false when the order was
// dropped: outside the ROI window or a duplicate id. Zero-quantity orders
// are tracked; rejecting them belongs to a validation layer above.
func (b *Book) AddOrder(order *orderbookv1.Order) bool {
	if order == nil {
		return false
	}
	if !b.inWindow(order.Price) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.orders[order.ID]; exists {
		return false
	}

	lvl := b.side(order.Side).upsert(order.Price)
	lvl.AddOrder(order)
	b.orders[order.ID] = orderRef{side: order.Side, price: order.Price}

	b.foldChecksum(order.Side, order.Price, order.Quantity)
	b.refreshBBOLocked()

	return true
}

// CancelOrder removes the order from its level via the id index, evicts the
// level if it became empty, and refreshes the BBO cache and checksum. It
// returns false for unknown ids.
func (b *Book) CancelOrder(id uint64) (*orderbookv1.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ref, ok := b.orders[id]
	if !ok {
		return nil, false
	}

	side := b.side(ref.side)
	lvl, ok := side.level(ref.price)
	if !ok {
		// index says the order exists but the level is gone; drop the stale
		// index entry
		delete(b.orders, id)
		return nil, false
	}

	order, removed := lvl.RemoveOrder(id)
	delete(b.orders, id)
	if !removed {
		return nil, false
	}

	if lvl.IsEmpty() {
		side.remove(ref.price)
	}

	b.foldChecksum(ref.side, ref.price, -order.Quantity)
	b.refreshBBOLocked()

	return order, true
}

// BBO returns the cached best bid and offer. O(1), lock-free.
func (b *Book) BBO() BBO {
	return *b.bbo.Load()
}

// Spread returns ask-bid in tick units, false if either side is empty.
func (b *Book) Spread() (int64, bool) {
	bbo := b.BBO()
	if !bbo.HasBid || !bbo.HasAsk {
		return 0, false
	}
	return bbo.AskPrice - bbo.BidPrice, true
}

// Mid returns (bid+ask)/2 truncated toward zero, false if either side is
// empty.
func (b *Book) Mid() (int64, bool) {
	bbo := b.BBO()
	if !bbo.HasBid || !bbo.HasAsk {
		return 0, false
	}
	return (bbo.BidPrice + bbo.AskPrice) / 2, true
}

// Depth returns up to n levels per side, best-first: bids by descending
// price, asks by ascending price.
func (b *Book) Depth(n int) (bids, asks []DepthLevel) {
	if n < 0 {
		n = 0
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = make([]DepthLevel, 0, min(n, b.bids.len()))
	for i := b.bids.len() - 1; i >= 0 && len(bids) < n; i-- {
		price := b.bids.prices[i]
		lvl := b.bids.levels[price]
		bids = append(bids, DepthLevel{Price: price, Quantity: lvl.Quantity(), OrderCount: lvl.OrderCount()})
	}

	asks = make([]DepthLevel, 0, min(n, b.asks.len()))
	for i := 0; i < b.asks.len() && len(asks) < n; i++ {
		price := b.asks.prices[i]
		lvl := b.asks.levels[price]
		asks = append(asks, DepthLevel{Price: price, Quantity: lvl.Quantity(), OrderCount: lvl.OrderCount()})
	}

	return bids, asks
}

// BidSizeAt returns the aggregated bid quantity at the exact price, zero if
// no level exists there.
func (b *Book) BidSizeAt(price int64) int64 {
	return b.sizeAt(orderbookv1.SideBid, price)
}

// AskSizeAt returns the aggregated ask quantity at the exact price, zero if
// no level exists there.
func (b *Book) AskSizeAt(price int64) int64 {
	return b.sizeAt(orderbookv1.SideAsk, price)
}

func (b *Book) sizeAt(side orderbookv1.Side, price int64) int64 {
	b.mu.RLock()
	lvl, ok := b.side(side).level(price)
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	return lvl.Quantity()
}

// HiddenQuantityAt returns the non-displayed iceberg quantity resting at the
// price on the given side.
func (b *Book) HiddenQuantityAt(side orderbookv1.Side, price int64) int64 {
	b.mu.RLock()
	lvl, ok := b.side(side).level(price)
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	return lvl.HiddenQuantity()
}

// LoadSnapshot atomically replaces all levels on both sides with the
// aggregated rows of a venue snapshot, then recomputes the BBO cache and
// checksum. Used for initial construction and gap-recovery resync.
func (b *Book) LoadSnapshot(bids, asks []eventv1.PriceLevelUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = newLadder()
	b.asks = newLadder()
	b.orders = make(map[uint64]orderRef)

	for _, row := range bids {
		if !b.inWindow(row.Price) || row.Quantity <= 0 {
			continue
		}
		b.bids.upsert(row.Price).Replace(row.Quantity, row.OrderCount)
	}
	for _, row := range asks {
		if !b.inWindow(row.Price) || row.Quantity <= 0 {
			continue
		}
		b.asks.upsert(row.Price).Replace(row.Quantity, row.OrderCount)
	}

	b.refreshBBOLocked()
	b.checksum.Store(b.computeChecksumLocked())
	b.mutations.Add(1)
}

// ApplyDelta applies an incremental venue update: per-price quantity
// replacements plus explicit deletions. Sequencing validity is the replay
// engine's concern; the book applies whatever it is handed.
func (b *Book) ApplyDelta(delta *eventv1.OrderBookDelta) {
	if delta == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.applyDeltaSideLocked(b.bids, orderbookv1.SideBid, delta.BidUpdates, delta.BidDeletions)
	b.applyDeltaSideLocked(b.asks, orderbookv1.SideAsk, delta.AskUpdates, delta.AskDeletions)

	b.refreshBBOLocked()
}

func (b *Book) applyDeltaSideLocked(side *ladder, s orderbookv1.Side, updates []eventv1.PriceLevelUpdate, deletions []int64) {
	for _, row := range updates {
		if !b.inWindow(row.Price) {
			continue
		}
		if row.Quantity <= 0 {
			side.remove(row.Price)
			b.foldChecksum(s, row.Price, 0)
			continue
		}
		side.upsert(row.Price).Replace(row.Quantity, row.OrderCount)
		b.foldChecksum(s, row.Price, row.Quantity)
	}
	for _, price := range deletions {
		side.remove(price)
		b.foldChecksum(s, price, 0)
	}
}

// Clear empties both sides and resets the BBO cache and checksum. Used on
// reconnect before a fresh snapshot arrives.
func (b *Book) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = newLadder()
	b.asks = newLadder()
	b.orders = make(map[uint64]orderRef)

	b.bbo.Store(&BBO{})
	b.checksum.Store(0)
	b.mutations.Store(0)
}

// Checksum returns the running mutation checksum: a cheap divergence
// detector that changes on every structural mutation and is stable across
// read-only calls. Not cryptographic.
func (b *Book) Checksum() uint32 {
	return b.checksum.Load()
}

// ComputeChecksum folds the top levels of both sides into a CRC32. This is
// the value compared against venue snapshot checksums.
func (b *Book) ComputeChecksum() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.computeChecksumLocked()
}

func (b *Book) computeChecksumLocked() uint32 {
	var buf [16]byte
	sum := uint32(0)

	count := 0
	for i := b.bids.len() - 1; i >= 0 && count < checksumDepth; i-- {
		price := b.bids.prices[i]
		binary.LittleEndian.PutUint64(buf[0:8], uint64(price))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(b.bids.levels[price].Quantity()))
		sum = crc32.Update(sum, crcTable, buf[:])
		count++
	}

	count = 0
	for i := 0; i < b.asks.len() && count < checksumDepth; i++ {
		price := b.asks.prices[i]
		binary.LittleEndian.PutUint64(buf[0:8], uint64(price))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(b.asks.levels[price].Quantity()))
		sum = crc32.Update(sum, crcTable, buf[:])
		count++
	}

	return sum
}

// SnapshotLevels returns the aggregated level rows of both sides, best-first,
// in the shape snapshot events carry. Used by the host to publish periodic
// snapshots of the live book.
func (b *Book) SnapshotLevels() (bids, asks []eventv1.PriceLevelUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = make([]eventv1.PriceLevelUpdate, 0, b.bids.len())
	for i := b.bids.len() - 1; i >= 0; i-- {
		price := b.bids.prices[i]
		lvl := b.bids.levels[price]
		bids = append(bids, eventv1.PriceLevelUpdate{Price: price, Quantity: lvl.Quantity(), OrderCount: lvl.OrderCount()})
	}

	asks = make([]eventv1.PriceLevelUpdate, 0, b.asks.len())
	for i := 0; i < b.asks.len(); i++ {
		price := b.asks.prices[i]
		lvl := b.asks.levels[price]
		asks = append(asks, eventv1.PriceLevelUpdate{Price: price, Quantity: lvl.Quantity(), OrderCount: lvl.OrderCount()})
	}

	return bids, asks
}

// foldChecksum advances the running checksum with one structural mutation.
// The mutation counter is folded in so that add/cancel pairs of the same
// order do not cancel out.
func (b *Book) foldChecksum(side orderbookv1.Side, price, quantity int64) {
	var buf [25]byte
	buf[0] = byte(side)
	binary.LittleEndian.PutUint64(buf[1:9], uint64(price))
	binary.LittleEndian.PutUint64(buf[9:17], uint64(quantity))
	binary.LittleEndian.PutUint64(buf[17:25], b.mutations.Add(1))

	b.checksum.Store(crc32.Update(b.checksum.Load(), crcTable, buf[:]))
}

// refreshBBOLocked republishes the BBO cache from the ladder tops. Called
// with the book mutex held after every structural mutation, so an improving
// add is visible to readers in one atomic store.
func (b *Book) refreshBBOLocked() {
	bbo := &BBO{}
	if n := b.bids.len(); n > 0 {
		bbo.BidPrice = b.bids.prices[n-1]
		bbo.HasBid = true
	}
	if b.asks.len() > 0 {
		bbo.AskPrice = b.asks.prices[0]
		bbo.HasAsk = true
	}
	b.bbo.Store(bbo)
}
