package pairs

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pairIndex/internal/metrics"
	"pairIndex/internal/model"
)

type fakeNode struct {
	mu    sync.Mutex
	words map[common.Address]map[common.Hash][]byte
	fail  map[common.Address]error
	block bool
	calls int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		words: make(map[common.Address]map[common.Hash][]byte),
		fail:  make(map[common.Address]error),
	}
}

func (f *fakeNode) setPair(pool, token0, token1 common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.words[pool] = map[common.Hash][]byte{
		slotKey(Token0Slot): common.BytesToHash(token0.Bytes()).Bytes(),
		slotKey(Token1Slot): common.BytesToHash(token1.Bytes()).Bytes(),
	}
}

func (f *fakeNode) StorageAt(ctx context.Context, account common.Address, slot common.Hash) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	err := f.fail[account]
	word, ok := f.words[account][slot]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no storage for %s", account.Hex())
	}
	return word, nil
}

func (f *fakeNode) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func addr(n int) common.Address {
	return common.BigToAddress(big.NewInt(int64(n)*1000003 + 17))
}

func TestReaderFetchOrderAndSymbols(t *testing.T) {
	node := newFakeNode()
	poolX := common.HexToAddress("0x0d4a11d5EEaaC28EC3F61d100daF4d40471f1852")
	poolY := common.HexToAddress("0xB20bd5D04BE54f870D5C0d3cA85d82b34B836405")
	a, b, c, d := addr(1), addr(2), addr(3), addr(4)
	node.setPair(poolX, a, b)
	node.setPair(poolY, c, d)

	m := metrics.New()
	reader := NewReader(ReaderConfig{}, node, m, zap.NewNop())
	records, err := reader.Fetch(context.Background(), []model.PoolIdentity{
		{Name: "USDT/WETH", Address: "0x0d4a11d5eeaac28ec3f61d100daf4d40471f1852"},
		{Name: "DAI/USDT", Address: poolY.Hex()},
	})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	want := []model.TokenRecord{
		{
			PoolAddr:   "0x0d4a11d5eeaac28ec3f61d100daf4d40471f1852",
			Token0:     "WETH",
			Token1:     "USDT",
			Token0Addr: a.Hex(),
			Token1Addr: b.Hex(),
		},
		{
			PoolAddr:   poolY.Hex(),
			Token0:     "USDT",
			Token1:     "DAI",
			Token0Addr: c.Hex(),
			Token1Addr: d.Hex(),
		},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records mismatch: got %+v want %+v", records, want)
	}
	if got := node.callCount(); got != 4 {
		t.Fatalf("call count mismatch: got %d want 4", got)
	}
}

func TestReaderFetchInvalidAddressAbortsBatch(t *testing.T) {
	node := newFakeNode()
	pool := addr(9)
	node.setPair(pool, addr(1), addr(2))

	reader := NewReader(ReaderConfig{}, node, nil, nil)
	for _, bad := range []string{"0x1234", "0xgg0d4a11d5eeaac28ec3f61d100daf4d40471f18"} {
		records, err := reader.Fetch(context.Background(), []model.PoolIdentity{
			{Name: "USDT/WETH", Address: pool.Hex()},
			{Name: "DAI/USDT", Address: bad},
		})
		if !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("expected ErrInvalidAddress for %q, got %v", bad, err)
		}
		if records != nil {
			t.Fatalf("expected no records for %q, got %+v", bad, records)
		}
	}
	if got := node.callCount(); got != 0 {
		t.Fatalf("node should not be called before validation passes, got %d calls", got)
	}
}

func TestReaderFetchInvalidPoolName(t *testing.T) {
	node := newFakeNode()
	pool := addr(9)
	node.setPair(pool, addr(1), addr(2))

	reader := NewReader(ReaderConfig{}, node, nil, nil)
	records, err := reader.Fetch(context.Background(), []model.PoolIdentity{
		{Name: "USDT-WETH", Address: pool.Hex()},
	})
	if !errors.Is(err, ErrInvalidPoolName) {
		t.Fatalf("expected ErrInvalidPoolName, got %v", err)
	}
	if records != nil {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestReaderFetchRPCErrorAbortsBatch(t *testing.T) {
	node := newFakeNode()
	good, bad := addr(5), addr(6)
	node.setPair(good, addr(1), addr(2))
	node.setPair(bad, addr(3), addr(4))
	node.fail[bad] = errors.New("connection refused")

	reader := NewReader(ReaderConfig{}, node, nil, nil)
	records, err := reader.Fetch(context.Background(), []model.PoolIdentity{
		{Name: "USDT/WETH", Address: good.Hex()},
		{Name: "DAI/USDT", Address: bad.Hex()},
	})
	if !errors.Is(err, ErrRPCQuery) {
		t.Fatalf("expected ErrRPCQuery, got %v", err)
	}
	if records != nil {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestReaderFetchMalformedWord(t *testing.T) {
	node := newFakeNode()
	pool := addr(5)
	node.words[pool] = map[common.Hash][]byte{
		slotKey(Token0Slot): {0x01, 0x02},
		slotKey(Token1Slot): make([]byte, 32),
	}

	reader := NewReader(ReaderConfig{}, node, nil, nil)
	_, err := reader.Fetch(context.Background(), []model.PoolIdentity{{Name: "USDT/WETH", Address: pool.Hex()}})
	if !errors.Is(err, ErrRPCQuery) {
		t.Fatalf("expected ErrRPCQuery, got %v", err)
	}
}

func TestReaderFetchEmpty(t *testing.T) {
	reader := NewReader(ReaderConfig{}, newFakeNode(), nil, nil)
	if _, err := reader.Fetch(context.Background(), nil); !errors.Is(err, ErrNoPools) {
		t.Fatalf("expected ErrNoPools, got %v", err)
	}
}

func TestReaderFetchReadTimeout(t *testing.T) {
	node := newFakeNode()
	node.block = true

	reader := NewReader(ReaderConfig{ReadTimeout: 20 * time.Millisecond}, node, nil, nil)
	_, err := reader.Fetch(context.Background(), []model.PoolIdentity{{Name: "USDT/WETH", Address: addr(1).Hex()}})
	if !errors.Is(err, ErrRPCQuery) {
		t.Fatalf("expected ErrRPCQuery, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestReaderFetchConcurrentPreservesOrder(t *testing.T) {
	node := newFakeNode()
	pools := make([]model.PoolIdentity, 0, 12)
	for i := 0; i < 12; i++ {
		pool := addr(100 + i)
		node.setPair(pool, addr(i%10), addr((i+1)%10))
		pools = append(pools, model.PoolIdentity{Name: fmt.Sprintf("Q%d/B%d", i, i), Address: pool.Hex()})
	}

	reader := NewReader(ReaderConfig{Concurrency: 4}, node, nil, nil)
	records, err := reader.Fetch(context.Background(), pools)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(records) != len(pools) {
		t.Fatalf("record count mismatch: got %d want %d", len(records), len(pools))
	}
	for i, record := range records {
		want := model.TokenRecord{
			PoolAddr:   pools[i].Address,
			Token0:     fmt.Sprintf("B%d", i),
			Token1:     fmt.Sprintf("Q%d", i),
			Token0Addr: addr(i % 10).Hex(),
			Token1Addr: addr((i + 1) % 10).Hex(),
		}
		if record != want {
			t.Fatalf("record %d mismatch: got %+v want %+v", i, record, want)
		}
	}
}

func TestReaderFetchConcurrentFailureReturnsNothing(t *testing.T) {
	node := newFakeNode()
	pools := make([]model.PoolIdentity, 0, 6)
	for i := 0; i < 6; i++ {
		pool := addr(i + 1)
		node.setPair(pool, addr(0), addr(7))
		pools = append(pools, model.PoolIdentity{Name: "USDT/WETH", Address: pool.Hex()})
	}
	node.fail[addr(4)] = errors.New("rate limited")

	reader := NewReader(ReaderConfig{Concurrency: 3}, node, nil, nil)
	records, err := reader.Fetch(context.Background(), pools)
	if !errors.Is(err, ErrRPCQuery) {
		t.Fatalf("expected ErrRPCQuery, got %v", err)
	}
	if records != nil {
		t.Fatalf("expected no records, got %+v", records)
	}
}
