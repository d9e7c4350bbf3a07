package mint

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	counterdom "mintledger/internal/domain/counter"
	eventdom "mintledger/internal/domain/event"
	mintdom "mintledger/internal/domain/mint"
	tokendom "mintledger/internal/domain/token"
)

// ------------------------------------------------------
// In-memory fakes
// ------------------------------------------------------

type fakeRegistry struct {
	bound    map[tokendom.ID]tokendom.Binding
	failBind error
	calls    int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{bound: map[tokendom.ID]tokendom.Binding{}}
}

func (f *fakeRegistry) Bind(_ context.Context, bindings []tokendom.Binding) error {
	f.calls++
	if f.failBind != nil {
		return f.failBind
	}
	for _, b := range bindings {
		if _, ok := f.bound[b.TokenID]; ok {
			return tokendom.ErrAlreadyBound
		}
	}
	for _, b := range bindings {
		f.bound[b.TokenID] = b
	}
	return nil
}

func (f *fakeRegistry) OwnerOf(_ context.Context, id tokendom.ID) (string, error) {
	b, ok := f.bound[id]
	if !ok {
		return "", tokendom.ErrNotFound
	}
	return b.Owner, nil
}

func (f *fakeRegistry) TokensOf(_ context.Context, owner string) ([]tokendom.ID, error) {
	var out []tokendom.ID
	for id, b := range f.bound {
		if b.Owner == owner {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeSettings struct {
	state      LedgerState
	savedLast  []tokendom.ID
	savedPrice []uint64
	savedBase  []string
	failSave   error
}

func (f *fakeSettings) Load(context.Context) (LedgerState, error) { return f.state, nil }

func (f *fakeSettings) SaveLastTokenID(_ context.Context, id tokendom.ID) error {
	if f.failSave != nil {
		return f.failSave
	}
	f.savedLast = append(f.savedLast, id)
	return nil
}

func (f *fakeSettings) SaveUnitPrice(_ context.Context, price uint64) error {
	if f.failSave != nil {
		return f.failSave
	}
	f.savedPrice = append(f.savedPrice, price)
	return nil
}

func (f *fakeSettings) SaveMetadataBase(_ context.Context, base string) error {
	if f.failSave != nil {
		return f.failSave
	}
	f.savedBase = append(f.savedBase, base)
	return nil
}

type captureSink struct {
	events []eventdom.Event
}

func (c *captureSink) Publish(_ context.Context, ev eventdom.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func newTestEngine(t *testing.T, state LedgerState) (*Engine, *fakeRegistry, *fakeSettings, *captureSink) {
	t.Helper()
	reg := newFakeRegistry()
	set := &fakeSettings{state: state}
	sink := &captureSink{}
	e, err := NewEngine(state, reg, set, sink)
	require.NoError(t, err)
	return e, reg, set, sink
}

func refs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "ref"
	}
	return out
}

// ------------------------------------------------------
// BatchMint
// ------------------------------------------------------

func TestBatchMint_AllocatesContiguousIDs(t *testing.T) {
	e, reg, set, sink := newTestEngine(t, LedgerState{UnitPrice: 100})

	res, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 3, []string{"a", "b", "c"}, 300))
	require.NoError(t, err)

	assert.Equal(t, []tokendom.ID{1, 2, 3}, res.TokenIDs)
	assert.Equal(t, "acct-1", res.Recipient)
	assert.Equal(t, uint64(100), res.UnitPrice)
	assert.Equal(t, tokendom.ID(3), e.CurrentTokenID())

	// 各 id が metadataRefs の対応要素に束縛されている
	for i, id := range res.TokenIDs {
		b := reg.bound[id]
		assert.Equal(t, "acct-1", b.Owner)
		assert.Equal(t, []string{"a", "b", "c"}[i], b.MetadataRef)
	}

	// 採番位置が永続化され、BatchMinted が 1 回だけ発行される
	require.Equal(t, []tokendom.ID{3}, set.savedLast)
	require.Len(t, sink.events, 1)
	ev, ok := sink.events[0].(eventdom.BatchMinted)
	require.True(t, ok)
	assert.Equal(t, []tokendom.ID{1, 2, 3}, ev.TokenIDs)
}

func TestBatchMint_GapFreeAcrossCalls(t *testing.T) {
	e, _, _, _ := newTestEngine(t, LedgerState{UnitPrice: 0})

	r1, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 2, refs(2), 0))
	require.NoError(t, err)
	r2, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-2", 3, refs(3), 0))
	require.NoError(t, err)

	assert.Equal(t, []tokendom.ID{1, 2}, r1.TokenIDs)
	assert.Equal(t, []tokendom.ID{3, 4, 5}, r2.TokenIDs)
}

func TestBatchMint_ResumesFromRestoredState(t *testing.T) {
	e, _, _, _ := newTestEngine(t, LedgerState{LastTokenID: 100, UnitPrice: 0})

	res, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 2, refs(2), 0))
	require.NoError(t, err)
	assert.Equal(t, []tokendom.ID{101, 102}, res.TokenIDs)
}

func TestBatchMint_ValidationOrder(t *testing.T) {
	e, reg, _, sink := newTestEngine(t, LedgerState{UnitPrice: 100})
	ctx := context.Background()

	_, err := e.BatchMint(ctx, mintdom.NewRequest("acct-1", 0, nil, 1000))
	require.ErrorIs(t, err, mintdom.ErrInvalidCount)

	_, err = e.BatchMint(ctx, mintdom.NewRequest("acct-1", 51, refs(51), math.MaxUint64))
	require.ErrorIs(t, err, mintdom.ErrBatchTooLarge)

	_, err = e.BatchMint(ctx, mintdom.NewRequest("acct-1", 3, refs(2), 1000))
	require.ErrorIs(t, err, mintdom.ErrMetadataCountMismatch)

	_, err = e.BatchMint(ctx, mintdom.NewRequest("acct-1", 3, refs(3), 299))
	require.ErrorIs(t, err, mintdom.ErrInsufficientPayment)

	// どの失敗でも状態は一切進まず、イベントも台帳書き込みも発生しない
	assert.Equal(t, tokendom.ID(0), e.CurrentTokenID())
	assert.Zero(t, reg.calls)
	assert.Empty(t, sink.events)
}

func TestBatchMint_MaxBatchSucceeds(t *testing.T) {
	e, _, _, _ := newTestEngine(t, LedgerState{UnitPrice: 2})

	res, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 50, refs(50), 100))
	require.NoError(t, err)
	require.Len(t, res.TokenIDs, 50)
	assert.Equal(t, tokendom.ID(1), res.TokenIDs[0])
	assert.Equal(t, tokendom.ID(50), res.TokenIDs[49])
}

func TestBatchMint_ExactPaymentAccepted(t *testing.T) {
	e, _, _, _ := newTestEngine(t, LedgerState{UnitPrice: 100})
	_, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 3, refs(3), 300))
	require.NoError(t, err)
}

func TestBatchMint_CostOverflowIsInsufficientPayment(t *testing.T) {
	e, _, _, _ := newTestEngine(t, LedgerState{UnitPrice: math.MaxUint64})

	_, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 2, refs(2), math.MaxUint64))
	require.ErrorIs(t, err, mintdom.ErrInsufficientPayment)
	assert.Equal(t, tokendom.ID(0), e.CurrentTokenID())
}

func TestBatchMint_PriceChangeAffectsLaterCalls(t *testing.T) {
	e, _, _, _ := newTestEngine(t, LedgerState{UnitPrice: 100})
	ctx := context.Background()

	_, err := e.BatchMint(ctx, mintdom.NewRequest("acct-1", 1, refs(1), 100))
	require.NoError(t, err)

	require.NoError(t, e.SetUnitPrice(ctx, "admin", 200))

	_, err = e.BatchMint(ctx, mintdom.NewRequest("acct-1", 1, refs(1), 100))
	require.ErrorIs(t, err, mintdom.ErrInsufficientPayment)

	_, err = e.BatchMint(ctx, mintdom.NewRequest("acct-1", 1, refs(1), 200))
	require.NoError(t, err)
}

func TestBatchMint_EmptyRecipientRejected(t *testing.T) {
	e, reg, _, _ := newTestEngine(t, LedgerState{UnitPrice: 0})

	_, err := e.BatchMint(context.Background(), mintdom.NewRequest("   ", 1, refs(1), 0))
	require.ErrorIs(t, err, mintdom.ErrInvalidRecipient)
	assert.Equal(t, tokendom.ID(0), e.CurrentTokenID())
	assert.Zero(t, reg.calls)
}

func TestBatchMint_BindFailureRollsBack(t *testing.T) {
	e, reg, set, sink := newTestEngine(t, LedgerState{UnitPrice: 0})
	ctx := context.Background()

	// 正常に 1 バッチ通してから束縛を失敗させる
	_, err := e.BatchMint(ctx, mintdom.NewRequest("acct-1", 2, refs(2), 0))
	require.NoError(t, err)
	require.Equal(t, tokendom.ID(2), e.CurrentTokenID())

	bindErr := errors.New("registry down")
	reg.failBind = bindErr

	_, err = e.BatchMint(ctx, mintdom.NewRequest("acct-2", 3, refs(3), 0))
	require.ErrorIs(t, err, bindErr)

	// 採番は巻き戻り、イベント追加も永続化追加も無い
	assert.Equal(t, tokendom.ID(2), e.CurrentTokenID())
	assert.Len(t, sink.events, 1)
	assert.Equal(t, []tokendom.ID{2}, set.savedLast)

	// 復旧後は同じ id から隙間なく再開する
	reg.failBind = nil
	res, err := e.BatchMint(ctx, mintdom.NewRequest("acct-2", 3, refs(3), 0))
	require.NoError(t, err)
	assert.Equal(t, []tokendom.ID{3, 4, 5}, res.TokenIDs)
}

func TestBatchMint_AlreadyBoundSurfaced(t *testing.T) {
	e, reg, _, _ := newTestEngine(t, LedgerState{UnitPrice: 0})
	ctx := context.Background()

	// 採番前に台帳へ手で 1 を差し込み、衝突を作る
	reg.bound[1] = tokendom.Binding{TokenID: 1, Owner: "someone"}

	_, err := e.BatchMint(ctx, mintdom.NewRequest("acct-1", 1, refs(1), 0))
	require.ErrorIs(t, err, tokendom.ErrAlreadyBound)
	assert.Equal(t, tokendom.ID(0), e.CurrentTokenID())
}

func TestBatchMint_SaveFailureDoesNotFailTheCall(t *testing.T) {
	e, _, set, sink := newTestEngine(t, LedgerState{UnitPrice: 0})
	set.failSave = errors.New("settings store down")

	res, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 2, refs(2), 0))
	require.NoError(t, err)
	assert.Equal(t, []tokendom.ID{1, 2}, res.TokenIDs)
	assert.Len(t, sink.events, 1)
}

func TestCounterOverflow_NoPartialAllocationLeaks(t *testing.T) {
	e, reg, _, sink := newTestEngine(t, LedgerState{LastTokenID: tokendom.ID(math.MaxUint64 - 1), UnitPrice: 0})

	// 1 件目は採番できるが 2 件目で溢れる → 全体が失敗し、1 件目も漏れない
	_, err := e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 2, refs(2), 0))
	require.ErrorIs(t, err, counterdom.ErrOverflow)
	assert.Equal(t, tokendom.ID(math.MaxUint64-1), e.CurrentTokenID())
	assert.Zero(t, reg.calls)
	assert.Empty(t, sink.events)
}

// ------------------------------------------------------
// 管理操作・読み取り系
// ------------------------------------------------------

func TestSetUnitPrice_PersistsAndPublishes(t *testing.T) {
	e, _, set, sink := newTestEngine(t, LedgerState{UnitPrice: 100})

	require.NoError(t, e.SetUnitPrice(context.Background(), "admin", 250))

	assert.Equal(t, uint64(250), e.UnitPrice())
	assert.Equal(t, []uint64{250}, set.savedPrice)
	require.Len(t, sink.events, 1)
	ev, ok := sink.events[0].(eventdom.MintPriceUpdated)
	require.True(t, ok)
	assert.Equal(t, uint64(250), ev.NewPrice)
	assert.Equal(t, "admin", ev.UpdatedBy)
}

func TestSetUnitPrice_SaveFailureLeavesPriceUnchanged(t *testing.T) {
	e, _, set, sink := newTestEngine(t, LedgerState{UnitPrice: 100})
	set.failSave = errors.New("settings store down")

	err := e.SetUnitPrice(context.Background(), "admin", 999)
	require.Error(t, err)

	// 失敗した呼び出しは旧価格のまま。イベントも永続化も発生しない
	assert.Equal(t, uint64(100), e.UnitPrice())
	assert.Empty(t, set.savedPrice)
	assert.Empty(t, sink.events)

	// 以後の支払い検証にも旧価格が効く
	set.failSave = nil
	_, err = e.BatchMint(context.Background(), mintdom.NewRequest("acct-1", 1, refs(1), 100))
	require.NoError(t, err)
}

func TestSetMetadataBase_SaveFailureLeavesBaseUnchanged(t *testing.T) {
	e, _, set, sink := newTestEngine(t, LedgerState{MetadataBase: "ipfs://old/"})
	set.failSave = errors.New("settings store down")

	err := e.SetMetadataBase(context.Background(), "admin", "ipfs://new/")
	require.Error(t, err)

	assert.Equal(t, "ipfs://old/", e.MetadataBase())
	assert.Empty(t, set.savedBase)
	assert.Empty(t, sink.events)
}

func TestSetMetadataBase_PersistsAndPublishes(t *testing.T) {
	e, _, set, sink := newTestEngine(t, LedgerState{})

	require.NoError(t, e.SetMetadataBase(context.Background(), "admin", "  ipfs://base/  "))

	assert.Equal(t, "ipfs://base/", e.MetadataBase())
	assert.Equal(t, []string{"ipfs://base/"}, set.savedBase)
	require.Len(t, sink.events, 1)
	ev, ok := sink.events[0].(eventdom.BaseURIUpdated)
	require.True(t, ok)
	assert.Equal(t, "ipfs://base/", ev.NewBase)
}

func TestNewEngine_RequiresRegistry(t *testing.T) {
	_, err := NewEngine(LedgerState{}, nil, nil, nil)
	require.Error(t, err)
}
