package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBot(t *testing.T, s *Store, code string) {
	t.Helper()
	require.NoError(t, s.CreateBot(context.Background(), &domain.Bot{
		ID:           code,
		CurrencyCode: code,
		Name:         code,
		ToDiscoin:    decimal.NewFromInt(1),
		FromDiscoin:  decimal.NewFromInt(1),
		LimitUser:    decimal.NewFromInt(domain.DefaultLimitUser),
		LimitGlobal:  decimal.NewFromInt(domain.DefaultLimitGlobal),
		APIKey:       code + "-key",
	}))
}

func TestStore_RunInTxCommits(t *testing.T) {
	s := NewStore()
	seedBot(t, s, "DST")
	ctx := context.Background()
	now := time.Now()

	err := s.RunInTx(ctx, func(tx domain.LedgerTx) error {
		bot, err := tx.LockBot(ctx, "DST")
		require.NoError(t, err)
		counter, err := tx.LockUserCounter(ctx, "SRC", "1", "DST")
		require.NoError(t, err)
		assert.False(t, counter.Window.IsSet())

		counter.Window = domain.Window{Anchor: now, Total: decimal.NewFromInt(5)}
		require.NoError(t, tx.SaveUserCounter(ctx, counter))
		require.NoError(t, tx.SaveBotWindow(ctx, bot.CurrencyCode, domain.Window{Anchor: now, Total: decimal.NewFromInt(5)}))
		return tx.CreateTransaction(ctx, &domain.Transaction{Receipt: "r1", DestinationCurrency: "DST"})
	})
	require.NoError(t, err)

	bot, err := s.GetBotByCurrency(ctx, "DST")
	require.NoError(t, err)
	assert.True(t, bot.Window.Total.Equal(decimal.NewFromInt(5)))
	assert.NotNil(t, s.UserCounter("SRC", "1", "DST"))
	assert.Equal(t, 1, s.TransactionCount())
}

func TestStore_RunInTxRollsBack(t *testing.T) {
	s := NewStore()
	seedBot(t, s, "DST")
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(tx domain.LedgerTx) error {
		counter, err := tx.LockUserCounter(ctx, "SRC", "1", "DST")
		require.NoError(t, err)
		counter.Window = domain.Window{Anchor: time.Now(), Total: decimal.NewFromInt(5)}
		require.NoError(t, tx.SaveUserCounter(ctx, counter))
		require.NoError(t, tx.CreateTransaction(ctx, &domain.Transaction{Receipt: "r1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, s.UserCounter("SRC", "1", "DST"))
	assert.Zero(t, s.TransactionCount())

	// блокировки освобождены
	require.NoError(t, s.RunInTx(ctx, func(tx domain.LedgerTx) error {
		_, err := tx.LockUserCounter(ctx, "SRC", "1", "DST")
		return err
	}))
}

func TestStore_LockMissingBot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.RunInTx(ctx, func(tx domain.LedgerTx) error {
		_, err := tx.LockBot(ctx, "NOPE")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrBotNotFound)
}

func TestStore_DuplicateReceiptRejected(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	create := func(tx domain.LedgerTx) error {
		return tx.CreateTransaction(ctx, &domain.Transaction{Receipt: "same"})
	}

	require.NoError(t, s.RunInTx(ctx, create))
	assert.Error(t, s.RunInTx(ctx, create))
	assert.Equal(t, 1, s.TransactionCount())
}

func TestStore_Requesters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.ResolveRequester(ctx, "SRC", "1")
	assert.ErrorIs(t, err, domain.ErrVerifyRequired)

	s.AutoVerify = true
	requester, err := s.ResolveRequester(ctx, "SRC", "1")
	require.NoError(t, err)
	assert.Equal(t, "SRC", requester.SourceCurrency)
}

func TestStore_BotRegistry(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedBot(t, s, "BBB")
	seedBot(t, s, "AAA")

	assert.ErrorIs(t, s.CreateBot(ctx, &domain.Bot{CurrencyCode: "AAA"}), domain.ErrCurrencyTaken)

	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 2)
	assert.Equal(t, "AAA", bots[0].CurrencyCode)

	bot, err := s.GetBotByAPIKey(ctx, "BBB-key")
	require.NoError(t, err)
	assert.Equal(t, "BBB", bot.CurrencyCode)

	_, err = s.GetBotByAPIKey(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrBotNotFound)
}

func TestKeyedMutex(t *testing.T) {
	var k keyedMutex
	k.Lock("a")
	k.Lock("b")

	done := make(chan struct{})
	go func() {
		k.Lock("a")
		k.Unlock("a")
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock on the same key must wait")
	case <-time.After(20 * time.Millisecond):
	}

	k.Unlock("a")
	<-done
	k.Unlock("b")
	assert.Empty(t, k.locks)
	assert.Panics(t, func() { k.Unlock("a") })
}
