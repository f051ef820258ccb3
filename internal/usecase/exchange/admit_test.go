package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/cache"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/receipt"
	exchangedto "github.com/LavaJover/shvark-exchange-service/internal/usecase/dto/exchange"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyTransaction(ctx context.Context, event domain.TransactionEvent) error {
	return m.Called(ctx, event).Error(0)
}

type failingLedger struct {
	err error
}

func (l failingLedger) RunInTx(context.Context, func(tx domain.LedgerTx) error) error {
	return l.err
}

type countingLedger struct {
	domain.Ledger
	calls int
}

func (l *countingLedger) RunInTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	l.calls++
	return l.Ledger.RunInTx(ctx, fn)
}

type fixture struct {
	uc      *DefaultExchangeUsecase
	store   *memory.Store
	metrics *metrics.ExchangeMetrics
	now     time.Time
	source  *domain.Bot
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newBot(code string, toDiscoin, fromDiscoin string) *domain.Bot {
	return &domain.Bot{
		ID:           code + "-id",
		Owner:        "owner",
		Name:         code + " bot",
		CurrencyCode: code,
		ToDiscoin:    dec(toDiscoin),
		FromDiscoin:  dec(fromDiscoin),
		LimitUser:    decimal.NewFromInt(domain.DefaultLimitUser),
		LimitGlobal:  decimal.NewFromInt(domain.DefaultLimitGlobal),
		Window:       domain.Window{Total: decimal.Zero},
		APIKey:       code + "-key",
	}
}

// newFixture registers SRC (1 SRC = 1 Discoin) and DST (1 Discoin = 2 DST)
// and verifies requester "1234" with SRC.
func newFixture(t *testing.T, bots ...*domain.Bot) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	if len(bots) == 0 {
		bots = []*domain.Bot{newBot("SRC", "1", "1"), newBot("DST", "1", "2")}
	}
	for _, bot := range bots {
		require.NoError(t, store.CreateBot(ctx, bot))
	}
	require.NoError(t, store.VerifyRequester(ctx, "SRC", "1234"))

	receipts, err := receipt.NewNanoidGenerator()
	require.NoError(t, err)
	exchangeMetrics := metrics.NewExchangeMetrics(prometheus.NewRegistry())

	f := &fixture{
		store:   store,
		metrics: exchangeMetrics,
		now:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.uc = NewDefaultExchangeUsecase(store, store, store, store, cache.NewRatesMemoryCache(time.Minute), receipts, nil, exchangeMetrics, 0)
	f.uc.Now = func() time.Time { return f.now }

	f.source, err = store.GetBotByCurrency(ctx, "SRC")
	require.NoError(t, err)
	return f
}

func (f *fixture) admit(t *testing.T, user, amount, to string) *domain.Admission {
	t.Helper()
	admission, err := f.uc.Admit(context.Background(), &exchangedto.AdmitInput{
		SourceBot:   f.source,
		RequesterID: user,
		Amount:      amount,
		ExchangeTo:  to,
	})
	require.NoError(t, err)
	require.NotNil(t, admission)
	return admission
}

func TestAdmit_ApprovedThenDeclined(t *testing.T) {
	f := newFixture(t)

	admission := f.admit(t, "1234", "1000", "dst")
	require.Equal(t, domain.OutcomeApproved, admission.Outcome)
	assert.True(t, admission.ResultAmount.Equal(dec("2000")))
	assert.True(t, admission.LimitNow.Equal(dec("1500")))
	assert.Len(t, admission.Receipt, receipt.ReceiptLength)

	transaction, err := f.uc.GetTransaction(context.Background(), admission.Receipt)
	require.NoError(t, err)
	require.NotNil(t, transaction)
	assert.Equal(t, "SRC", transaction.SourceCurrency)
	assert.Equal(t, "DST", transaction.DestinationCurrency)
	assert.Equal(t, domain.TransactionNormal, transaction.Type)
	assert.True(t, transaction.AmountSource.Equal(dec("1000")))
	assert.True(t, transaction.AmountTarget.Equal(dec("2000")))
	assert.False(t, transaction.Processed)

	declined := f.admit(t, "1234", "2000", "DST")
	require.Equal(t, domain.OutcomeDeclined, declined.Outcome)
	assert.Equal(t, domain.ReasonUserLimitExceeded, declined.Reason)
	require.NotNil(t, declined.Limit)
	assert.True(t, declined.Limit.Equal(dec("2500")))

	counter := f.store.UserCounter("SRC", "1234", "DST")
	require.NotNil(t, counter)
	assert.True(t, counter.Window.Total.Equal(dec("1000")))
	assert.Equal(t, 1, f.store.TransactionCount())
}

func TestAdmit_ConversionThroughDiscoin(t *testing.T) {
	f := newFixture(t, newBot("SRC", "0.5", "1"), newBot("DST", "1", "3"))

	admission := f.admit(t, "1234", "100", "DST")
	require.True(t, admission.IsApproved())
	// 100 SRC -> 50 Discoin; целевая сумма считается от исходной
	assert.True(t, admission.ResultAmount.Equal(dec("300")))
	assert.True(t, admission.LimitNow.Equal(dec("2450")))
	assert.True(t, admission.Transaction.AmountDiscoin.Equal(dec("50")))
}

func TestAdmit_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		input   exchangedto.AdmitInput
		message string
	}{
		{"missing amount", exchangedto.AdmitInput{RequesterID: "1234", ExchangeTo: "DST"}, domain.MsgBadPost},
		{"unverified requester", exchangedto.AdmitInput{RequesterID: "42", Amount: "10", ExchangeTo: "DST"}, domain.MsgVerifyRequired},
		{"not a number", exchangedto.AdmitInput{RequesterID: "1234", Amount: "abc", ExchangeTo: "DST"}, domain.MsgAmountNaN},
		{"negative", exchangedto.AdmitInput{RequesterID: "1234", Amount: "-5", ExchangeTo: "DST"}, domain.MsgInvalidAmount},
		{"zero", exchangedto.AdmitInput{RequesterID: "1234", Amount: "0", ExchangeTo: "DST"}, domain.MsgInvalidAmount},
		{"unknown destination", exchangedto.AdmitInput{RequesterID: "1234", Amount: "10", ExchangeTo: "XYZ"}, domain.MsgInvalidDestination},
		{"unknown type", exchangedto.AdmitInput{RequesterID: "1234", Amount: "10", ExchangeTo: "DST", Type: "gift"}, domain.MsgInvalidTransactionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			input := tt.input
			input.SourceBot = f.source

			admission, err := f.uc.Admit(context.Background(), &input)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeInvalid, admission.Outcome)
			assert.Equal(t, tt.message, admission.Message)
			assert.Zero(t, f.store.TransactionCount())
			assert.Nil(t, f.store.UserCounter("SRC", input.RequesterID, "DST"))
		})
	}
}

func TestAdmit_VerificationCheckedBeforeAmount(t *testing.T) {
	f := newFixture(t)

	admission := f.admit(t, "42", "abc", "XYZ")
	assert.Equal(t, domain.MsgVerifyRequired, admission.Message)
}

func TestAdmit_RefundType(t *testing.T) {
	f := newFixture(t)

	admission, err := f.uc.Admit(context.Background(), &exchangedto.AdmitInput{
		SourceBot:   f.source,
		RequesterID: "1234",
		Amount:      "10",
		ExchangeTo:  "DST",
		Type:        "refund",
	})
	require.NoError(t, err)
	require.True(t, admission.IsApproved())
	assert.Equal(t, domain.TransactionRefund, admission.Transaction.Type)
}

func TestAdmit_GlobalLimit(t *testing.T) {
	dst := newBot("DST", "1", "2")
	dst.LimitGlobal = dec("3000")
	f := newFixture(t, newBot("SRC", "1", "1"), dst)
	require.NoError(t, f.store.VerifyRequester(context.Background(), "SRC", "5678"))

	require.True(t, f.admit(t, "1234", "2000", "DST").IsApproved())

	declined := f.admit(t, "5678", "1500", "DST")
	require.Equal(t, domain.OutcomeDeclined, declined.Outcome)
	assert.Equal(t, domain.ReasonGlobalLimitExceeded, declined.Reason)
	assert.True(t, declined.Limit.Equal(dec("3000")))

	// отказ по общему лимиту не трогает счетчик пользователя
	assert.Nil(t, f.store.UserCounter("SRC", "5678", "DST"))

	bot, err := f.store.GetBotByCurrency(context.Background(), "DST")
	require.NoError(t, err)
	assert.True(t, bot.Window.Total.Equal(dec("2000")))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LimitDeclinesTotal.WithLabelValues("DST", domain.ReasonGlobalLimitExceeded)))
}

func TestAdmit_WindowRollsOver(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.admit(t, "1234", "2500", "DST").IsApproved())
	assert.Equal(t, domain.OutcomeDeclined, f.admit(t, "1234", "1", "DST").Outcome)

	f.now = f.now.Add(domain.DefaultWindowDuration)
	admission := f.admit(t, "1234", "100", "DST")
	require.True(t, admission.IsApproved())
	assert.True(t, admission.LimitNow.Equal(dec("2400")))

	counter := f.store.UserCounter("SRC", "1234", "DST")
	assert.Equal(t, f.now, counter.Window.Anchor)
}

func TestAdmit_CountersAreScopedPerDestination(t *testing.T) {
	f := newFixture(t, newBot("SRC", "1", "1"), newBot("DST", "1", "2"), newBot("OTH", "1", "1"))

	require.True(t, f.admit(t, "1234", "2500", "DST").IsApproved())
	require.True(t, f.admit(t, "1234", "2500", "OTH").IsApproved())
	assert.Equal(t, domain.OutcomeDeclined, f.admit(t, "1234", "1", "DST").Outcome)
}

func TestAdmit_ConcurrentUserLimit(t *testing.T) {
	f := newFixture(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
	)
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admission, err := f.uc.Admit(context.Background(), &exchangedto.AdmitInput{
				SourceBot:   f.source,
				RequesterID: "1234",
				Amount:      "100",
				ExchangeTo:  "DST",
			})
			if err == nil && admission.IsApproved() {
				mu.Lock()
				approved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, approved)
	assert.Equal(t, 25, f.store.TransactionCount())
	assert.True(t, f.store.UserCounter("SRC", "1234", "DST").Window.Total.Equal(dec("2500")))
}

func TestAdmit_ConcurrentGlobalLimit(t *testing.T) {
	dst := newBot("DST", "1", "2")
	dst.LimitGlobal = dec("1000")
	f := newFixture(t, newBot("SRC", "1", "1"), dst)

	users := make([]string, 40)
	for i := range users {
		users[i] = fmt.Sprintf("user-%d", i)
		require.NoError(t, f.store.VerifyRequester(context.Background(), "SRC", users[i]))
	}

	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_, err := f.uc.Admit(context.Background(), &exchangedto.AdmitInput{
				SourceBot:   f.source,
				RequesterID: user,
				Amount:      "100",
				ExchangeTo:  "DST",
			})
			assert.NoError(t, err)
		}(user)
	}
	wg.Wait()

	assert.Equal(t, 10, f.store.TransactionCount())
	bot, err := f.store.GetBotByCurrency(context.Background(), "DST")
	require.NoError(t, err)
	assert.True(t, bot.Window.Total.Equal(dec("1000")))
}

func TestAdmit_ReceiptsAreUnique(t *testing.T) {
	f := newFixture(t)

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		admission := f.admit(t, "1234", "1", "DST")
		require.True(t, admission.IsApproved())
		_, dup := seen[admission.Receipt]
		require.False(t, dup)
		seen[admission.Receipt] = struct{}{}
	}
}

func TestAdmit_NotifiesOncePerApproval(t *testing.T) {
	f := newFixture(t)
	notifier := &mockNotifier{}
	notifier.On("NotifyTransaction", mock.Anything, mock.MatchedBy(func(e domain.TransactionEvent) bool {
		return e.Requester == "1234" && e.DestinationCurrency == "DST" && e.AmountTarget.Equal(dec("20"))
	})).Return(nil).Once()
	f.uc.Notifier = notifier

	require.True(t, f.admit(t, "1234", "10", "DST").IsApproved())
	assert.Equal(t, domain.OutcomeDeclined, f.admit(t, "1234", "5000", "DST").Outcome)
	f.uc.WaitNotifications()

	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "NotifyTransaction", 1)
}

func TestAdmit_NotifierFailureKeepsApproval(t *testing.T) {
	f := newFixture(t)
	notifier := &mockNotifier{}
	notifier.On("NotifyTransaction", mock.Anything, mock.Anything).Return(errors.New("webhook down"))
	f.uc.Notifier = notifier

	admission := f.admit(t, "1234", "10", "DST")
	f.uc.WaitNotifications()

	require.True(t, admission.IsApproved())
	transaction, err := f.uc.GetTransaction(context.Background(), admission.Receipt)
	require.NoError(t, err)
	assert.NotNil(t, transaction)
}

func TestAdmit_LedgerFailure(t *testing.T) {
	f := newFixture(t)
	f.uc.Ledger = failingLedger{err: errors.New("connection reset")}

	admission, err := f.uc.Admit(context.Background(), &exchangedto.AdmitInput{
		SourceBot:   f.source,
		RequesterID: "1234",
		Amount:      "10",
		ExchangeTo:  "DST",
	})
	assert.Nil(t, admission)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLedgerUnavailable))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.InfrastructureErrorsTotal.WithLabelValues("commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionsTotal.WithLabelValues("SRC", "DST", "failed")))
}

func TestAdmit_Metrics(t *testing.T) {
	f := newFixture(t)

	f.admit(t, "1234", "1000", "DST")
	f.admit(t, "1234", "5000", "DST")
	f.admit(t, "1234", "abc", "DST")

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionsTotal.WithLabelValues("SRC", "DST", "approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionsTotal.WithLabelValues("SRC", "DST", "declined")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AdmissionsTotal.WithLabelValues("SRC", "", "error")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(f.metrics.AdmittedDiscoinTotal.WithLabelValues("DST")))
}

func TestAdmit_RejectsAmountsOutsideStorageScale(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []string{"1e-2000000000", "1e-3000000", "0.00000000001", "1e30"} {
		admission := f.admit(t, "1234", amount, "DST")
		assert.Equal(t, domain.OutcomeInvalid, admission.Outcome, amount)
		assert.Equal(t, domain.MsgInvalidAmount, admission.Message, amount)
	}
	assert.Zero(t, f.store.TransactionCount())

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.True(t, f.admit(t, "1234", "1", "DST").IsApproved())
	}
	assert.Less(t, time.Since(start), time.Second)

	bot, err := f.store.GetBotByCurrency(context.Background(), "DST")
	require.NoError(t, err)
	assert.True(t, bot.Window.Total.Equal(dec("3")))
	assert.GreaterOrEqual(t, bot.Window.Total.Exponent(), int32(-domain.AmountScale))
}

func TestAdmit_ConvertedAmountsRoundedToStorageScale(t *testing.T) {
	f := newFixture(t, newBot("SRC", "0.3333333333", "1"), newBot("DST", "1", "0.0000000007"))

	admission := f.admit(t, "1234", "0.5", "DST")
	require.True(t, admission.IsApproved())
	transaction := admission.Transaction
	assert.True(t, transaction.AmountDiscoin.Equal(dec("0.1666666667")), transaction.AmountDiscoin.String())
	assert.True(t, transaction.AmountTarget.Equal(dec("0.0000000004")), transaction.AmountTarget.String())
	assert.True(t, domain.FitsStorage(transaction.AmountDiscoin))
	assert.True(t, domain.FitsStorage(transaction.AmountTarget))

	counter := f.store.UserCounter("SRC", "1234", "DST")
	require.NotNil(t, counter)
	assert.True(t, counter.Window.Total.Equal(transaction.AmountDiscoin))
}

func TestAdmit_ConvertedAmountRoundsToZero(t *testing.T) {
	f := newFixture(t, newBot("SRC", "0.3333333333", "1"), newBot("DST", "1", "0.0000000001"))

	// 0.0000000001 SRC -> 0.00000000003 Discoin
	admission := f.admit(t, "1234", "0.0000000001", "DST")
	assert.Equal(t, domain.MsgInvalidAmount, admission.Message)

	// 0.1 SRC -> 0.00000000001 DST
	admission = f.admit(t, "1234", "0.1", "DST")
	assert.Equal(t, domain.OutcomeInvalid, admission.Outcome)
	assert.Equal(t, domain.MsgInvalidAmount, admission.Message)

	assert.Zero(t, f.store.TransactionCount())
	assert.Nil(t, f.store.UserCounter("SRC", "1234", "DST"))
	bot, err := f.store.GetBotByCurrency(context.Background(), "DST")
	require.NoError(t, err)
	assert.False(t, bot.Window.IsSet())
}

func TestAdmit_OversizedAmountDeclinedWithoutLedger(t *testing.T) {
	f := newFixture(t)
	ledger := &countingLedger{Ledger: f.store}
	f.uc.Ledger = ledger

	declined := f.admit(t, "1234", "2501", "DST")
	require.Equal(t, domain.OutcomeDeclined, declined.Outcome)
	assert.Equal(t, domain.ReasonUserLimitExceeded, declined.Reason)
	assert.True(t, declined.Limit.Equal(dec("2500")))
	assert.Zero(t, ledger.calls)

	require.True(t, f.admit(t, "1234", "2500", "DST").IsApproved())
	assert.Equal(t, 1, ledger.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LimitDeclinesTotal.WithLabelValues("DST", domain.ReasonUserLimitExceeded)))
}
