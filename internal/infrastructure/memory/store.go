package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-exchange-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps bots, verified requesters, user counters and transactions in
// process memory. It implements the same ports as the postgres repositories.
// Quota scopes are serialized per key: one lock per destination bot and one
// per (source, requester, destination) counter.
type Store struct {
	mu           sync.RWMutex
	bots         map[string]*domain.Bot // by currency code
	requesters   map[string]*domain.Requester
	counters     map[string]*domain.UserCounter
	transactions map[string]*domain.Transaction
	order        []string // receipts in creation order

	locks keyedMutex

	// AutoVerify treats every requester as verified.
	AutoVerify bool
}

func NewStore() *Store {
	return &Store{
		bots:         make(map[string]*domain.Bot),
		requesters:   make(map[string]*domain.Requester),
		counters:     make(map[string]*domain.UserCounter),
		transactions: make(map[string]*domain.Transaction),
	}
}

func requesterKey(sourceCurrency, requesterID string) string {
	return sourceCurrency + "/" + requesterID
}

func counterKey(sourceCurrency, requesterID, destinationCurrency string) string {
	return sourceCurrency + "/" + requesterID + "->" + destinationCurrency
}

// ===== Bot registry =====

func (s *Store) CreateBot(_ context.Context, bot *domain.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bots[bot.CurrencyCode]; exists {
		return domain.ErrCurrencyTaken
	}
	copied := *bot
	s.bots[bot.CurrencyCode] = &copied
	return nil
}

func (s *Store) GetBotByCurrency(_ context.Context, currencyCode string) (*domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bot, ok := s.bots[currencyCode]
	if !ok {
		return nil, domain.ErrBotNotFound
	}
	copied := *bot
	return &copied, nil
}

func (s *Store) GetBotByAPIKey(_ context.Context, apiKey string) (*domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, bot := range s.bots {
		if bot.APIKey == apiKey {
			copied := *bot
			return &copied, nil
		}
	}
	return nil, domain.ErrBotNotFound
}

func (s *Store) ListBots(_ context.Context) ([]*domain.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bots := make([]*domain.Bot, 0, len(s.bots))
	for _, bot := range s.bots {
		copied := *bot
		bots = append(bots, &copied)
	}
	sort.Slice(bots, func(i, j int) bool { return bots[i].CurrencyCode < bots[j].CurrencyCode })
	return bots, nil
}

func (s *Store) UpdateRates(_ context.Context, currencyCode string, toDiscoin, fromDiscoin decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bot, ok := s.bots[currencyCode]
	if !ok {
		return domain.ErrBotNotFound
	}
	bot.ToDiscoin = toDiscoin
	bot.FromDiscoin = fromDiscoin
	bot.UpdatedAt = time.Now()
	return nil
}

// ===== Requesters =====

// VerifyRequester registers a requester as verified for a source bot.
func (s *Store) VerifyRequester(_ context.Context, sourceCurrency, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := requesterKey(sourceCurrency, requesterID)
	if _, ok := s.requesters[key]; ok {
		return nil
	}
	s.requesters[key] = &domain.Requester{
		ID:             uuid.New().String(),
		SourceCurrency: sourceCurrency,
		RequesterID:    requesterID,
		VerifiedAt:     time.Now(),
	}
	return nil
}

func (s *Store) ResolveRequester(ctx context.Context, sourceCurrency, requesterID string) (*domain.Requester, error) {
	if s.AutoVerify {
		_ = s.VerifyRequester(ctx, sourceCurrency, requesterID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	requester, ok := s.requesters[requesterKey(sourceCurrency, requesterID)]
	if !ok {
		return nil, domain.ErrVerifyRequired
	}
	copied := *requester
	return &copied, nil
}

// UserCounter returns a copy of the stored counter, or nil.
func (s *Store) UserCounter(sourceCurrency, requesterID, destinationCurrency string) *domain.UserCounter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counter, ok := s.counters[counterKey(sourceCurrency, requesterID, destinationCurrency)]
	if !ok {
		return nil
	}
	copied := *counter
	return &copied
}

// ===== Transaction log =====

func (s *Store) GetTransaction(_ context.Context, receipt string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transaction, ok := s.transactions[receipt]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	copied := *transaction
	return &copied, nil
}

func (s *Store) ListTransactions(_ context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Transaction, 0)
	for _, receipt := range s.order {
		transaction := s.transactions[receipt]
		if filter.DestinationCurrency != "" && transaction.DestinationCurrency != filter.DestinationCurrency {
			continue
		}
		if filter.OnlyUnprocessed && transaction.Processed {
			continue
		}
		copied := *transaction
		result = append(result, &copied)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (s *Store) MarkProcessed(_ context.Context, receipt string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, ok := s.transactions[receipt]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	transaction.Processed = true
	transaction.ProcessedAt = &at
	return nil
}

func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// ===== Ledger =====

func (s *Store) RunInTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	tx := &ledgerTx{store: s}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// ledgerTx stages writes and applies them on commit. Locks are taken in the
// order the engine asks for them (bot, then user counter) and held until
// the unit ends.
type ledgerTx struct {
	store    *Store
	held     []string
	bots     map[string]domain.Window
	counters []*domain.UserCounter
	created  []*domain.Transaction
}

func (tx *ledgerTx) lock(key string) {
	for _, k := range tx.held {
		if k == key {
			return
		}
	}
	tx.store.locks.Lock(key)
	tx.held = append(tx.held, key)
}

func (tx *ledgerTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.store.locks.Unlock(tx.held[i])
	}
	tx.held = nil
}

func (tx *ledgerTx) LockBot(ctx context.Context, currencyCode string) (*domain.Bot, error) {
	tx.lock("bot:" + currencyCode)
	return tx.store.GetBotByCurrency(ctx, currencyCode)
}

func (tx *ledgerTx) LockUserCounter(_ context.Context, sourceCurrency, requesterID, destinationCurrency string) (*domain.UserCounter, error) {
	key := counterKey(sourceCurrency, requesterID, destinationCurrency)
	tx.lock("user:" + key)

	if counter := tx.store.UserCounter(sourceCurrency, requesterID, destinationCurrency); counter != nil {
		return counter, nil
	}
	return &domain.UserCounter{
		ID:                  uuid.New().String(),
		SourceCurrency:      sourceCurrency,
		RequesterID:         requesterID,
		DestinationCurrency: destinationCurrency,
		Window:              domain.Window{Total: decimal.Zero},
	}, nil
}

func (tx *ledgerTx) SaveBotWindow(_ context.Context, currencyCode string, w domain.Window) error {
	if tx.bots == nil {
		tx.bots = make(map[string]domain.Window)
	}
	tx.bots[currencyCode] = w
	return nil
}

func (tx *ledgerTx) SaveUserCounter(_ context.Context, counter *domain.UserCounter) error {
	copied := *counter
	tx.counters = append(tx.counters, &copied)
	return nil
}

func (tx *ledgerTx) CreateTransaction(_ context.Context, t *domain.Transaction) error {
	copied := *t
	tx.created = append(tx.created, &copied)
	return nil
}

func (tx *ledgerTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// проверяем все до первой записи
	for code := range tx.bots {
		if _, ok := s.bots[code]; !ok {
			return fmt.Errorf("commit bot window %s: %w", code, domain.ErrBotNotFound)
		}
	}
	for _, t := range tx.created {
		if _, exists := s.transactions[t.Receipt]; exists {
			return fmt.Errorf("duplicate receipt %s", t.Receipt)
		}
	}

	for code, w := range tx.bots {
		s.bots[code].Window = w
	}
	for _, counter := range tx.counters {
		s.counters[counterKey(counter.SourceCurrency, counter.RequesterID, counter.DestinationCurrency)] = counter
	}
	for _, t := range tx.created {
		s.transactions[t.Receipt] = t
		s.order = append(s.order, t.Receipt)
	}
	return nil
}
