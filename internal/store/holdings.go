package store

import (
	"time"

	"github.com/google/uuid"
)

// Holding is one position in the portfolio.
type Holding struct {
	Symbol        string    `json:"symbol"`
	Shares        float64   `json:"shares"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	Notes         string    `json:"notes,omitempty"`
}

// Transaction is one entry in the append-only trade log.
type Transaction struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Type   string    `json:"type"` // buy or sell
	Symbol string    `json:"symbol"`
	Shares float64   `json:"shares"`
	Price  float64   `json:"price"`
	Total  float64   `json:"total"`
	Notes  string    `json:"notes,omitempty"`
}

type holdingsDocument struct {
	Holdings    []Holding `json:"holdings"`
	LastUpdated time.Time `json:"last_updated"`
}

type transactionsDocument struct {
	Transactions []Transaction `json:"transactions"`
}

// HoldingsStore persists portfolio holdings and their transaction log.
type HoldingsStore struct {
	holdings     *fileStore
	transactions *fileStore
}

// NewHoldingsStore creates a holdings store under the given data directory.
func NewHoldingsStore(dataDir string) (*HoldingsStore, error) {
	holdings, err := newFileStore(dataDir, "portfolio_holdings.json")
	if err != nil {
		return nil, err
	}
	transactions, err := newFileStore(dataDir, "transactions.json")
	if err != nil {
		return nil, err
	}
	return &HoldingsStore{holdings: holdings, transactions: transactions}, nil
}

// Holdings returns all stored positions.
func (s *HoldingsStore) Holdings() ([]Holding, error) {
	s.holdings.mu.Lock()
	defer s.holdings.mu.Unlock()

	if !s.holdings.exists() {
		return []Holding{}, nil
	}

	var doc holdingsDocument
	if err := s.holdings.read(&doc); err != nil {
		return nil, err
	}
	return doc.Holdings, nil
}

// AddHolding appends a position and records the matching buy transaction.
func (s *HoldingsStore) AddHolding(holding Holding) (*Transaction, error) {
	if holding.PurchaseDate.IsZero() {
		holding.PurchaseDate = time.Now().UTC()
	}

	s.holdings.mu.Lock()
	var doc holdingsDocument
	if s.holdings.exists() {
		if err := s.holdings.read(&doc); err != nil {
			s.holdings.mu.Unlock()
			return nil, err
		}
	}
	doc.Holdings = append(doc.Holdings, holding)
	doc.LastUpdated = time.Now().UTC()
	if err := s.holdings.write(&doc); err != nil {
		s.holdings.mu.Unlock()
		return nil, err
	}
	s.holdings.mu.Unlock()

	transaction := Transaction{
		ID:     uuid.New().String(),
		Date:   time.Now().UTC(),
		Type:   "buy",
		Symbol: holding.Symbol,
		Shares: holding.Shares,
		Price:  holding.PurchasePrice,
		Total:  holding.Shares * holding.PurchasePrice,
		Notes:  holding.Notes,
	}

	if err := s.recordTransaction(transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (s *HoldingsStore) recordTransaction(transaction Transaction) error {
	s.transactions.mu.Lock()
	defer s.transactions.mu.Unlock()

	var doc transactionsDocument
	if s.transactions.exists() {
		if err := s.transactions.read(&doc); err != nil {
			return err
		}
	}

	doc.Transactions = append(doc.Transactions, transaction)
	return s.transactions.write(&doc)
}

// Transactions returns the full trade log.
func (s *HoldingsStore) Transactions() ([]Transaction, error) {
	s.transactions.mu.Lock()
	defer s.transactions.mu.Unlock()

	if !s.transactions.exists() {
		return []Transaction{}, nil
	}

	var doc transactionsDocument
	if err := s.transactions.read(&doc); err != nil {
		return nil, err
	}
	return doc.Transactions, nil
}
