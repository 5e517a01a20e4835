package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/optionwatch/optionwatch/internal/models"
)

// MemoryStore keeps alert records in process memory. Used by dry-run mode and
// tests; records vanish when the process exits.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.AlertRecord
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.AlertRecord),
		now:     time.Now,
	}
}

// SetClock overrides the timestamp source, used by tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns a copy of the record for the ticker's session, or nil.
func (s *MemoryStore) Get(_ context.Context, ticker string, prevClose float64) (*models.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[CompositeKey(ticker, prevClose)]
	if !ok {
		return nil, nil
	}
	out := record
	return &out, nil
}

// Put stores the record for the ticker's session.
func (s *MemoryStore) Put(_ context.Context, ticker string, percentChange, prevClose float64, alertCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	s.records[CompositeKey(ticker, prevClose)] = models.AlertRecord{
		Ticker:             ticker,
		SessionKey:         SessionKey(prevClose),
		PrevClose:          prevClose,
		LastAlertedPercent: percentChange,
		AlertCount:         alertCount,
		Timestamp:          s.now().UTC().Format(time.RFC3339),
	}
	return nil
}
