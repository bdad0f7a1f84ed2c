package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// JournalEntry is one dated note in the trade journal.
type JournalEntry struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Symbol  string    `json:"symbol,omitempty"`
	Tags    []string  `json:"tags,omitempty"`
}

type journalDocument struct {
	Entries []JournalEntry `json:"entries"`
}

// JournalStore persists journal entries, newest first.
type JournalStore struct {
	file *fileStore
}

// NewJournalStore creates a journal store under the given data directory.
func NewJournalStore(dataDir string) (*JournalStore, error) {
	file, err := newFileStore(dataDir, "journal.json")
	if err != nil {
		return nil, err
	}
	return &JournalStore{file: file}, nil
}

// Entries returns all journal entries, newest first.
func (s *JournalStore) Entries() ([]JournalEntry, error) {
	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	if !s.file.exists() {
		return []JournalEntry{}, nil
	}

	var doc journalDocument
	if err := s.file.read(&doc); err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// Add appends an entry, assigning an ID and date when missing, and keeps
// the stored list sorted newest first.
func (s *JournalStore) Add(entry JournalEntry) (*JournalEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	s.file.mu.Lock()
	defer s.file.mu.Unlock()

	var doc journalDocument
	if s.file.exists() {
		if err := s.file.read(&doc); err != nil {
			return nil, err
		}
	}

	doc.Entries = append(doc.Entries, entry)
	sort.Slice(doc.Entries, func(i, j int) bool {
		return doc.Entries[i].Date.After(doc.Entries[j].Date)
	})

	if err := s.file.write(&doc); err != nil {
		return nil, err
	}
	return &entry, nil
}
