package results

import (
	"errors"
	"fmt"
	"sync"
)

// Sink fans records out to the CSV export and the store. Writes are serialised.
// Either destination may be nil.
type Sink struct {
	mu    sync.Mutex
	csv   *CSVWriter
	store *Store
}

func NewSink(csv *CSVWriter, store *Store) *Sink {
	return &Sink{csv: csv, store: store}
}

// Open creates the CSV export and opens the store at the given paths.
// An empty path disables that destination.
func Open(csvPath, dbPath string) (*Sink, error) {
	s := &Sink{}
	var err error
	if csvPath != "" {
		if s.csv, err = CreateCSV(csvPath); err != nil {
			return nil, err
		}
	}
	if dbPath != "" {
		if s.store, err = OpenStore(dbPath); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Sink) Write(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.csv != nil {
		if err := s.csv.Write(r); err != nil {
			errs = append(errs, fmt.Errorf("writing CSV record: %w", err))
		}
	}
	if s.store != nil {
		if err := s.store.Insert(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.csv != nil {
		errs = append(errs, s.csv.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}
