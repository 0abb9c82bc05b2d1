// /internal/storage/storage.go
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/keshon/datastore"

	"github.com/keshon/mindcycle/internal/emotion"
	"github.com/keshon/mindcycle/internal/engine"
)

const (
	memoriesKey        = "memories"
	consolidationsKey  = "consolidations"
	learnedPatternsKey = "learned_patterns"

	memoriesLimit       = 200
	consolidationsLimit = 100
)

// Storage persists engine records through the key/value datastore. It serves
// the engine as both MemorySource and Persister.
type Storage struct {
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// AddMemory appends a memory record, keeping the list bounded.
func (s *Storage) AddMemory(rec engine.MemoryRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	var list []engine.MemoryRecord
	if err := s.load(memoriesKey, &list); err != nil {
		return err
	}
	list = append(list, rec)
	if len(list) > memoriesLimit {
		list = list[len(list)-memoriesLimit:]
	}
	s.ds.Add(memoriesKey, list)
	return nil
}

// Recent returns up to limit memory records, newest first.
func (s *Storage) Recent(ctx context.Context, limit int) ([]engine.MemoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var list []engine.MemoryRecord
	if err := s.load(memoriesKey, &list); err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].At.After(list[j].At) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// SaveConsolidation appends a derived category summary, keeping the list
// bounded.
func (s *Storage) SaveConsolidation(ctx context.Context, c engine.Consolidation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var list []engine.Consolidation
	if err := s.load(consolidationsKey, &list); err != nil {
		return err
	}
	list = append(list, c)
	if len(list) > consolidationsLimit {
		list = list[len(list)-consolidationsLimit:]
	}
	s.ds.Add(consolidationsKey, list)
	return nil
}

// Consolidations returns all stored consolidation summaries.
func (s *Storage) Consolidations() ([]engine.Consolidation, error) {
	var list []engine.Consolidation
	if err := s.load(consolidationsKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveLearnedPatterns snapshots the learned trigger patterns. Called by the
// host on shutdown so associations survive restarts.
func (s *Storage) SaveLearnedPatterns(pats []emotion.LearnedPattern) {
	s.ds.Add(learnedPatternsKey, pats)
}

// LearnedPatterns returns the stored pattern snapshot.
func (s *Storage) LearnedPatterns() ([]emotion.LearnedPattern, error) {
	var list []emotion.LearnedPattern
	if err := s.load(learnedPatternsKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// load reads a key and unmarshals it through JSON into out. The datastore
// returns untyped values, so a marshal round-trip recovers the typed form.
func (s *Storage) load(key string, out any) error {
	data, exists := s.ds.Get(key)
	if !exists {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshalling %s: %w", key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("error unmarshalling %s: %w", key, err)
	}
	return nil
}
