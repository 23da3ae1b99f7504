// Package catalog manages named datasets of fabric export records. A Store
// keeps an index of dataset metadata and persists record batches through a
// pluggable Backend, snappy-compressed. Each dataset's relationship graph is
// built lazily on first query and cached until the next upload invalidates
// it; the graph is always rebuilt wholesale, never patched.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/nwade/fabriclens/pkg/graph"
	"github.com/nwade/fabriclens/pkg/logging"
	"github.com/nwade/fabriclens/pkg/metrics"
	"github.com/nwade/fabriclens/pkg/record"
)

// Dataset is the catalog metadata for one named collection of export
// batches.
type Dataset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
	Batches     []string `json:"batches"`
	RecordCount int      `json:"record_count"`
	AssetCount  int      `json:"asset_count"`
}

// batchPayload is the persisted form of one upload, serialized to JSON and
// snappy-compressed.
type batchPayload struct {
	Records []record.Record `json:"records"`
	Assets  []record.Asset  `json:"assets,omitempty"`
}

// graphSnapshot ties a built graph to the dataset generation it was built
// from.
type graphSnapshot struct {
	generation uint64
	graph      *graph.Graph
}

// datasetState pairs metadata (guarded by the store mutex) with the
// lock-free graph cache.
type datasetState struct {
	meta       Dataset
	generation atomic.Uint64
	snapshot   atomic.Pointer[graphSnapshot]
}

// Store is a thread-safe dataset catalog over a storage backend.
type Store struct {
	backend Backend
	log     logging.Logger

	mu       sync.RWMutex
	datasets map[string]*datasetState
}

// NewStore opens a catalog over the given backend, loading any existing
// index. A nil logger disables logging.
func NewStore(backend Backend, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Store{
		backend:  backend,
		log:      log,
		datasets: make(map[string]*datasetState),
	}

	data, err := s.backend.ReadIndex()
	if err != nil {
		return nil, storeError("Open", "", err)
	}
	if len(data) > 0 {
		var index map[string]Dataset
		if err := json.Unmarshal(data, &index); err != nil {
			return nil, storeError("Open", "", fmt.Errorf("%w: %v", ErrCorruptIndex, err))
		}
		for id, meta := range index {
			s.datasets[id] = &datasetState{meta: meta}
		}
	}

	metrics.CatalogDatasetsTotal.Set(float64(len(s.datasets)))
	return s, nil
}

// Create registers a new empty dataset and persists the index. Names are
// unique within the catalog.
func (s *Store) Create(name, description string) (Dataset, error) {
	if name == "" {
		return Dataset{}, storeError("Create", name, ErrEmptyName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range s.datasets {
		if state.meta.Name == name {
			return Dataset{}, storeError("Create", name, ErrDatasetExists)
		}
	}

	now := time.Now().UnixMilli()
	meta := Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.datasets[meta.ID] = &datasetState{meta: meta}
	if err := s.persistIndexLocked(); err != nil {
		delete(s.datasets, meta.ID)
		metrics.CatalogWritesTotal.WithLabelValues("create", "error").Inc()
		return Dataset{}, storeError("Create", name, err)
	}

	metrics.CatalogWritesTotal.WithLabelValues("create", "ok").Inc()
	metrics.CatalogDatasetsTotal.Inc()
	s.log.Info("dataset created", logging.Dataset(meta.ID), logging.String("name", name))
	return meta, nil
}

// Get returns a copy of the dataset metadata.
func (s *Store) Get(datasetID string) (Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.datasets[datasetID]
	if !ok {
		return Dataset{}, storeError("Get", datasetID, ErrDatasetNotFound)
	}
	return copyMeta(state.meta), nil
}

// List returns all datasets, most recently updated first.
func (s *Store) List() []Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Dataset, 0, len(s.datasets))
	for _, state := range s.datasets {
		out = append(out, copyMeta(state.meta))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Delete removes a dataset, its batches, and its cache entry.
func (s *Store) Delete(datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.datasets[datasetID]
	if !ok {
		return storeError("Delete", datasetID, ErrDatasetNotFound)
	}

	delete(s.datasets, datasetID)
	if err := s.persistIndexLocked(); err != nil {
		s.datasets[datasetID] = state
		metrics.CatalogWritesTotal.WithLabelValues("delete", "error").Inc()
		return storeError("Delete", datasetID, err)
	}
	if err := s.backend.DeleteDataset(datasetID); err != nil {
		// Index no longer references the dataset; report but do not resurrect.
		s.log.Warn("dataset blobs left behind", logging.Dataset(datasetID), logging.ErrorField(err))
	}

	metrics.CatalogWritesTotal.WithLabelValues("delete", "ok").Inc()
	metrics.CatalogDatasetsTotal.Dec()
	s.log.Info("dataset deleted", logging.Dataset(datasetID))
	return nil
}

// AppendBatch persists one upload of records (and optional assets) to a
// dataset as a compressed batch, bumping the dataset generation so the next
// graph query rebuilds.
func (s *Store) AppendBatch(datasetID string, records []record.Record, assets []record.Asset) (string, error) {
	raw, err := json.Marshal(batchPayload{Records: records, Assets: assets})
	if err != nil {
		return "", storeError("AppendBatch", datasetID, err)
	}
	compressed := snappy.Encode(nil, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.datasets[datasetID]
	if !ok {
		return "", storeError("AppendBatch", datasetID, ErrDatasetNotFound)
	}

	batchID := uuid.NewString()
	if err := s.backend.WriteBatch(datasetID, batchID, compressed); err != nil {
		metrics.CatalogWritesTotal.WithLabelValues("batch", "error").Inc()
		return "", storeError("AppendBatch", datasetID, err)
	}

	prev := state.meta
	state.meta.Batches = append(state.meta.Batches, batchID)
	state.meta.RecordCount += len(records)
	state.meta.AssetCount += len(assets)
	state.meta.UpdatedAt = time.Now().UnixMilli()
	if err := s.persistIndexLocked(); err != nil {
		state.meta = prev
		metrics.CatalogWritesTotal.WithLabelValues("batch", "error").Inc()
		return "", storeError("AppendBatch", datasetID, err)
	}
	state.generation.Add(1)

	metrics.CatalogWritesTotal.WithLabelValues("batch", "ok").Inc()
	metrics.CatalogBatchBytesTotal.WithLabelValues("raw").Add(float64(len(raw)))
	metrics.CatalogBatchBytesTotal.WithLabelValues("compressed").Add(float64(len(compressed)))
	s.log.Info("batch appended",
		logging.Dataset(datasetID),
		logging.RecordCount(len(records)),
		logging.Int("assets", len(assets)),
		logging.Int("compressed_bytes", len(compressed)))
	return batchID, nil
}

// Records loads and decodes every batch of a dataset, in upload order.
func (s *Store) Records(datasetID string) ([]record.Record, error) {
	payloads, err := s.loadPayloads(datasetID)
	if err != nil {
		return nil, err
	}
	var out []record.Record
	for _, p := range payloads {
		out = append(out, p.Records...)
	}
	return out, nil
}

// Assets loads the asset rows of every batch of a dataset.
func (s *Store) Assets(datasetID string) ([]record.Asset, error) {
	payloads, err := s.loadPayloads(datasetID)
	if err != nil {
		return nil, err
	}
	var out []record.Asset
	for _, p := range payloads {
		out = append(out, p.Assets...)
	}
	return out, nil
}

// Graph returns the relationship graph of a dataset, building it on first
// use. The cached graph is served lock-free until a new batch invalidates
// it; concurrent rebuilds may race, either result is valid for its
// generation.
func (s *Store) Graph(datasetID string) (*graph.Graph, error) {
	s.mu.RLock()
	state, ok := s.datasets[datasetID]
	s.mu.RUnlock()
	if !ok {
		return nil, storeError("Graph", datasetID, ErrDatasetNotFound)
	}

	generation := state.generation.Load()
	if snap := state.snapshot.Load(); snap != nil && snap.generation == generation {
		return snap.graph, nil
	}

	records, err := s.Records(datasetID)
	if err != nil {
		return nil, err
	}
	g := graph.BuildWithLogger(records, s.log)
	state.snapshot.Store(&graphSnapshot{generation: generation, graph: g})
	s.log.Info("graph built", logging.Dataset(datasetID), logging.RecordCount(g.Len()))
	return g, nil
}

func (s *Store) loadPayloads(datasetID string) ([]batchPayload, error) {
	s.mu.RLock()
	state, ok := s.datasets[datasetID]
	var batches []string
	if ok {
		batches = append(batches, state.meta.Batches...)
	}
	s.mu.RUnlock()
	if !ok {
		return nil, storeError("Records", datasetID, ErrDatasetNotFound)
	}

	payloads := make([]batchPayload, 0, len(batches))
	for _, batchID := range batches {
		compressed, err := s.backend.ReadBatch(datasetID, batchID)
		if err != nil {
			return nil, storeError("Records", datasetID, err)
		}
		raw, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, storeError("Records", datasetID, fmt.Errorf("%w: %v", ErrCorruptBatch, err))
		}
		var payload batchPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, storeError("Records", datasetID, fmt.Errorf("%w: %v", ErrCorruptBatch, err))
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// persistIndexLocked writes the current metadata map through the backend.
// Callers hold the write lock.
func (s *Store) persistIndexLocked() error {
	index := make(map[string]Dataset, len(s.datasets))
	for id, state := range s.datasets {
		index[id] = state.meta
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	return s.backend.WriteIndex(data)
}

func copyMeta(meta Dataset) Dataset {
	out := meta
	out.Batches = append([]string(nil), meta.Batches...)
	return out
}
