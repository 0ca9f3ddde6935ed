package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dghofer/docsight/internal/index"
	"github.com/dghofer/docsight/internal/structure"
)

// Status represents the state of a document collection.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusBuilding Status = "building"
	StatusReady    Status = "ready"
	StatusFailed   Status = "failed"
)

// InputFile is one uploaded document awaiting processing.
type InputFile struct {
	Name string
	Data []byte
}

// DocumentOutline pairs a document with its detected outline.
type DocumentOutline struct {
	Document string            `json:"document"`
	Title    string            `json:"title"`
	Outline  structure.Outline `json:"outline"`
}

// Collection tracks a set of documents through the build phase and, once
// ready, holds the immutable index all queries run against.
type Collection struct {
	mu sync.Mutex

	ID string `json:"collection_id"`

	Status Status `json:"status"`
	Phase  string `json:"phase"`

	DocCount      int      `json:"doc_count"`
	DocsProcessed int      `json:"docs_processed"`
	SectionCount  int      `json:"section_count"`
	Errors        []string `json:"errors"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	files    []InputFile
	outlines []DocumentOutline
	index    *index.Index
}

// NewCollection creates a queued collection over the given files. The
// collection ID is the content hash of the inputs, so resubmitting the same
// corpus yields the same ID.
func NewCollection(files []InputFile) *Collection {
	hash := ContentHashHex(files)
	now := time.Now()
	return &Collection{
		ID:          hash[:16],
		Status:      StatusQueued,
		Phase:       "queued",
		DocCount:    len(files),
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
		files:       files,
	}
}

// SetStatus updates collection status atomically.
func (c *Collection) SetStatus(status Status, phase string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Status = status
	c.Phase = phase
	c.UpdatedAt = time.Now()
}

// AddError records a per-document error.
func (c *Collection) AddError(err string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors = append(c.Errors, err)
	c.UpdatedAt = time.Now()
}

// IncrDocsProcessed atomically bumps the processed-document counter.
func (c *Collection) IncrDocsProcessed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DocsProcessed++
	c.UpdatedAt = time.Now()
}

// SetResult installs the build output and marks the collection ready.
func (c *Collection) SetResult(outlines []DocumentOutline, ix *index.Index) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outlines = outlines
	c.index = ix
	c.SectionCount = ix.Len()
	c.files = nil
	c.Status = StatusReady
	c.Phase = "done"
	c.UpdatedAt = time.Now()
}

// Files returns the pending input files.
func (c *Collection) Files() []InputFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files
}

// Outlines returns the detected outlines once the collection is ready.
func (c *Collection) Outlines() []DocumentOutline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outlines
}

// Index returns the built index, or nil while the collection is not ready.
func (c *Collection) Index() *index.Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Status != StatusReady {
		return nil
	}
	return c.index
}

// Snapshot is a read-only, JSON-safe copy of collection state.
type Snapshot struct {
	ID            string    `json:"collection_id"`
	Status        Status    `json:"status"`
	Phase         string    `json:"phase"`
	DocCount      int       `json:"doc_count"`
	DocsProcessed int       `json:"docs_processed"`
	SectionCount  int       `json:"section_count"`
	Errors        []string  `json:"errors"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the collection state.
func (c *Collection) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := c.Errors
	if errs == nil {
		errs = []string{}
	}
	return Snapshot{
		ID:            c.ID,
		Status:        c.Status,
		Phase:         c.Phase,
		DocCount:      c.DocCount,
		DocsProcessed: c.DocsProcessed,
		SectionCount:  c.SectionCount,
		Errors:        errs,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// Store is a thread-safe in-memory collection registry with TTL eviction.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
	ttl         time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		collections: make(map[string]*Collection),
		ttl:         ttl,
	}
}

func (s *Store) Put(c *Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[c.ID] = c
}

func (s *Store) Get(id string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[id]
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return false
	}
	delete(s.collections, id)
	return true
}

// Cleanup removes expired collections.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, c := range s.collections {
		if now.Sub(c.UpdatedAt) > s.ttl {
			delete(s.collections, id)
		}
	}
}

// ContentHashHex computes the SHA-256 hex digest of a file set. Names and
// data both feed the hash, so renaming a file changes the digest.
func ContentHashHex(files []InputFile) string {
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write(f.Data)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
