package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dghofer/docsight/internal/answer"
	"github.com/dghofer/docsight/internal/config"
	"github.com/dghofer/docsight/internal/fragment"
	"github.com/dghofer/docsight/internal/metrics"
	"github.com/dghofer/docsight/internal/parser"
	"github.com/dghofer/docsight/internal/persona"
	"github.com/dghofer/docsight/internal/rank"
)

// Orchestrator manages collection builds and queries. Builds run on a
// bounded worker pool; queries run against whatever index a ready
// collection holds.
type Orchestrator struct {
	store  *Store
	queue  chan *Collection
	vocabs persona.Vocabularies
	log    *slog.Logger
	cfg    config.Config
	rec    *metrics.Recorder

	weights   rank.Weights
	answerCfg answer.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Score weights and synthesis bounds
// come from config; persona vocabularies may be nil to use the builtins.
func NewOrchestrator(cfg config.Config, vocabs persona.Vocabularies, log *slog.Logger) *Orchestrator {
	if vocabs == nil {
		vocabs = persona.BuiltinVocabularies()
	}

	weights := rank.DefaultWeights()
	weights.Cosine = cfg.CosineWeight
	weights.Persona = cfg.PersonaWeight

	answerCfg := answer.DefaultConfig()
	answerCfg.TopSections = cfg.TopSections
	answerCfg.TopSentences = cfg.TopSentences
	answerCfg.MinSentenceLen = cfg.MinSentenceLen
	answerCfg.MaxSentenceLen = cfg.MaxSentenceLen

	return &Orchestrator{
		store:     NewStore(cfg.CollectionTTL),
		queue:     make(chan *Collection, cfg.MaxQueueSize),
		vocabs:    vocabs,
		log:       log,
		cfg:       cfg,
		rec:       metrics.NewRecorder(time.Hour),
		weights:   weights,
		answerCfg: answerCfg,
	}
}

// Start launches worker goroutines and the store cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case c, ok := <-o.queue:
					if !ok {
						return
					}
					o.build(workerCtx, c)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.store.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit registers a collection and queues it for building.
func (o *Orchestrator) Submit(c *Collection) error {
	o.store.Put(c)
	select {
	case o.queue <- c:
		return nil
	default:
		c.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("collection queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetCollection returns a collection by ID, or nil.
func (o *Orchestrator) GetCollection(id string) *Collection {
	return o.store.Get(id)
}

// DeleteCollection removes a collection. Returns false if it did not exist.
func (o *Orchestrator) DeleteCollection(id string) bool {
	return o.store.Delete(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Metrics returns phase latency aggregates.
func (o *Orchestrator) Metrics() map[metrics.Phase]metrics.PhaseSnapshot {
	return o.rec.Snapshot()
}

// Query runs a persona query against a ready collection under the
// configured soft deadline. Deadline expiry truncates, it never errors.
func (o *Orchestrator) Query(ctx context.Context, collectionID string, p QueryParams) (*QueryResult, error) {
	c := o.store.Get(collectionID)
	if c == nil {
		return nil, fmt.Errorf("collection %s not found", collectionID)
	}
	ix := c.Index()
	if ix == nil {
		return nil, fmt.Errorf("collection %s is not ready (status %s)", collectionID, c.Snapshot().Status)
	}

	queryCtx, cancel := context.WithTimeout(ctx, o.cfg.QueryDeadline)
	defer cancel()

	docs := make([]string, 0, len(c.Outlines()))
	for _, ol := range c.Outlines() {
		docs = append(docs, ol.Document)
	}

	result := RunQuery(queryCtx, ix, docs, p, o.vocabs, o.weights, o.answerCfg, o.rec)
	return &result, nil
}

// build runs the full structure phase for a queued collection.
func (o *Orchestrator) build(ctx context.Context, c *Collection) {
	log := o.log.With("collection_id", c.ID)

	c.SetStatus(StatusBuilding, "parsing")
	files := c.Files()
	docs := make([]fragment.Document, 0, len(files))
	for _, f := range files {
		start := time.Now()
		doc, err := o.parseFile(f)
		o.rec.Record(metrics.PhaseParse, time.Since(start))
		c.IncrDocsProcessed()
		if err != nil {
			log.Error("parse failed", "file", f.Name, "error", err)
			c.AddError(fmt.Sprintf("parse %s: %s", f.Name, err))
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		log.Warn("no parseable documents")
		c.SetStatus(StatusFailed, "parsing")
		return
	}

	c.SetStatus(StatusBuilding, "indexing")
	outlines, ix, err := BuildIndex(ctx, docs, o.cfg.MaxConcurrentDocs, o.rec)
	if err != nil {
		log.Error("index build failed", "error", err)
		c.AddError(err.Error())
		c.SetStatus(StatusFailed, "indexing")
		return
	}

	c.SetResult(outlines, ix)
	log.Info("collection ready", "documents", len(docs), "sections", ix.Len())
}

func (o *Orchestrator) parseFile(f InputFile) (fragment.Document, error) {
	p, err := parser.ForFile(f.Name)
	if err != nil {
		return fragment.Document{}, err
	}
	return p.Parse(bytes.NewReader(f.Data), f.Name)
}
