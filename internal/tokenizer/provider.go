// Package tokenizer creates and caches per-model tiktoken encoders and counts tokens with them.
package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/singleflight"

	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/observability"
)

// Config contains tokenizer settings.
type Config struct {
	// DefaultEncoding is used for models without a known encoding. Empty means such models fail.
	DefaultEncoding string `env:"TOKENIZER_DEFAULT_ENCODING"`
}

// EncodingConfig is the loaded configuration behind an encoder.
type EncodingConfig struct {
	Name           string
	VocabularySize *int
	SplitPattern   string
	SpecialTokens  map[string]int
	RankTable      map[string]int
}

// Entry is a cached tokenizer for one model.
type Entry struct {
	Model   string
	Config  EncodingConfig
	Encoder *tiktoken.Tiktoken
}

// Count returns the number of tokens in text.
// Special token sequences are encoded as ordinary text.
func (e *Entry) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(e.Encoder.Encode(text, nil, nil))
}

type encoding struct {
	config  EncodingConfig
	encoder *tiktoken.Tiktoken
}

// LoadRecorder observes encoding loads.
type LoadRecorder interface {
	RecordTokenizerLoad(encoding string, duration time.Duration, err error)
}

// Provider lazily creates one Entry per model and reuses it until Reset.
// Concurrent requests for the same model or encoding share a single load.
type Provider struct {
	registry *Registry
	loader   tiktoken.BpeLoader
	recorder LoadRecorder

	mu        sync.RWMutex
	gen       uint64 // bumped by Reset; loads started under an older gen are not kept
	entries   map[string]*Entry
	encodings map[string]*encoding
	models    *singleflight.Group
	loads     *singleflight.Group
}

// NewProvider creates a tokenizer provider. A nil loader uses tiktoken's
// default loader, which downloads rank files and caches them on disk.
func NewProvider(registry *Registry, loader tiktoken.BpeLoader, recorder LoadRecorder) *Provider {
	if loader == nil {
		loader = tiktoken.NewDefaultBpeLoader()
	}

	return &Provider{
		registry:  registry,
		loader:    loader,
		recorder:  recorder,
		entries:   make(map[string]*Entry),
		encodings: make(map[string]*encoding),
		models:    new(singleflight.Group),
		loads:     new(singleflight.Group),
	}
}

// CountTokens returns the token count of text under the model's encoding.
// Empty text returns 0 without loading anything.
func (p *Provider) CountTokens(ctx context.Context, model string, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	entry, err := p.GetTokenizer(ctx, model)
	if err != nil {
		return 0, err
	}

	return entry.Count(text), nil
}

// GetTokenizer returns the cached tokenizer of a model, loading it on first use.
// Errors are always *domain.TokenizerLoadError.
func (p *Provider) GetTokenizer(ctx context.Context, model string) (*Entry, error) {
	if entry := p.cachedEntry(model); entry != nil {
		return entry, nil
	}

	// Loading is local work and is not bound to the caller's deadline.
	loadCtx := context.WithoutCancel(ctx)

	p.mu.RLock()
	gen, group := p.gen, p.models
	p.mu.RUnlock()

	result, err, _ := group.Do(model, func() (any, error) {
		if entry := p.cachedEntry(model); entry != nil {
			return entry, nil
		}

		encodingName, resolveErr := p.registry.EncodingFor(model)
		if resolveErr != nil {
			return nil, &domain.TokenizerLoadError{Model: model, Err: resolveErr}
		}

		enc, loadErr := p.loadEncoding(loadCtx, encodingName)
		if loadErr != nil {
			return nil, &domain.TokenizerLoadError{Model: model, Encoding: encodingName, Err: loadErr}
		}

		entry := &Entry{Model: model, Config: enc.config, Encoder: enc.encoder}

		p.keep(gen, func() {
			p.entries[model] = entry
		})

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	entry, ok := result.(*Entry)
	if !ok {
		return nil, &domain.TokenizerLoadError{Model: model, Err: errors.New("unexpected load result")}
	}

	return entry, nil
}

// Reset drops every cached tokenizer. Loads still in flight finish for
// their callers but are not cached, and later calls start fresh loads.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.entries = make(map[string]*Entry)
	p.encodings = make(map[string]*encoding)
	p.models = new(singleflight.Group)
	p.loads = new(singleflight.Group)
}

// Cached reports whether a tokenizer for model is cached.
func (p *Provider) Cached(model string) bool {
	return p.cachedEntry(model) != nil
}

func (p *Provider) cachedEntry(model string) *Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.entries[model]
}

// keep runs store under the lock unless Reset was called since gen was read.
func (p *Provider) keep(gen uint64, store func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen == gen {
		store()
	}
}

func (p *Provider) loadEncoding(ctx context.Context, name string) (*encoding, error) {
	p.mu.RLock()
	enc, ok := p.encodings[name]
	gen, group := p.gen, p.loads
	p.mu.RUnlock()
	if ok {
		return enc, nil
	}

	result, err, _ := group.Do(name, func() (any, error) {
		start := time.Now()
		loaded, buildErr := p.buildEncoding(name)
		duration := time.Since(start)

		if p.recorder != nil {
			p.recorder.RecordTokenizerLoad(name, duration, buildErr)
		}

		logger := observability.FromContext(ctx)
		if buildErr != nil {
			logger.Error("tokenizer encoding load failed",
				observability.String("encoding", name),
				observability.Error(buildErr))
			return nil, buildErr
		}

		logger.Info("tokenizer encoding loaded",
			observability.String("encoding", name),
			observability.Int("ranks", len(loaded.config.RankTable)),
			observability.Duration("duration", duration))

		p.keep(gen, func() {
			p.encodings[name] = loaded
		})

		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	loaded, ok := result.(*encoding)
	if !ok {
		return nil, errors.New("unexpected encoding load result")
	}

	return loaded, nil
}

func (p *Provider) buildEncoding(name string) (*encoding, error) {
	spec, err := p.registry.Spec(name)
	if err != nil {
		return nil, err
	}

	ranks, err := p.loader.LoadTiktokenBpe(spec.RankFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank table %s: %w", spec.RankFile, err)
	}

	if spec.VocabularySize != nil && len(ranks)+len(spec.SpecialTokens) != *spec.VocabularySize {
		return nil, fmt.Errorf("encoding %s: expected %d tokens, rank table and special tokens hold %d",
			name, *spec.VocabularySize, len(ranks)+len(spec.SpecialTokens))
	}

	bpe, err := tiktoken.NewCoreBPE(ranks, spec.SpecialTokens, spec.SplitPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to build encoder %s: %w", name, err)
	}

	specialSet := make(map[string]any, len(spec.SpecialTokens))
	for token := range spec.SpecialTokens {
		specialSet[token] = true
	}

	config := EncodingConfig{
		Name:           spec.Name,
		VocabularySize: spec.VocabularySize,
		SplitPattern:   spec.SplitPattern,
		SpecialTokens:  spec.SpecialTokens,
		RankTable:      ranks,
	}

	//nolint:exhaustruct // Remaining tiktoken fields are unused by the encoder
	tkEncoding := &tiktoken.Encoding{
		Name:           spec.Name,
		PatStr:         spec.SplitPattern,
		MergeableRanks: ranks,
		SpecialTokens:  spec.SpecialTokens,
	}

	return &encoding{
		config:  config,
		encoder: tiktoken.NewTiktoken(bpe, tkEncoding, specialSet),
	}, nil
}
