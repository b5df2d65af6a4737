package tokenizer

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/davidbz/llmcost/internal/domain"
)

// Encoding names understood by the default registry.
const (
	EncodingO200K    = "o200k_base"
	EncodingCL100K   = "cl100k_base"
	EncodingP50K     = "p50k_base"
	EncodingP50KEdit = "p50k_edit"
	EncodingR50K     = "r50k_base"
)

const (
	endOfText   = "<|endoftext|>"
	fimPrefix   = "<|fim_prefix|>"
	fimMiddle   = "<|fim_middle|>"
	fimSuffix   = "<|fim_suffix|>"
	endOfPrompt = "<|endofprompt|>"

	rankFileBaseURL = "https://openaipublic.blob.core.windows.net/encodings/"
)

const (
	legacySplitPattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`
	cl100kSplitPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
)

//nolint:gochecknoglobals // Built once from constant parts
var o200kSplitPattern = strings.Join([]string{
	`[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?`,
	`[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?`,
	`\p{N}{1,3}`,
	` ?[^\s\p{L}\p{N}]+[\r\n/]*`,
	`\s*[\r\n]+`,
	`\s+(?!\S)`,
	`\s+`,
}, "|")

// EncodingSpec describes how to build an encoder. The rank table itself is
// fetched through a tiktoken BpeLoader from RankFile.
type EncodingSpec struct {
	Name           string
	VocabularySize *int // nil skips the vocabulary size check
	SplitPattern   string
	SpecialTokens  map[string]int
	RankFile       string
}

func vocab(n int) *int {
	return &n
}

// DefaultEncodings returns the specs of the public OpenAI encodings.
func DefaultEncodings() []EncodingSpec {
	return []EncodingSpec{
		{
			Name:          EncodingO200K,
			SplitPattern:  o200kSplitPattern,
			SpecialTokens: map[string]int{endOfText: 199999, endOfPrompt: 200018},
			RankFile:      rankFileBaseURL + "o200k_base.tiktoken",
		},
		{
			Name:         EncodingCL100K,
			SplitPattern: cl100kSplitPattern,
			SpecialTokens: map[string]int{
				endOfText:   100257,
				fimPrefix:   100258,
				fimMiddle:   100259,
				fimSuffix:   100260,
				endOfPrompt: 100276,
			},
			RankFile: rankFileBaseURL + "cl100k_base.tiktoken",
		},
		{
			Name:           EncodingP50K,
			VocabularySize: vocab(50281),
			SplitPattern:   legacySplitPattern,
			SpecialTokens:  map[string]int{endOfText: 50256},
			RankFile:       rankFileBaseURL + "p50k_base.tiktoken",
		},
		{
			Name:         EncodingP50KEdit,
			SplitPattern: legacySplitPattern,
			SpecialTokens: map[string]int{
				endOfText: 50256,
				fimPrefix: 50281,
				fimMiddle: 50282,
				fimSuffix: 50283,
			},
			RankFile: rankFileBaseURL + "p50k_base.tiktoken",
		},
		{
			Name:           EncodingR50K,
			VocabularySize: vocab(50257),
			SplitPattern:   legacySplitPattern,
			SpecialTokens:  map[string]int{endOfText: 50256},
			RankFile:       rankFileBaseURL + "r50k_base.tiktoken",
		},
	}
}

// Registry maps model names to encodings and encodings to their specs.
type Registry struct {
	mu              sync.RWMutex
	models          map[string]string
	prefixes        map[string]string
	encodings       map[string]EncodingSpec
	defaultEncoding string
}

// NewRegistry creates a registry seeded with tiktoken's model tables and the
// default encodings. An empty defaultEncoding makes unmapped models an error.
func NewRegistry(defaultEncoding string) *Registry {
	r := NewEmptyRegistry(defaultEncoding)

	maps.Copy(r.models, tiktoken.MODEL_TO_ENCODING)
	maps.Copy(r.prefixes, tiktoken.MODEL_PREFIX_TO_ENCODING)

	for _, spec := range DefaultEncodings() {
		r.encodings[spec.Name] = spec
	}

	return r
}

// NewEmptyRegistry creates a registry with no models or encodings.
func NewEmptyRegistry(defaultEncoding string) *Registry {
	return &Registry{
		mu:              sync.RWMutex{},
		models:          make(map[string]string),
		prefixes:        make(map[string]string),
		encodings:       make(map[string]EncodingSpec),
		defaultEncoding: defaultEncoding,
	}
}

// RegisterModel maps a model name to an encoding.
func (r *Registry) RegisterModel(model, encoding string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[model] = encoding
}

// RegisterEncoding adds or replaces an encoding spec.
func (r *Registry) RegisterEncoding(spec EncodingSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.encodings[spec.Name] = spec
}

// EncodingFor resolves the encoding of a model. Vendor prefixes such as
// "openai/" are ignored, exact names win over prefixes, and the longest
// matching prefix wins among prefixes.
func (r *Registry) EncodingFor(model string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range candidateNames(model) {
		if encoding, ok := r.models[name]; ok {
			return encoding, nil
		}
	}

	for _, name := range candidateNames(model) {
		best := ""
		for prefix := range r.prefixes {
			if strings.HasPrefix(name, prefix) && len(prefix) > len(best) {
				best = prefix
			}
		}
		if best != "" {
			return r.prefixes[best], nil
		}
	}

	if r.defaultEncoding != "" {
		return r.defaultEncoding, nil
	}

	return "", fmt.Errorf("%w: %s", domain.ErrUnknownEncoding, model)
}

// Spec returns the spec of an encoding.
func (r *Registry) Spec(encoding string) (EncodingSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.encodings[encoding]
	if !ok {
		return EncodingSpec{}, fmt.Errorf("unknown encoding %s", encoding)
	}

	return spec, nil
}

func candidateNames(model string) []string {
	names := []string{model}

	if idx := strings.LastIndex(model, "/"); idx >= 0 && idx < len(model)-1 {
		names = append(names, model[idx+1:])
	}

	lowered := make([]string, 0, len(names))
	for _, name := range names {
		if lower := strings.ToLower(name); lower != name {
			lowered = append(lowered, lower)
		}
	}

	return append(names, lowered...)
}
