package tokenizer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmcost/internal/domain"
	"github.com/davidbz/llmcost/internal/tokenizer"
)

func TestRegistry_EncodingFor(t *testing.T) {
	registry := tokenizer.NewRegistry("")

	tests := []struct {
		name     string
		model    string
		expected string
	}{
		{name: "exact chat model", model: "gpt-3.5-turbo", expected: tokenizer.EncodingCL100K},
		{name: "exact gpt-4", model: "gpt-4", expected: tokenizer.EncodingCL100K},
		{name: "exact gpt-4o", model: "gpt-4o", expected: tokenizer.EncodingO200K},
		{name: "dated gpt-4 snapshot by prefix", model: "gpt-4-0613", expected: tokenizer.EncodingCL100K},
		{name: "dated gpt-4o snapshot by prefix", model: "gpt-4o-2024-08-06", expected: tokenizer.EncodingO200K},
		{name: "vendor prefixed id", model: "openai/gpt-3.5-turbo", expected: tokenizer.EncodingCL100K},
		{name: "upper case id", model: "GPT-4", expected: tokenizer.EncodingCL100K},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoding, err := registry.EncodingFor(tt.model)
			require.NoError(t, err)
			require.Equal(t, tt.expected, encoding)
		})
	}
}

func TestRegistry_UnknownModel(t *testing.T) {
	t.Run("should fail without a default encoding", func(t *testing.T) {
		registry := tokenizer.NewRegistry("")

		_, err := registry.EncodingFor("anthropic/claude-3-opus")
		require.ErrorIs(t, err, domain.ErrUnknownEncoding)
	})

	t.Run("should use the default encoding when configured", func(t *testing.T) {
		registry := tokenizer.NewRegistry(tokenizer.EncodingCL100K)

		encoding, err := registry.EncodingFor("anthropic/claude-3-opus")
		require.NoError(t, err)
		require.Equal(t, tokenizer.EncodingCL100K, encoding)
	})
}

func TestRegistry_Spec(t *testing.T) {
	registry := tokenizer.NewRegistry("")

	for _, name := range []string{
		tokenizer.EncodingO200K,
		tokenizer.EncodingCL100K,
		tokenizer.EncodingP50K,
		tokenizer.EncodingP50KEdit,
		tokenizer.EncodingR50K,
	} {
		spec, err := registry.Spec(name)
		require.NoError(t, err, name)
		require.Equal(t, name, spec.Name)
		require.NotEmpty(t, spec.SplitPattern)
		require.Contains(t, spec.SpecialTokens, "<|endoftext|>")
		require.Contains(t, spec.RankFile, ".tiktoken")
	}

	_, err := registry.Spec("nope")
	require.Error(t, err)
}
