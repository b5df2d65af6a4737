package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/llmcost/internal/domain"
	llmhttp "github.com/davidbz/llmcost/internal/http"
)

func setTestEnv(t *testing.T, pricingURL string) {
	t.Helper()

	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PRICING_BASE_URL", pricingURL)
	t.Setenv("PRICING_TIMEOUT_MS", "2000")
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestBuildContainer(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:1")

	container, err := buildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(
		server *llmhttp.Server,
		estimator *domain.EstimatorService,
		store domain.PricingStore,
	) {
		require.NotNil(t, server)
		require.NotNil(t, estimator)
		require.NotNil(t, store)
	})
	require.NoError(t, err)
}

func TestBuildContainer_InvalidRedisURL(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:1")
	t.Setenv("REDIS_URL", "not-a-redis-url")

	container, err := buildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(domain.PricingStore) {})
	require.Error(t, err)
}

func TestPricingCmd(t *testing.T) {
	t.Run("should print bundled pricing offline", func(t *testing.T) {
		setTestEnv(t, "http://127.0.0.1:1")

		out, err := runCommand(t, "pricing", "--offline", "--model", "gpt-3.5-turbo")
		require.NoError(t, err)

		var response llmhttp.PricingResponse
		require.NoError(t, json.Unmarshal([]byte(out), &response))
		require.Equal(t, domain.PricingSourceOffline, response.Source)
		require.Nil(t, response.FetchedAt)
		require.Len(t, response.Models, 1)
		require.InDelta(t, 0.0000015, *response.Models["gpt-3.5-turbo"].InputCostPerToken, 1e-15)
	})

	t.Run("should print live pricing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/models", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"id":"openai/gpt-4o","pricing":{"prompt":"0.0000025","completion":"0.00001"}}]}`))
		}))
		defer server.Close()

		setTestEnv(t, server.URL)

		out, err := runCommand(t, "pricing", "--model", "gpt-4o")
		require.NoError(t, err)

		var response llmhttp.PricingResponse
		require.NoError(t, json.Unmarshal([]byte(out), &response))
		require.Equal(t, domain.PricingSourceFresh, response.Source)
		require.NotNil(t, response.FetchedAt)
		require.Len(t, response.Models, 1)
		require.InDelta(t, 0.00001, *response.Models["openai/gpt-4o"].OutputCostPerToken, 1e-15)
	})

	t.Run("should fail for an unpriced model", func(t *testing.T) {
		setTestEnv(t, "http://127.0.0.1:1")

		_, err := runCommand(t, "pricing", "--offline", "--model", "no-such-model")
		require.Error(t, err)
	})
}

func TestEstimateCmd_FlagValidation(t *testing.T) {
	setTestEnv(t, "http://127.0.0.1:1")

	t.Run("should require a model", func(t *testing.T) {
		_, err := runCommand(t, "estimate", "--input", "hello")
		require.Error(t, err)
	})

	t.Run("should reject text and file for the same side", func(t *testing.T) {
		_, err := runCommand(t, "estimate", "--model", "gpt-4o", "--input", "hi", "--input-file", "prompt.txt")
		require.Error(t, err)
	})

	t.Run("should report a missing file", func(t *testing.T) {
		_, err := runCommand(t, "estimate", "--model", "gpt-4o", "--input-file", filepath.Join(t.TempDir(), "missing.txt"))
		require.Error(t, err)
	})
}

func TestEstimateFlags_Request(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte("Hello from a file"), 0o600))

	flags := estimateFlags{
		model:     "gpt-3.5-turbo",
		inputFile: inputPath,
		output:    "Hi there!",
		offline:   true,
		timeoutMs: 300,
	}

	req, err := flags.request()
	require.NoError(t, err)
	require.Equal(t, &domain.EstimateRequest{
		Model:  "gpt-3.5-turbo",
		Input:  "Hello from a file",
		Output: "Hi there!",
		Options: domain.FetchOptions{
			Offline:   true,
			TimeoutMs: 300,
		},
	}, req)
}
