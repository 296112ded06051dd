package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sherpas/supply/config"
	"github.com/sherpas/supply/pkg/chains"
	"github.com/sherpas/supply/pkg/types"
	"github.com/sherpas/supply/pkg/web"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	results   map[string]*types.ReadResult
	refreshed []string
}

func (m *mockSource) DefaultChain() string { return "sepolia" }

func (m *mockSource) Chains() []string { return []string{"sepolia", "base"} }

func (m *mockSource) Latest(chain string) (*types.ReadResult, error) {
	result, ok := m.results[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chains.ErrUnknownChain, chain)
	}
	return result, nil
}

func (m *mockSource) Refresh(ctx context.Context, chain string) (*types.ReadResult, error) {
	if _, err := m.Latest(chain); err != nil {
		return nil, err
	}
	m.refreshed = append(m.refreshed, chain)
	m.results[chain] = types.Success(chain, 1, []string{"fresh"})
	return m.results[chain], nil
}

type mockHistory struct {
	limit int
	err   error
}

func (m *mockHistory) ListReadings(ctx context.Context, chain string, limit int) ([]types.ReadResult, error) {
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return []types.ReadResult{*types.Success(chain, 1, []string{"old"})}, nil
}

func newSource() *mockSource {
	return &mockSource{results: map[string]*types.ReadResult{
		"sepolia": types.Success("sepolia", 11155111, []string{"1000"}),
		"base":    types.Pending("base", 8453),
	}}
}

func do(t *testing.T, server *web.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexServerSideRendered(t *testing.T) {
	server := web.NewServer(":0", config.DefaultWallet(), newSource(), nil)

	rec := do(t, server, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<title>sherpas-supply</title>")
	require.Contains(t, body, "Goods Supply: 1000 ")
	require.Contains(t, body, "9c7d72159a8c34139d1ec23b00c65536")
	require.Contains(t, body, `href="/?chain=sepolia"`)
	require.Contains(t, body, `href="/?chain=base"`)
	require.NotContains(t, body, `href="/?chain=mainnet"`)
	require.NotContains(t, body, `href="/?chain=baseSepolia"`)

	rec = do(t, server, "/?chain=base")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Goods Supply: Loading…")
}

func TestIndexClientRendered(t *testing.T) {
	wallet := config.NewWalletConfig("sherpas-supply", "pid", []chains.Descriptor{chains.Sepolia}, false)
	server := web.NewServer(":0", wallet, newSource(), nil)

	rec := do(t, server, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `data-status="pending"`)
	require.Contains(t, body, `fetch("/api/supply?chain=" + encodeURIComponent("sepolia"))`)
	require.NotContains(t, body, "Goods Supply: 1000")

	// failed requests and error results both end in the error state
	require.Contains(t, body, "if (!res.ok)")
	require.Contains(t, body, "result.error")
	require.Contains(t, body, ".catch(")
	require.Contains(t, body, `section.dataset.status = "error"`)
	require.Contains(t, body, "fail(result.reason)")
	require.Contains(t, body, `"Failed to read supply: "`)
}

func TestSupplyAPI(t *testing.T) {
	source := newSource()
	server := web.NewServer(":0", config.DefaultWallet(), source, nil)

	rec := do(t, server, "/api/supply")
	require.Equal(t, http.StatusOK, rec.Code)
	var result types.ReadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, types.ReadStatusSuccess, result.Status)
	require.Equal(t, "1000", result.Value)
	require.Empty(t, source.refreshed)

	rec = do(t, server, "/api/supply?chain=base&refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "fresh", result.Value)
	require.Equal(t, []string{"base"}, source.refreshed)

	rec = do(t, server, "/api/supply?chain=polygon")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown chain")
}

func TestWalletAPI(t *testing.T) {
	server := web.NewServer(":0", config.DefaultWallet(), newSource(), nil)

	rec := do(t, server, "/api/wallet")
	require.Equal(t, http.StatusOK, rec.Code)
	var options struct {
		AppName   string `json:"appName"`
		ProjectID string `json:"projectId"`
		SSR       bool   `json:"ssr"`
		Chains    []struct {
			Key string `json:"key"`
			ID  uint64 `json:"id"`
		} `json:"chains"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	require.Equal(t, "sherpas-supply", options.AppName)
	require.Equal(t, "9c7d72159a8c34139d1ec23b00c65536", options.ProjectID)
	require.True(t, options.SSR)
	require.Len(t, options.Chains, 4)
	require.Equal(t, "sepolia", options.Chains[0].Key)
	require.Equal(t, uint64(84532), options.Chains[3].ID)
}

func TestHistoryAPI(t *testing.T) {
	rec := do(t, web.NewServer(":0", config.DefaultWallet(), newSource(), nil), "/api/supply/history")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	history := &mockHistory{}
	server := web.NewServer(":0", config.DefaultWallet(), newSource(), history)
	rec = do(t, server, "/api/supply/history?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"value":"old"`)
	require.Equal(t, 5, history.limit)

	rec = do(t, server, "/api/supply/history?limit=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	history.err = errors.New("db down")
	rec = do(t, server, "/api/supply/history")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	server := web.NewServer(":0", config.DefaultWallet(), newSource(), nil)
	require.Equal(t, http.StatusOK, do(t, server, "/healthz").Code)
	require.Equal(t, http.StatusNotFound, do(t, server, "/missing").Code)
}
