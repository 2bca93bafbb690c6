package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustQuantity(t *testing.T) {
	var gotPath, gotDelta, gotMethod string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotDelta = r.URL.Query().Get("delta")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(ts.URL + "/api/v1/products")
	require.NoError(t, client.AdjustQuantity(context.Background(), "prod-42", -3))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/products/prod-42/quantity", gotPath)
	assert.Equal(t, "-3", gotDelta)
}

func TestAdjustQuantityServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of stock", http.StatusConflict)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	err := client.AdjustQuantity(context.Background(), "prod-42", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestAdjustQuantityRetriesTransportFailures(t *testing.T) {
	var attempts int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusOK)
	}))
	// Point the client at a closed listener so every attempt fails.
	addr := ts.URL
	ts.Close()

	client := NewClient(addr)
	err := client.AdjustQuantity(context.Background(), "prod-42", -1)
	require.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&attempts))
}
