package hls_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hlsget/internal/hls"
	"hlsget/internal/logger"
	"hlsget/internal/models"
)

func segmentList(refs ...string) []models.Segment {
	segments := make([]models.Segment, len(refs))
	for i, ref := range refs {
		segments[i] = models.Segment{Reference: ref, Index: i}
	}
	return segments
}

func TestAcquireEmptyListFailsWithoutNetwork(t *testing.T) {
	acquirer := hls.NewAcquirer(newTestClient(), logger.Nop(), 1024, "")
	_, err := acquirer.Acquire(context.Background(), nil, "https://example.com/v")
	assert.ErrorIs(t, err, hls.ErrNoSegments)
}

func TestAcquireJoinsRelativeReferences(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		fmt.Fprint(w, "segment data")
	}))
	defer server.Close()

	acquirer := hls.NewAcquirer(newTestClient(), logger.Nop(), 1<<20, server.URL)
	area, err := acquirer.Acquire(context.Background(), segmentList("seg-1.ts", "seg-2.ts", "seg-3.ts"), server.URL+"/v")
	require.NoError(t, err)
	defer area.Destroy()

	assert.Equal(t, []string{"/v/seg-1.ts", "/v/seg-2.ts", "/v/seg-3.ts"}, paths)

	files, err := area.SegmentFiles()
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestAcquireResolvesRootedReferencesAgainstOrigin(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, "data")
	}))
	defer server.Close()

	acquirer := hls.NewAcquirer(newTestClient(), logger.Nop(), 1<<20, server.URL)
	area, err := acquirer.Acquire(context.Background(), segmentList("/deliveries/abc.ts"), "https://unrelated.example.com/v")
	require.NoError(t, err)
	defer area.Destroy()

	assert.Equal(t, "/deliveries/abc.ts", gotPath)
}

func TestAcquireToleratesSegmentFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v/seg-2.ts" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "data")
	}))
	defer server.Close()

	acquirer := hls.NewAcquirer(newTestClient(), logger.Nop(), 1<<20, server.URL)
	area, err := acquirer.Acquire(context.Background(), segmentList("seg-1.ts", "seg-2.ts", "seg-3.ts"), server.URL+"/v")
	require.NoError(t, err)
	defer area.Destroy()

	assert.FileExists(t, area.SlotPath(0))
	assert.NoFileExists(t, area.SlotPath(1))
	assert.FileExists(t, area.SlotPath(2))
}

func TestAcquireSkipsSegmentWithOversizedDeclaredLength(t *testing.T) {
	const limit = 1024
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v/big.ts" {
			w.Header().Set("Content-Length", fmt.Sprint(limit+1))
			w.Write(make([]byte, limit+1))
			return
		}
		fmt.Fprint(w, "small")
	}))
	defer server.Close()

	acquirer := hls.NewAcquirer(newTestClient(), logger.Nop(), limit, server.URL)
	area, err := acquirer.Acquire(context.Background(), segmentList("big.ts", "small.ts"), server.URL+"/v")
	require.NoError(t, err)
	defer area.Destroy()

	assert.NoFileExists(t, area.SlotPath(0))
	assert.FileExists(t, area.SlotPath(1))
}

func TestAcquireRemovesPartialFileOnMidStreamOverflow(t *testing.T) {
	const limit = 1024
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Chunked response: no declared length, so the ceiling can only be
		// enforced while streaming.
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		chunk := make([]byte, 512)
		for i := 0; i < 8; i++ {
			w.Write(chunk)
			flusher.Flush()
		}
	}))
	defer server.Close()

	acquirer := hls.NewAcquirer(newTestClient(), logger.Nop(), limit, server.URL)
	area, err := acquirer.Acquire(context.Background(), segmentList("grow.ts"), server.URL+"/v")
	require.NoError(t, err)
	defer area.Destroy()

	assert.NoFileExists(t, area.SlotPath(0))
	entries, err := os.ReadDir(area.Path())
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial file may remain")
}

func TestAcquireRetriesTransientFailures(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "finally")
	}))
	defer server.Close()

	acquirer := hls.NewAcquirer(hls.NewClient(logger.Nop(), nil, 5*time.Second), logger.Nop(), 1<<20, server.URL)
	area, err := acquirer.Acquire(context.Background(), segmentList("seg-1.ts"), server.URL+"/v")
	require.NoError(t, err)
	defer area.Destroy()

	assert.Equal(t, 3, attempts)
	data, err := os.ReadFile(area.SlotPath(0))
	require.NoError(t, err)
	assert.Equal(t, "finally", string(data))
}
