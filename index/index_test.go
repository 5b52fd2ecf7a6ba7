package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/internal/envelope"
	vfs "github.com/weave-logic-ai/vecmem/internal/fs"
	"github.com/weave-logic-ai/vecmem/metrics"
	"github.com/weave-logic-ai/vecmem/testutil"
)

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func fill(ix *Index, vectors [][]float32) {
	for i, v := range vectors {
		ix.Insert(fmt.Sprintf("e%d", i), v, map[string]any{"i": float64(i)})
	}
}

func TestQuery_Ordering(t *testing.T) {
	ix := New()
	ix.Insert("a", []float32{1, 0}, nil)
	ix.Insert("b", []float32{0.7, 0.7}, nil)
	ix.Insert("c", []float32{0, 1}, nil)

	res := ix.Query([]float32{1, 0}, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(res))
	assert.InDelta(t, 1.0, res[0].Score, 1e-6)
	assert.InDelta(t, 0.0, res[2].Score, 1e-6)

	assert.Equal(t, []string{"a"}, ids(ix.Query([]float32{1, 0}, 1)))
}

func TestQuery_Empty(t *testing.T) {
	ix := New()
	assert.Empty(t, ix.Query([]float32{1}, 5))

	ix.Insert("a", []float32{1}, nil)
	assert.Empty(t, ix.Query([]float32{1}, 0))
	assert.Empty(t, ix.Query([]float32{1}, -1))
}

func TestQuery_SelfTopOne(t *testing.T) {
	for _, n := range []int{5, SmallThreshold - 1, SmallThreshold, 100, 600} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			data := testutil.NewRNG(int64(n)).UnitVectors(n, 16)
			ix := New()
			fill(ix, data)

			for _, i := range []int{0, n / 2, n - 1} {
				res := ix.Query(data[i], 1)
				require.Len(t, res, 1)
				assert.Equal(t, fmt.Sprintf("e%d", i), res[0].ID)
				assert.InDelta(t, 1.0, res[0].Score, 1e-5)
				assert.Equal(t, map[string]any{"i": float64(i)}, res[0].Metadata)
			}
			assert.Equal(t, n >= SmallThreshold, ix.GraphBuilt())
		})
	}
}

func TestQuery_GraphMatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(77)
	data := rng.ClusteredVectors(800, 24, 8, 0.15)
	ix := New(WithEFSearch(128))
	fill(ix, data)

	const k = 10
	var total float64
	queries := rng.UnitVectors(30, 24)
	for _, q := range queries {
		var truth []string
		for _, i := range testutil.ExactTopK(q, data, k) {
			truth = append(truth, fmt.Sprintf("e%d", i))
		}
		res := ix.Query(q, k)
		require.Len(t, res, k)
		for i := 1; i < len(res); i++ {
			assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
		}
		total += testutil.Recall(truth, ids(res))
	}
	assert.GreaterOrEqual(t, total/float64(len(queries)), 0.9)
}

func TestInsert_Upsert(t *testing.T) {
	for _, n := range []int{3, 50} {
		ix := New()
		fill(ix, testutil.NewRNG(1).UnitVectors(n, 8))
		before := ix.Len()

		ix.Insert("e1", []float32{1, 0, 0, 0, 0, 0, 0, 0}, "replaced")
		assert.Equal(t, before, ix.Len())

		e, ok := ix.Get("e1")
		require.True(t, ok)
		assert.Equal(t, "replaced", e.Metadata)
		assert.Equal(t, float32(1), e.Embedding[0])

		res := ix.Query([]float32{1, 0, 0, 0, 0, 0, 0, 0}, 1)
		require.Len(t, res, 1)
		assert.Equal(t, "e1", res[0].ID)
		assert.Equal(t, "replaced", res[0].Metadata)
	}
}

func TestInsert_ClonesEmbedding(t *testing.T) {
	ix := New()
	v := []float32{1, 2}
	ix.Insert("x", v, nil)
	v[0] = 9
	e, _ := ix.Get("x")
	assert.Equal(t, []float32{1, 2}, e.Embedding)

	entries := ix.Entries()
	entries[0].ID = "changed"
	_, ok := ix.Get("x")
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	data := testutil.NewRNG(2).UnitVectors(40, 8)
	ix := New()
	fill(ix, data)
	ix.Query(data[0], 1)
	require.True(t, ix.GraphBuilt())

	assert.True(t, ix.Delete("e0"))
	assert.False(t, ix.GraphBuilt())
	assert.False(t, ix.Delete("e0"))
	assert.Equal(t, 39, ix.Len())

	for _, r := range ix.Query(data[0], 10) {
		assert.NotEqual(t, "e0", r.ID)
	}
	_, ok := ix.Get("e0")
	assert.False(t, ok)
}

func TestRebuild_Lazy(t *testing.T) {
	collector := &metrics.BasicCollector{}
	ix := New(WithMetrics(collector))
	data := testutil.NewRNG(3).UnitVectors(64, 8)
	fill(ix, data)
	assert.Equal(t, int64(0), collector.GetStats().RebuildCount)

	ix.Query(data[0], 3)
	ix.Query(data[1], 3)
	assert.Equal(t, int64(1), collector.GetStats().RebuildCount)

	ix.Insert("x", data[2], nil)
	ix.Delete("e5")
	ix.Insert("y", data[3], nil)
	assert.Equal(t, int64(1), collector.GetStats().RebuildCount)

	ix.Query(data[0], 3)
	assert.Equal(t, int64(2), collector.GetStats().RebuildCount)

	st := collector.GetStats()
	assert.Equal(t, int64(66), st.InsertCount)
	assert.Equal(t, int64(3), st.QueryCount)
	assert.Equal(t, int64(1), st.DeleteCount)
}

func TestRebuild_LogsGraphShape(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ix := New(WithLogger(logger))
	fill(ix, testutil.NewRNG(4).UnitVectors(200, 8))
	ix.Query([]float32{1, 0, 0, 0, 0, 0, 0, 0}, 1)

	var rebuilt map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		if rec["msg"] == "index graph rebuilt" {
			rebuilt = rec
		}
	}
	require.NotNil(t, rebuilt)
	assert.Equal(t, float64(200), rebuilt["nodes"])
	assert.Equal(t, float64(DefaultM), rebuilt["m"])
	assert.Equal(t, float64(2*DefaultM), rebuilt["m0"])

	levels, ok := rebuilt["levels"].(map[string]any)
	require.True(t, ok)
	require.Len(t, levels, int(rebuilt["max_level"].(float64))+1)
	l0 := levels["l0"].(map[string]any)
	assert.Equal(t, float64(200), l0["nodes"])
	assert.Greater(t, l0["avg_connections"].(float64), float64(0))
}

func TestSaveLoad(t *testing.T) {
	tests := []struct {
		name string
		n    int
		opts []Option
	}{
		{"small plain", 10, nil},
		{"large plain", 80, nil},
		{"large msgpack zstd", 80, []Option{WithCodec(codec.Msgpack{}), WithCompression(envelope.CompressionZSTD)}},
		{"small lz4", 10, []Option{WithCompression(envelope.CompressionLZ4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", "index.json")
			data := testutil.NewRNG(4).UnitVectors(tt.n, 8)

			ix := New(append([]Option{WithEFSearch(42), WithEFConstruction(64)}, tt.opts...)...)
			fill(ix, data)
			require.NoError(t, ix.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.n, loaded.Len())
			assert.Equal(t, 42, loaded.EFSearch())
			assert.Equal(t, 64, loaded.EFConstruction())
			assert.Equal(t, tt.n >= SmallThreshold, loaded.GraphBuilt())

			assert.Equal(t, ix.Entries()[3].Embedding, loaded.Entries()[3].Embedding)
			res := loaded.Query(data[3], 1)
			require.Len(t, res, 1)
			assert.Equal(t, "e3", res[0].ID)
		})
	}
}

func TestSave_JSONShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	ix := New()
	ix.Insert("a", []float32{1, 0}, map[string]any{"k": "v"})
	require.NoError(t, ix.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(DefaultEFSearch), doc["ef_search"])
	assert.Equal(t, float64(DefaultEFConstruction), doc["ef_construction"])
	entry := doc["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "a", entry["id"])
	assert.Equal(t, []any{1.0, 0.0}, entry["embedding"])
	assert.Equal(t, map[string]any{"k": "v"}, entry["metadata"])

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, New().Save(empty))
	raw, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"entries":[]`)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	collector := &metrics.BasicCollector{}

	_, err := Load(filepath.Join(dir, "missing.json"), WithMetrics(collector))
	var ioe *IOError
	assert.ErrorAs(t, err, &ioe)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"entries": 5}`), 0o644))
	_, err = Load(bad, WithMetrics(collector))
	var de *DecodeError
	assert.ErrorAs(t, err, &de)

	assert.Equal(t, int64(2), collector.GetStats().PersistErrors)
}

func TestSave_IOError(t *testing.T) {
	faulty := vfs.NewFaultyFS(nil)
	faulty.AddRule("index.json", vfs.Fault{FailAfterBytes: -1, FailOnRename: true})
	ix := New(WithFileSystem(faulty))
	ix.Insert("a", []float32{1}, nil)

	err := ix.Save(filepath.Join(t.TempDir(), "index.json"))
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.ErrorIs(t, err, vfs.ErrInjected)
}
