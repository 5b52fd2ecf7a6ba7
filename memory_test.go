package vecmem

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/internal/envelope"
	"github.com/weave-logic-ai/vecmem/metrics"
	"github.com/weave-logic-ai/vecmem/segment"
	"github.com/weave-logic-ai/vecmem/testutil"
	"github.com/weave-logic-ai/vecmem/witness"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func open(t *testing.T, dir string, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), dir, "agent-1", "notes", append([]Option{WithClock(fixedClock())}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestStore_RememberRecallForget(t *testing.T) {
	ctx := context.Background()
	s := open(t, t.TempDir())
	defer s.Close()

	a, err := s.Remember(ctx, "east", []float32{1, 0}, map[string]any{"k": "a"}, []string{"x"})
	require.NoError(t, err)
	b, err := s.Remember(ctx, "diagonal", []float32{0.7, 0.7}, nil, nil)
	require.NoError(t, err)
	_, err = s.Remember(ctx, "note without vector", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Dimension())

	hits, err := s.Recall(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, a, hits[0].ID)
	assert.Equal(t, "east", hits[0].Text)
	assert.Equal(t, []string{"x"}, hits[0].Tags)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, b, hits[1].ID)

	require.NoError(t, s.Forget(ctx, a))
	assert.ErrorIs(t, s.Forget(ctx, a), ErrNotFound)
	_, err = s.Get(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)

	hits, err = s.Recall(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, b, hits[0].ID)

	chain := s.WitnessChain()
	require.Equal(t, 4, chain.Len())
	last, _ := chain.At(3)
	assert.Equal(t, witness.Delete, last.Operation)
	assert.Equal(t, witness.HashData([]byte(a)), last.DataHash)
	assert.NoError(t, s.Verify())
}

func TestStore_PutUpdates(t *testing.T) {
	ctx := context.Background()
	s := open(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.Put(ctx, "m1", "first", []float32{1, 0}, nil, nil))
	before, err := s.Get(ctx, "m1")
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "m1", "second", []float32{0, 1}, nil, nil))
	assert.Equal(t, 1, s.Len())

	after, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "second", after.Text)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	hits, err := s.Recall(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "m1", hits[0].ID)

	ops := []witness.Operation{}
	for _, seg := range s.WitnessChain().Segments() {
		ops = append(ops, seg.Operation)
	}
	assert.Equal(t, []witness.Operation{witness.Store, witness.Update}, ops)

	// dropping the embedding removes it from recall
	require.NoError(t, s.Put(ctx, "m1", "text only", nil, nil, nil))
	hits, err = s.Recall(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_ArgumentErrors(t *testing.T) {
	ctx := context.Background()
	s := open(t, t.TempDir())
	defer s.Close()

	require.NoError(t, s.Put(ctx, "m1", "", []float32{1, 0, 0}, nil, nil))

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, s.Put(ctx, "m2", "", []float32{1, 0}, nil, nil), &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.Equal(t, 1, s.Len())

	_, err := s.Recall(ctx, []float32{1}, 1)
	require.ErrorAs(t, err, &dm)

	_, err = s.Recall(ctx, []float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Remember(canceled, "", []float32{1, 0, 0}, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = Open(canceled, t.TempDir(), "a", "n")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_FlushAndReopen(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"plain json", nil},
		{"msgpack zstd", []Option{WithCodec(codec.Msgpack{}), WithCompression(envelope.CompressionZSTD)}},
		{"go-json lz4", []Option{WithCodec(codec.GoJSON{}), WithCompression(envelope.CompressionLZ4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			vectors := testutil.NewRNG(5).UnitVectors(60, 12)

			s := open(t, dir, append([]Option{WithEmbedderName("test-embedder")}, tt.opts...)...)
			ids := make([]string, len(vectors))
			for i, v := range vectors {
				id, err := s.Remember(ctx, "memory", v, nil, []string{"t"})
				require.NoError(t, err)
				ids[i] = id
			}
			require.NoError(t, s.Forget(ctx, ids[0]))
			require.NoError(t, s.Flush(ctx))
			require.NoError(t, s.Close())

			_, err := s.Recall(ctx, vectors[1], 1)
			assert.ErrorIs(t, err, ErrClosed)
			assert.NoError(t, s.Close())

			f, err := segment.ReadVerified(filepath.Join(dir, "notes.seg.json"))
			require.NoError(t, err)
			assert.Equal(t, 59, f.Header.SegmentCount)
			assert.Equal(t, 12, f.Header.Dimension)
			assert.Equal(t, "test-embedder", f.Header.EmbedderName)
			assert.Equal(t, "agent-1", f.Header.AgentID)
			assert.Equal(t, 61, f.WitnessChain.Len())

			re := open(t, dir, tt.opts...)
			defer re.Close()
			assert.Equal(t, 59, re.Len())
			assert.Equal(t, 12, re.Dimension())
			assert.NoError(t, re.Verify())

			for i := 1; i < len(vectors); i += 7 {
				hits, err := re.Recall(ctx, vectors[i], 1)
				require.NoError(t, err)
				require.Len(t, hits, 1)
				assert.Equal(t, ids[i], hits[0].ID)
			}
			_, err = re.Get(ctx, ids[0])
			assert.ErrorIs(t, err, ErrNotFound)

			// the reopened chain continues from the persisted tip
			_, err = re.Remember(ctx, "more", vectors[0], nil, nil)
			require.NoError(t, err)
			assert.Equal(t, 62, re.WitnessChain().Len())
			assert.NoError(t, re.Verify())
		})
	}
}

func TestStore_CloseFlushes(t *testing.T) {
	dir := t.TempDir()
	s := open(t, dir)
	_, err := s.Remember(context.Background(), "kept", []float32{1, 0}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	re := open(t, dir)
	defer re.Close()
	assert.Equal(t, 1, re.Len())
}

func TestOpen_TamperedFile(t *testing.T) {
	dir := t.TempDir()
	s := open(t, dir)
	for _, text := range []string{"a", "b", "c"} {
		_, err := s.Remember(context.Background(), text, []float32{1, 0}, nil, nil)
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	path := s.Path()
	rewrite(t, path, func(doc map[string]any) {
		chain := doc["witness_chain"].([]any)
		seg := chain[1].(map[string]any)
		hash := seg["data_hash"].([]any)
		hash[0] = float64(int(hash[0].(float64)) ^ 0xff)
	})

	_, err := Open(context.Background(), dir, "agent-1", "notes")
	require.ErrorIs(t, err, ErrTampered)

	var corrupted *witness.ChainCorruptedError
	require.ErrorAs(t, err, &corrupted)
	assert.Equal(t, 1, corrupted.Index)
}

func TestOpen_UnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	s := open(t, dir)
	require.NoError(t, s.Put(context.Background(), "m", "x", nil, nil, nil))
	require.NoError(t, s.Close())

	rewrite(t, s.Path(), func(doc map[string]any) {
		doc["header"].(map[string]any)["version"] = float64(segment.FormatVersion + 1)
	})

	_, err := Open(context.Background(), dir, "agent-1", "notes")
	var uv *ErrUnsupportedVersion
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, segment.FormatVersion+1, uv.Version)

	var cause *segment.UnsupportedVersionError
	assert.True(t, errors.As(err, &cause))
}

func TestListNamespaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, ns := range []string{"beta", "alpha"} {
		s, err := Open(ctx, dir, "agent-1", ns)
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, "m", "x", nil, nil, nil))
		require.NoError(t, s.Close())
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.seg.json"), []byte("{"), 0o644))

	names, err := ListNamespaces(dir)
	assert.Error(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestStore_Metrics(t *testing.T) {
	ctx := context.Background()
	collector := &metrics.BasicCollector{}
	s := open(t, t.TempDir(), WithMetricsCollector(collector))

	for _, v := range testutil.NewRNG(9).UnitVectors(40, 4) {
		_, err := s.Remember(ctx, "", v, nil, nil)
		require.NoError(t, err)
	}
	_, err := s.Recall(ctx, []float32{1, 0, 0, 0}, 3)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	stats := collector.GetStats()
	assert.Equal(t, int64(40), stats.InsertCount)
	assert.Equal(t, int64(1), stats.QueryCount)
	assert.Equal(t, int64(1), stats.RebuildCount)
	assert.Equal(t, int64(1), stats.PersistCount)
	assert.Zero(t, stats.PersistErrors)
}

func rewrite(t *testing.T, path string, mutate func(map[string]any)) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	mutate(doc)
	data, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
