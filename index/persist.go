package index

import (
	"time"

	vfs "github.com/weave-logic-ai/vecmem/internal/fs"
	"github.com/weave-logic-ai/vecmem/internal/snapshot"
)

// snapshotFile is the persisted form of an Index.
type snapshotFile struct {
	Entries        []Entry `json:"entries"`
	EFSearch       int     `json:"ef_search"`
	EFConstruction int     `json:"ef_construction"`
}

// Save writes the entries and tuning parameters to path atomically,
// creating parent directories.
func (ix *Index) Save(path string) (err error) {
	start := time.Now()
	var n int
	defer func() {
		ix.opts.metrics.RecordPersist("save", n, time.Since(start), err)
	}()

	entries := ix.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := snapshot.Encode(snapshotFile{
		Entries:        entries,
		EFSearch:       ix.opts.efSearch,
		EFConstruction: ix.opts.efConstruction,
	}, snapshot.Options{Codec: ix.opts.codec, Compression: ix.opts.compression})
	if err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	if err := vfs.WriteFileAtomic(ix.opts.fs, path, data, 0o644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	n = len(data)

	ix.opts.logger.Debug("index saved", "path", path, "entries", len(entries), "bytes", n)
	return nil
}

// Load reads an index written by Save. The tuning parameters stored in the
// file override WithEFSearch and WithEFConstruction. The graph is built
// eagerly when the index is past SmallThreshold.
func Load(path string, opts ...Option) (*Index, error) {
	ix := New(opts...)
	start := time.Now()

	data, err := vfs.ReadFile(ix.opts.fs, path)
	if err != nil {
		err = &IOError{Path: path, Err: err}
		ix.opts.metrics.RecordPersist("load", 0, time.Since(start), err)
		return nil, err
	}

	var snap snapshotFile
	if err := snapshot.Decode(data, &snap); err != nil {
		err = &DecodeError{Path: path, Err: err}
		ix.opts.metrics.RecordPersist("load", len(data), time.Since(start), err)
		return nil, err
	}

	if snap.EFSearch > 0 {
		ix.opts.efSearch = snap.EFSearch
	}
	if snap.EFConstruction > 0 {
		ix.opts.efConstruction = snap.EFConstruction
	}
	ix.entries = snap.Entries
	ix.dirty = true
	if len(ix.entries) >= SmallThreshold {
		ix.rebuild()
	}

	ix.opts.metrics.RecordPersist("load", len(data), time.Since(start), nil)
	ix.opts.logger.Debug("index loaded", "path", path, "entries", len(ix.entries), "graph", ix.GraphBuilt())
	return ix, nil
}
