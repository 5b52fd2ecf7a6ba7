package segment

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/weave-logic-ai/vecmem/codec"
	"github.com/weave-logic-ai/vecmem/internal/envelope"
	vfs "github.com/weave-logic-ai/vecmem/internal/fs"
	"github.com/weave-logic-ai/vecmem/internal/snapshot"
)

// Option configures reading and writing segment files.
type Option func(*options)

type options struct {
	fs          vfs.FileSystem
	codec       codec.Codec
	compression envelope.Compression
}

// WithFileSystem sets the file system.
func WithFileSystem(fsys vfs.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithCodec sets the codec used by Write. Readers detect the codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithCompression sets the envelope compression used by Write.
func WithCompression(c envelope.Compression) Option {
	return func(o *options) { o.compression = c }
}

func applyOptions(opts []Option) options {
	o := options{fs: vfs.Default, codec: codec.Default}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// FileName returns the conventional file name for a namespace.
func FileName(namespace string) string { return namespace + FileExt }

// Write serializes f to path atomically, creating parent directories.
func Write(path string, f *File, opts ...Option) error {
	o := applyOptions(opts)
	data, err := snapshot.Encode(f.wire(), snapshot.Options{Codec: o.codec, Compression: o.compression})
	if err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	if err := vfs.WriteFileAtomic(o.fs, path, data, 0o644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

// Read deserializes the file at path. Files with a header version newer
// than FormatVersion fail with *UnsupportedVersionError.
func Read(path string, opts ...Option) (*File, error) {
	o := applyOptions(opts)
	data, err := vfs.ReadFile(o.fs, path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	var probe struct {
		Header struct {
			Version uint32 `json:"version"`
		} `json:"header"`
	}
	if err := snapshot.Decode(data, &probe); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if probe.Header.Version > FormatVersion {
		return nil, &UnsupportedVersionError{Path: path, Version: probe.Header.Version, Supported: FormatVersion}
	}

	var w wireFile
	if err := snapshot.Decode(data, &w); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return fromWire(w), nil
}

// ReadVerified is Read followed by verification of the embedded witness
// chain, if any.
func ReadVerified(path string, opts ...Option) (*File, error) {
	f, err := Read(path, opts...)
	if err != nil {
		return nil, err
	}
	if f.WitnessChain != nil {
		if err := f.WitnessChain.VerifyDetailed(); err != nil {
			return nil, &WitnessInvalidError{Path: path, Err: err}
		}
	}
	return f, nil
}

// ScanDir reads every segment file in dir in name order. Files that fail to
// read are skipped and reported in the returned *multierror.Error; the
// readable files are returned either way.
func ScanDir(dir string, opts ...Option) ([]*File, error) {
	o := applyOptions(opts)
	entries, err := o.fs.ReadDir(dir)
	if err != nil {
		return nil, &IOError{Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), FileExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		files []*File
		errs  *multierror.Error
	)
	for _, name := range names {
		f, err := Read(filepath.Join(dir, name), opts...)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		files = append(files, f)
	}
	return files, errs.ErrorOrNil()
}
