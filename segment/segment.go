package segment

import (
	"fmt"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/weave-logic-ai/vecmem/witness"
)

// FormatVersion is the newest segment file version this package reads and
// the version it writes.
const FormatVersion uint32 = 1

// FileExt is the file name suffix of segment files.
const FileExt = ".seg.json"

// SegmentType classifies a memory segment.
type SegmentType uint8

const (
	TypeVector SegmentType = iota
	TypeText
	TypePolicy
)

func (t SegmentType) String() string {
	switch t {
	case TypeVector:
		return "vector"
	case TypeText:
		return "text"
	case TypePolicy:
		return "policy"
	default:
		return fmt.Sprintf("SegmentType(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t SegmentType) MarshalText() ([]byte, error) {
	switch t {
	case TypeVector, TypeText, TypePolicy:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("segment: invalid segment type %d", uint8(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SegmentType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "vector":
		*t = TypeVector
	case "text":
		*t = TypeText
	case "policy":
		*t = TypePolicy
	default:
		return fmt.Errorf("segment: unknown segment type %q", text)
	}
	return nil
}

// MemorySegment is one persisted memory record.
type MemorySegment struct {
	ID           string      `json:"id"`
	SegmentType  SegmentType `json:"segment_type"`
	Namespace    string      `json:"namespace"`
	Embedding    []float32   `json:"embedding"`
	Text         string      `json:"text"`
	Metadata     any         `json:"metadata"`
	Tags         []string    `json:"tags"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Dimension    int         `json:"dimension"`
	EmbedderName string      `json:"embedder_name"`
}

// Clone returns a copy that shares no slices with s. Metadata is shared.
func (s MemorySegment) Clone() MemorySegment {
	s.Embedding = slices.Clone(s.Embedding)
	s.Tags = slices.Clone(s.Tags)
	return s
}

// MakeSegment builds a segment stamped with the current time. It is a vector
// segment when embedding is non-empty and a text segment otherwise.
func MakeSegment(id, namespace string, embedding []float32, text string, metadata any, tags []string, embedder string) MemorySegment {
	typ := TypeText
	if len(embedding) > 0 {
		typ = TypeVector
	}
	now := time.Now().UTC()
	return MemorySegment{
		ID:           id,
		SegmentType:  typ,
		Namespace:    namespace,
		Embedding:    slices.Clone(embedding),
		Text:         text,
		Metadata:     metadata,
		Tags:         slices.Clone(tags),
		CreatedAt:    now,
		UpdatedAt:    now,
		Dimension:    len(embedding),
		EmbedderName: embedder,
	}
}

// NewID returns a new lexicographically sortable segment id.
func NewID() string {
	return ulid.Make().String()
}

// Header describes a segment file.
type Header struct {
	Version      uint32    `json:"version"`
	AgentID      string    `json:"agent_id"`
	Namespace    string    `json:"namespace"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
	SegmentCount int       `json:"segment_count"`
	Dimension    int       `json:"dimension"`
	EmbedderName string    `json:"embedder_name"`
}

// File is a complete segment file.
type File struct {
	Header       Header
	Segments     []MemorySegment
	WitnessChain *witness.Chain
}

// wireFile is the serialized form of File.
type wireFile struct {
	Header       Header             `json:"header"`
	Segments     []MemorySegment    `json:"segments"`
	WitnessChain *[]witness.Segment `json:"witness_chain,omitempty"`
}

func (f *File) wire() wireFile {
	w := wireFile{Header: f.Header, Segments: f.Segments}
	if w.Segments == nil {
		w.Segments = []MemorySegment{}
	}
	if f.WitnessChain != nil {
		segs := f.WitnessChain.Segments()
		if segs == nil {
			segs = []witness.Segment{}
		}
		w.WitnessChain = &segs
	}
	return w
}

func fromWire(w wireFile) *File {
	f := &File{Header: w.Header, Segments: w.Segments}
	if w.WitnessChain != nil {
		f.WitnessChain = witness.FromSegments(*w.WitnessChain)
	}
	return f
}

// Builder accumulates the contents of a segment file.
type Builder struct {
	agentID      string
	namespace    string
	dimension    int
	embedderName string
	segments     []MemorySegment
	chain        *witness.Chain
	now          func() time.Time
}

// NewBuilder starts a file for one agent namespace.
func NewBuilder(agentID, namespace string) *Builder {
	return &Builder{agentID: agentID, namespace: namespace, now: time.Now}
}

// Dimension sets the embedding dimension recorded in the header.
func (b *Builder) Dimension(d int) *Builder {
	b.dimension = d
	return b
}

// EmbedderName sets the embedder name recorded in the header.
func (b *Builder) EmbedderName(name string) *Builder {
	b.embedderName = name
	return b
}

// Add appends a copy of seg.
func (b *Builder) Add(seg MemorySegment) *Builder {
	b.segments = append(b.segments, seg.Clone())
	return b
}

// AddAll appends copies of segs.
func (b *Builder) AddAll(segs []MemorySegment) *Builder {
	for _, s := range segs {
		b.Add(s)
	}
	return b
}

// WitnessChain embeds a copy of c.
func (b *Builder) WitnessChain(c *witness.Chain) *Builder {
	b.chain = c.Clone()
	return b
}

// Build stamps the header and returns the file.
func (b *Builder) Build() *File {
	now := b.now().UTC()
	return &File{
		Header: Header{
			Version:      FormatVersion,
			AgentID:      b.agentID,
			Namespace:    b.namespace,
			CreatedAt:    now,
			ModifiedAt:   now,
			SegmentCount: len(b.segments),
			Dimension:    b.dimension,
			EmbedderName: b.embedderName,
		},
		Segments:     slices.Clone(b.segments),
		WitnessChain: b.chain.Clone(),
	}
}
