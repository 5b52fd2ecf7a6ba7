package witness

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Hash is a SHA-256 digest. It serializes as a JSON array of 32 numbers.
type Hash [sha256.Size]byte

// Genesis is the previous hash of the first segment of every chain.
var Genesis Hash

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether h equals Genesis.
func (h Hash) IsZero() bool { return h == Genesis }

// HashData returns the SHA-256 digest of data.
func HashData(data []byte) Hash { return sha256.Sum256(data) }

// Operation is the kind of mutation a segment records.
type Operation uint8

const (
	Store Operation = iota
	Update
	Delete
)

func (o Operation) String() string {
	switch o {
	case Store:
		return "store"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Operation) MarshalText() ([]byte, error) {
	switch o {
	case Store, Update, Delete:
		return []byte(o.String()), nil
	default:
		return nil, fmt.Errorf("witness: invalid operation %d", uint8(o))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "store":
		*o = Store
	case "update":
		*o = Update
	case "delete":
		*o = Delete
	default:
		return fmt.Errorf("witness: unknown operation %q", text)
	}
	return nil
}

// Segment is one entry of a Chain.
type Segment struct {
	SegmentID    uuid.UUID `json:"segment_id"`
	Timestamp    time.Time `json:"timestamp"`
	Operation    Operation `json:"operation"`
	DataHash     Hash      `json:"data_hash"`
	PreviousHash Hash      `json:"previous_hash"`
	SegmentHash  Hash      `json:"segment_hash"`
}

// ComputeHash returns the segment hash for the given fields. The timestamp
// contributes its UTC RFC3339 form, so sub-second precision is ignored.
func ComputeHash(id uuid.UUID, ts time.Time, op Operation, data, previous Hash) Hash {
	h := sha256.New()
	h.Write([]byte(id.String()))
	h.Write([]byte(ts.UTC().Format(time.RFC3339)))
	h.Write([]byte(op.String()))
	h.Write(data[:])
	h.Write(previous[:])

	var out Hash
	h.Sum(out[:0])
	return out
}

// ExpectedHash recomputes the segment hash from the segment's fields.
func (s Segment) ExpectedHash() Hash {
	return ComputeHash(s.SegmentID, s.Timestamp, s.Operation, s.DataHash, s.PreviousHash)
}
