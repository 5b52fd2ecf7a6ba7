package microindex

import (
	"fmt"

	"github.com/weave-logic-ai/vecmem/codec"
)

// envelope is the tagged wire form shared by requests and responses.
type envelope struct {
	Type      string    `json:"type"`
	ID        uint32    `json:"id,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	K         int       `json:"k,omitempty"`
	Hits      []Hit     `json:"hits,omitempty"`
	Message   string    `json:"message,omitempty"`
	N         int       `json:"n,omitempty"`
}

// EncodeRequest returns the JSON form of req, e.g. {"type":"count"}.
func EncodeRequest(req Request) ([]byte, error) {
	env := envelope{Type: req.requestType()}
	switch r := req.(type) {
	case Insert:
		env.ID, env.Embedding = r.ID, r.Embedding
	case Query:
		env.Embedding, env.K = r.Embedding, r.K
	case Delete:
		env.ID = r.ID
	}
	return codec.Default.Marshal(env)
}

// DecodeRequest parses a request produced by EncodeRequest.
func DecodeRequest(data []byte) (Request, error) {
	var env envelope
	if err := codec.Default.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("microindex: decode request: %w", err)
	}
	switch env.Type {
	case "insert":
		return Insert{ID: env.ID, Embedding: env.Embedding}, nil
	case "query":
		return Query{Embedding: env.Embedding, K: env.K}, nil
	case "delete":
		return Delete{ID: env.ID}, nil
	case "count":
		return Count{}, nil
	default:
		return nil, fmt.Errorf("microindex: unknown request type %q", env.Type)
	}
}

// EncodeResponse returns the JSON form of resp.
func EncodeResponse(resp Response) ([]byte, error) {
	env := envelope{Type: resp.responseType()}
	switch r := resp.(type) {
	case Results:
		hits := r.Hits
		if hits == nil {
			hits = []Hit{}
		}
		// hits and n are always present, even when empty or zero.
		return codec.Default.Marshal(struct {
			Type string `json:"type"`
			Hits []Hit  `json:"hits"`
		}{env.Type, hits})
	case Error:
		env.Message = r.Message
	case CountResult:
		return codec.Default.Marshal(struct {
			Type string `json:"type"`
			N    int    `json:"n"`
		}{env.Type, r.N})
	}
	return codec.Default.Marshal(env)
}

// DecodeResponse parses a response produced by EncodeResponse.
func DecodeResponse(data []byte) (Response, error) {
	var env envelope
	if err := codec.Default.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("microindex: decode response: %w", err)
	}
	switch env.Type {
	case "results":
		hits := env.Hits
		if hits == nil {
			hits = []Hit{}
		}
		return Results{Hits: hits}, nil
	case "ok":
		return OK{}, nil
	case "error":
		return Error{Message: env.Message}, nil
	case "count":
		return CountResult{N: env.N}, nil
	default:
		return nil, fmt.Errorf("microindex: unknown response type %q", env.Type)
	}
}
