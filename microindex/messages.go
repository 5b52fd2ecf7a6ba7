package microindex

// Request is a message handled by an Index. The concrete types are Insert,
// Query, Delete and Count.
type Request interface {
	requestType() string
}

// Insert stores or replaces a vector.
type Insert struct {
	ID        uint32    `json:"id"`
	Embedding []float32 `json:"embedding"`
}

// Query asks for the K nearest vectors.
type Query struct {
	Embedding []float32 `json:"embedding"`
	K         int       `json:"k"`
}

// Delete removes a vector.
type Delete struct {
	ID uint32 `json:"id"`
}

// Count asks for the number of stored vectors.
type Count struct{}

func (Insert) requestType() string { return "insert" }
func (Query) requestType() string  { return "query" }
func (Delete) requestType() string { return "delete" }
func (Count) requestType() string  { return "count" }

// Response is the reply to a Request. The concrete types are Results, OK,
// Error and CountResult.
type Response interface {
	responseType() string
}

// Results answers a Query.
type Results struct {
	Hits []Hit `json:"hits"`
}

// OK acknowledges a successful Insert or Delete.
type OK struct{}

// Error reports a failed request.
type Error struct {
	Message string `json:"message"`
}

// CountResult answers a Count.
type CountResult struct {
	N int `json:"n"`
}

func (Results) responseType() string     { return "results" }
func (OK) responseType() string          { return "ok" }
func (Error) responseType() string       { return "error" }
func (CountResult) responseType() string { return "count" }

// Handle applies req to the index and returns the reply.
func (ix *Index) Handle(req Request) Response {
	switch r := req.(type) {
	case Insert:
		if err := ix.Insert(r.ID, r.Embedding); err != nil {
			return Error{Message: err.Error()}
		}
		return OK{}
	case Query:
		hits := ix.Query(r.Embedding, r.K)
		if hits == nil {
			hits = []Hit{}
		}
		return Results{Hits: hits}
	case Delete:
		if err := ix.Delete(r.ID); err != nil {
			return Error{Message: err.Error()}
		}
		return OK{}
	case Count:
		return CountResult{N: ix.Count()}
	default:
		return Error{Message: "microindex: unknown request"}
	}
}
