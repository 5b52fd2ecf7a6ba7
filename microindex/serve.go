package microindex

import (
	"bufio"
	"context"
	"io"
)

// maxLineSize bounds a single request line. A 1024-float embedding in JSON
// fits comfortably.
const maxLineSize = 1 << 20

// Serve reads newline-delimited requests from r, applies them, and writes one
// response line per request to w. Undecodable lines yield an Error response.
// It returns at EOF, on a read or write error, or when ctx is done.
func (ix *Index) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			_ = bw.Flush()
			return err
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp Response
		if req, err := DecodeRequest(line); err != nil {
			ix.logger.Warn("microindex: bad request", "error", err)
			resp = Error{Message: err.Error()}
		} else {
			resp = ix.Handle(req)
		}

		out, err := EncodeResponse(resp)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(out, '\n')); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		_ = bw.Flush()
		return err
	}
	return bw.Flush()
}
