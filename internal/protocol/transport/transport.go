package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/coqctl/internal/observability"
	"github.com/danmuck/coqctl/internal/protocol/response"
)

// Transport runs the accumulate-and-parse read loop over a Conn.
type Transport struct {
	conn    Conn
	timeout time.Duration
	buf     []byte
}

func New(conn Conn, timeout time.Duration) *Transport {
	return &Transport{conn: conn, timeout: timeout}
}

// SetTimeout switches the window used by subsequent Write and ReadChunk calls.
func (t *Transport) SetTimeout(d time.Duration) {
	t.timeout = d
}

func (t *Transport) Timeout() time.Duration {
	return t.timeout
}

func (t *Transport) Write(p []byte) error {
	if err := t.conn.Write(p, t.timeout); err != nil {
		return fmt.Errorf("write %d bytes: %w", len(p), err)
	}
	return nil
}

func (t *Transport) ReadChunk() ([]byte, error) {
	chunk, err := t.conn.ReadChunk(t.timeout)
	if err != nil {
		var perr *ProtocolError
		if errors.As(err, &perr) {
			observability.RecordReadChunk(observability.StreamDiagnostic, len(perr.Stderr))
			log.Warn().Str("stderr", perr.Stderr).Msg("worker wrote to diagnostic stream")
		}
		return nil, err
	}
	observability.RecordReadChunk(observability.StreamOutput, len(chunk))
	return chunk, nil
}

// ReadUntil reads chunks until the parsed buffer satisfies pred and returns
// every response in it. Truncated input keeps the loop going; any other
// transport or parse error ends it.
func (t *Transport) ReadUntil(pred func([]response.Response) bool) ([]response.Response, error) {
	for {
		chunk, err := t.ReadChunk()
		if err != nil {
			return nil, err
		}
		t.buf = append(t.buf, chunk...)

		rs, err := response.Parse(t.buf)
		if errors.Is(err, response.ErrNeedMoreData) {
			log.Trace().Int("buffered", len(t.buf)).Msg("partial fragment buffered")
			continue
		}
		if err != nil {
			return nil, err
		}
		if pred(rs) {
			t.buf = t.buf[:0]
			return rs, nil
		}
	}
}

// AwaitFeedback reads until the stream opens with a feedback message.
func (t *Transport) AwaitFeedback() (response.Feedback, error) {
	rs, err := t.ReadUntil(response.StartsWithFeedback)
	if err != nil {
		return response.Feedback{}, err
	}
	return rs[0].(response.Feedback), nil
}

// Buffered returns the number of bytes read but not yet consumed.
func (t *Transport) Buffered() int {
	return len(t.buf)
}

func (t *Transport) Close() error {
	t.buf = nil
	return t.conn.Close()
}
