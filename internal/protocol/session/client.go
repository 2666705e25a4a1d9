package session

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/coqctl/internal/coqtop"
	"github.com/danmuck/coqctl/internal/observability"
	"github.com/danmuck/coqctl/internal/protocol"
	"github.com/danmuck/coqctl/internal/protocol/call"
	"github.com/danmuck/coqctl/internal/protocol/response"
	"github.com/danmuck/coqctl/internal/protocol/transport"
	"github.com/danmuck/coqctl/internal/tools"
)

// Dialer starts one worker instance.
type Dialer func() (transport.Conn, error)

// Client is one session with one worker process.
type Client struct {
	id       string
	cfg      Config
	log      zerolog.Logger
	tr       *transport.Transport
	state    State
	stateID  protocol.StateID
	feedback []response.Feedback
	fault    error
	sleep    func(time.Duration)
}

// Connect locates the worker executable and opens a session on it.
func Connect(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	path, err := coqtop.Locate(tools.ExecRunner{}, cfg.Coqtop, os.Getenv("PATH"))
	if err != nil {
		return nil, err
	}
	args := coqtop.Args(cfg.Args)
	return Open(cfg, func() (transport.Conn, error) {
		return transport.Spawn(path, args, cfg.ReadChunkSize)
	})
}

// Open starts a worker through dial and waits for its first feedback. Startup
// timeouts kill the instance and retry up to cfg.MaxStartupAttempts times;
// any other startup error is returned at once.
func Open(cfg Config, dial Dialer) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	id := uuid.Must(uuid.NewV7()).String()
	c := &Client{
		id:    id,
		cfg:   cfg,
		log:   log.With().Str("session", id).Logger(),
		state: StateUninitialized,
		sleep: time.Sleep,
	}
	if err := c.startup(dial); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) startup(dial Dialer) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxStartupAttempts; attempt++ {
		if attempt > 1 {
			if d := c.cfg.Backoff.Delay(attempt-1, rng); d > 0 {
				c.sleep(d)
			}
		}
		tr, fb, err := c.start(dial)
		if err == nil {
			observability.RecordStartupAttempt(observability.StartupReady)
			tr.SetTimeout(c.cfg.Timeout)
			c.tr = tr
			c.advance(fb.StateID)
			c.log.Info().Str("state_id", string(fb.StateID)).Int("attempt", attempt).Msg("worker ready")
			return nil
		}
		if !errors.Is(err, transport.ErrTimeout) {
			observability.RecordStartupAttempt(observability.StartupError)
			c.transition(StateFaulted)
			c.fault = err
			return err
		}
		observability.RecordStartupAttempt(observability.StartupTimeout)
		c.log.Warn().Int("attempt", attempt).Dur("timeout", c.cfg.StartupTimeout).Msg("worker startup timed out; restarting")
		lastErr = err
	}
	c.transition(StateFaulted)
	c.fault = lastErr
	return fmt.Errorf("%w after %d attempts: %w", ErrStartupExhausted, c.cfg.MaxStartupAttempts, lastErr)
}

// start runs one spawn + wait-for-first-feedback attempt. On failure the
// instance is killed before returning.
func (c *Client) start(dial Dialer) (*transport.Transport, response.Feedback, error) {
	conn, err := dial()
	if err != nil {
		return nil, response.Feedback{}, err
	}
	c.transition(StateAwaitingFirstFeedback)
	tr := transport.New(conn, c.cfg.StartupTimeout)
	fb, err := tr.AwaitFeedback()
	if err != nil {
		if cerr := tr.Close(); cerr != nil {
			c.log.Debug().Err(cerr).Msg("close after failed startup")
		}
		c.transition(StateUninitialized)
		return nil, response.Feedback{}, err
	}
	return tr, fb, nil
}

// transition moves to next and keeps the state id. advance is the only path
// that replaces it.
func (c *Client) transition(next State) {
	c.setState(next, c.stateID)
}

// advance enters Ready at id.
func (c *Client) advance(id protocol.StateID) {
	c.setState(StateReady, id)
}

func (c *Client) setState(next State, id protocol.StateID) {
	prev := c.state
	c.state = next
	c.stateID = id
	c.log.Trace().Stringer("from", prev).Stringer("to", next).Str("state_id", string(c.stateID)).Msg("session transition")
}

// Call writes cmd, reads until its outcome and returns the outcome payload.
// Feedback read along the way is kept in Feedback().
func (c *Client) Call(cmd call.Command) (protocol.Value, error) {
	switch c.state {
	case StateReady:
	case StateFaulted:
		return nil, fmt.Errorf("%w: %w", ErrFaulted, c.fault)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotReady, c.state)
	}
	raw, err := call.Marshal(cmd, c.stateID)
	if err != nil {
		return nil, err
	}

	name := cmd.Name()
	c.transition(StateAwaitingOutcome)
	c.log.Debug().Str("command", name).Str("state_id", string(c.stateID)).Msg("call issued")
	started := time.Now()

	if err := c.tr.Write(raw); err != nil {
		return nil, c.faultWith(name, started, err)
	}
	rs, err := c.tr.ReadUntil(response.HasOutcome)
	if err != nil {
		return nil, c.faultWith(name, started, err)
	}
	c.feedback = response.Feedbacks(rs)
	out, _ := response.FirstOutcome(rs)

	if !out.Good() {
		c.transition(StateReady)
		observability.RecordCall(name, observability.OutcomeFail, time.Since(started))
		c.log.Info().Str("command", name).Str("error", out.Error.String()).Msg("call failed")
		return nil, &CallFailure{Command: name, Info: *out.Error}
	}

	if adv, ok := cmd.(call.Advancer); ok {
		next, err := adv.NextState(out.Data)
		if err != nil {
			return nil, c.faultWith(name, started, err)
		}
		c.advance(next)
	} else {
		c.transition(StateReady)
	}
	observability.RecordCall(name, observability.OutcomeGood, time.Since(started))
	c.log.Debug().Str("command", name).Str("state_id", string(c.stateID)).Msg("call succeeded")
	return out.Data, nil
}

func (c *Client) faultWith(command string, started time.Time, err error) error {
	observability.RecordCall(command, observability.OutcomeError, time.Since(started))
	c.fault = err
	c.transition(StateFaulted)
	c.log.Error().Err(err).Str("command", command).Msg("session faulted")
	return err
}

// Add submits a source fragment and returns the new state id.
func (c *Client) Add(source string) (protocol.StateID, error) {
	if _, err := c.Call(call.Add{Source: source}); err != nil {
		return c.stateID, err
	}
	return c.stateID, nil
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) State() State {
	return c.state
}

func (c *Client) StateID() protocol.StateID {
	return c.stateID
}

// Feedback returns the feedback read during the last call.
func (c *Client) Feedback() []response.Feedback {
	out := make([]response.Feedback, len(c.feedback))
	copy(out, c.feedback)
	return out
}

// Close kills the worker. The client cannot be used afterwards.
func (c *Client) Close() error {
	if c.state == StateClosed {
		return nil
	}
	c.transition(StateClosed)
	if c.tr == nil {
		return nil
	}
	return c.tr.Close()
}
