// internal/node/fakes_test.go
package node

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/events"
	"github.com/tamzrod/nodelink/internal/schema"
)

// ---- fake settings ----

type fakeSettings struct {
	mu     sync.Mutex
	target domain.Target
	ok     bool
	period time.Duration
	hose   int64
}

func newSettings() *fakeSettings {
	return &fakeSettings{
		target: domain.Target{Host: "127.0.0.1", Port: 9000},
		ok:     true,
		period: 5 * time.Millisecond,
		hose:   25,
	}
}

func (s *fakeSettings) Target() (domain.Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.ok
}

func (s *fakeSettings) PollPeriod() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *fakeSettings) HoseLength() int64 { return s.hose }

func (s *fakeSettings) set(t domain.Target, ok bool) {
	s.mu.Lock()
	s.target, s.ok = t, ok
	s.mu.Unlock()
}

// ---- fake dialer + session ----

// fakeDialer hands out fakeSessions and records every call made on them.
type fakeDialer struct {
	mu       sync.Mutex
	dials    int
	dialErr  error
	sessions []*fakeSession
	calls    []string
	setCalls [][]domain.ParamValue
	getCalls [][]int

	// behaviour shared by all sessions
	failSet  map[int]error // set_params call number (1-based, across sessions) -> error
	failGet  map[int]error
	failRPC  map[string]error
	readData func(n int) json.RawMessage
	version  json.RawMessage
	networks json.RawMessage
	nodeIP   json.RawMessage
	reads    int
}

func newDialer() *fakeDialer {
	return &fakeDialer{
		failSet: map[int]error{},
		failGet: map[int]error{},
		failRPC: map[string]error{},
		version: json.RawMessage(`7`),
		readData: func(int) json.RawMessage {
			return validTelemetry()
		},
	}
}

func (d *fakeDialer) dial(ctx context.Context, t domain.Target) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	s := &fakeSession{d: d, target: t, connected: true}
	d.sessions = append(d.sessions, s)
	return s, nil
}

func (d *fakeDialer) count(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) session(i int) *fakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[i]
}

type fakeSession struct {
	d         *fakeDialer
	target    domain.Target
	connected bool
	closes    int
}

func (s *fakeSession) record(method string) error {
	s.d.calls = append(s.d.calls, method)
	return s.d.failRPC[method]
}

func (s *fakeSession) Connected() bool {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.connected
}

func (s *fakeSession) Close() error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.connected = false
	s.closes++
	return nil
}

func (s *fakeSession) closeCount() int {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.closes
}

func (s *fakeSession) Ping(ctx context.Context) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.record("ping")
}

func (s *fakeSession) GetVersion(ctx context.Context) (json.RawMessage, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.d.version, s.record("get_version")
}

func (s *fakeSession) ReadData(ctx context.Context) (json.RawMessage, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.record("read_data"); err != nil {
		return nil, err
	}
	s.d.reads++
	return s.d.readData(s.d.reads), nil
}

func (s *fakeSession) ListNetworks(ctx context.Context) (json.RawMessage, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.d.networks, s.record("list_networks")
}

func (s *fakeSession) GetNodeIP(ctx context.Context) (json.RawMessage, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.d.nodeIP, s.record("get_node_ip")
}

func (s *fakeSession) SelectNetwork(ctx context.Context, args domain.SelectNetworkArgs) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.record("select_network")
}

func (s *fakeSession) SetParams(ctx context.Context, values []domain.ParamValue) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.record("set_params"); err != nil {
		return err
	}
	s.d.setCalls = append(s.d.setCalls, append([]domain.ParamValue(nil), values...))
	if err := s.d.failSet[len(s.d.setCalls)]; err != nil {
		s.connected = false
		return err
	}
	return nil
}

func (s *fakeSession) GetParams(ctx context.Context, ids []int) ([]domain.ParamValue, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if err := s.record("get_params"); err != nil {
		return nil, err
	}
	s.d.getCalls = append(s.d.getCalls, append([]int(nil), ids...))
	if err := s.d.failGet[len(s.d.getCalls)]; err != nil {
		return nil, err
	}
	out := make([]domain.ParamValue, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.PV(id, int64(id)*2))
	}
	return out, nil
}

// ---- fake event sink ----

type recorder struct {
	ch chan events.Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan events.Event, 32)}
}

func (r *recorder) Emit(name events.Name, value any) {
	r.ch <- events.Event{Name: name, Value: value, At: time.Now()}
}

func (r *recorder) next(t *testing.T) events.Event {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return events.Event{}
	}
}

// ---- helpers ----

var errTransport = errors.New("connection reset")

func validTelemetry() json.RawMessage {
	m := make(map[string]any, len(schema.Telemetry.Rules))
	for _, r := range schema.Telemetry.Rules {
		switch r.Kind {
		case schema.Integer:
			m[r.Key] = 0
		case schema.Number:
			m[r.Key] = 2.5
		case schema.IntegerArray:
			m[r.Key] = []int{}
		}
	}
	b, _ := json.Marshal(m)
	return b
}

func newClient(t *testing.T, s *fakeSettings, d *fakeDialer, opts ...Option) *Client {
	t.Helper()
	c := New(s, d.dial, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
