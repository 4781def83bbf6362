// internal/node/bulk_test.go
package node

import (
	"context"
	"errors"
	"testing"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/events"
)

func values(n int) []domain.ParamValue {
	out := make([]domain.ParamValue, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.PV(1000+i, int64(i)))
	}
	return out
}

func isBracket(call []domain.ParamValue, v int64) bool {
	if len(call) != len(LockParamIDs) {
		return false
	}
	for i, id := range LockParamIDs {
		if call[i].ID != id || call[i].Value != v {
			return false
		}
	}
	return true
}

func countBrackets(calls [][]domain.ParamValue, v int64) int {
	n := 0
	for _, c := range calls {
		if isBracket(c, v) {
			n++
		}
	}
	return n
}

func TestChunks(t *testing.T) {
	got := chunks(make([]int, 61), ChunkSize)
	if len(got) != 3 || len(got[0]) != 30 || len(got[1]) != 30 || len(got[2]) != 1 {
		t.Fatalf("unexpected chunking: %d chunks", len(got))
	}
	if chunks([]int{}, ChunkSize) != nil {
		t.Fatalf("expected no chunks for empty input")
	}
}

func TestGetParams_ChunkTransparency(t *testing.T) {
	d := newDialer()
	c := newClient(t, newSettings(), d)

	ids := make([]int, 0, 75)
	for i := 75; i > 0; i-- {
		ids = append(ids, i)
	}

	res, err := c.GetParams(context.Background(), ids)
	if err != nil {
		t.Fatalf("GetParams err=%v", err)
	}

	if len(d.getCalls) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(d.getCalls))
	}
	for i, want := range []int{30, 30, 15} {
		if len(d.getCalls[i]) != want {
			t.Fatalf("chunk %d: expected %d ids, got %d", i, want, len(d.getCalls[i]))
		}
	}

	if len(res) != len(ids) {
		t.Fatalf("expected %d values, got %d", len(ids), len(res))
	}
	for i, id := range ids {
		if res[i].ID != id {
			t.Fatalf("value %d: expected id %d, got %d", i, id, res[i].ID)
		}
	}
}

func TestGetParams_ChunkFailureDiscardsPartial(t *testing.T) {
	d := newDialer()
	d.failGet[2] = errTransport
	c := newClient(t, newSettings(), d)

	res, err := c.GetParams(context.Background(), make([]int, 45))
	if err == nil {
		t.Fatalf("expected error")
	}
	if res != nil {
		t.Fatalf("expected partial results discarded, got %d values", len(res))
	}
	if d.count("get_params") != 2 {
		t.Fatalf("expected abort after failing chunk, got %d calls", d.count("get_params"))
	}
}

func TestSetParams_LockBracketOnSuccess(t *testing.T) {
	d := newDialer()
	c := newClient(t, newSettings(), d)

	if err := c.SetParams(context.Background(), values(40), true); err != nil {
		t.Fatalf("SetParams err=%v", err)
	}

	// unlock, 30, 10, lock
	if len(d.setCalls) != 4 {
		t.Fatalf("expected 4 set_params calls, got %d", len(d.setCalls))
	}
	if !isBracket(d.setCalls[0], UnlockValue) {
		t.Fatalf("first write must unlock, got %+v", d.setCalls[0])
	}
	if !isBracket(d.setCalls[3], LockValue) {
		t.Fatalf("last write must lock, got %+v", d.setCalls[3])
	}
}

func TestSetParams_LockReassertedWhenPayloadFails(t *testing.T) {
	d := newDialer()
	d.failSet[3] = errTransport // second payload chunk
	c := newClient(t, newSettings(), d)

	err := c.SetParams(context.Background(), values(40), true)
	if !errors.Is(err, errTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	if got := countBrackets(d.setCalls, LockValue); got != 1 {
		t.Fatalf("expected lock written exactly once, got %d", got)
	}
	if !isBracket(d.setCalls[len(d.setCalls)-1], LockValue) {
		t.Fatalf("lock must be the last write")
	}
	if d.dialCount() != 2 {
		t.Fatalf("expected reconnect before lock re-assert, got %d dials", d.dialCount())
	}
}

func TestSetParams_FailedUnlockSkipsPayload(t *testing.T) {
	d := newDialer()
	d.failSet[1] = errTransport
	c := newClient(t, newSettings(), d)

	if err := c.SetParams(context.Background(), values(5), true); err == nil {
		t.Fatalf("expected error")
	}

	if len(d.setCalls) != 2 {
		t.Fatalf("expected unlock and lock only, got %d calls", len(d.setCalls))
	}
	if !isBracket(d.setCalls[1], LockValue) {
		t.Fatalf("expected lock re-assert, got %+v", d.setCalls[1])
	}
}

func TestSetParams_Unlocked(t *testing.T) {
	d := newDialer()
	c := newClient(t, newSettings(), d)

	if err := c.SetParams(context.Background(), values(3), false); err != nil {
		t.Fatalf("SetParams err=%v", err)
	}
	if len(d.setCalls) != 1 || countBrackets(d.setCalls, LockValue) != 0 {
		t.Fatalf("unlocked write must not touch the bracket: %+v", d.setCalls)
	}
}

func TestSetParamsStart_EmitsAfterLock(t *testing.T) {
	d := newDialer()
	d.failSet[2] = errTransport
	rec := newRecorder()
	c := newClient(t, newSettings(), d, WithSink(rec))

	c.SetParamsStart(values(10), true)

	if e := rec.next(t); e.Name != events.Error {
		t.Fatalf("expected error event, got %s", e.Name)
	}
	if e := rec.next(t); e.Name != events.SentParamList {
		t.Fatalf("expected sent_param_list, got %s", e.Name)
	}
	if got := countBrackets(d.setCalls, LockValue); got != 1 {
		t.Fatalf("expected lock once, got %d", got)
	}
}

func TestGetParamsStart_Events(t *testing.T) {
	d := newDialer()
	rec := newRecorder()
	c := newClient(t, newSettings(), d, WithSink(rec))

	c.GetParamsStart([]int{5, 6})
	e := rec.next(t)
	if e.Name != events.GotServiceData {
		t.Fatalf("expected got_service_data, got %s", e.Name)
	}
	if vals := e.Value.([]domain.ParamValue); len(vals) != 2 || vals[0].ID != 5 {
		t.Fatalf("unexpected payload: %+v", e.Value)
	}

	c.GetParamListStart([]int{7})
	if e := rec.next(t); e.Name != events.GotParamList {
		t.Fatalf("expected got_param_list, got %s", e.Name)
	}

	c.GetProcessIDStart()
	e = rec.next(t)
	if e.Name != events.GotProcessID || e.Value != int64(ProcessIDParamID*2) {
		t.Fatalf("unexpected process id event: %+v", e)
	}
}

func TestGetParamsStart_UnusableSession(t *testing.T) {
	s := newSettings()
	s.set(domain.Target{}, false)
	rec := newRecorder()
	c := newClient(t, s, newDialer(), WithSink(rec))

	c.GetParamsStart([]int{1})

	if e := rec.next(t); e.Name != events.Error {
		t.Fatalf("expected error event, got %s", e.Name)
	}
}
