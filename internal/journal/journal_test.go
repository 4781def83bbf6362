// internal/journal/journal_test.go
package journal

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/events"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return &DB{raw}, mock
}

// drain runs the writer over whatever is already queued.
func drain(w *Writer) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS telemetry").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS events").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrate_Error(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS telemetry").WillReturnError(errors.New("disk full"))

	if err := Migrate(db); err == nil {
		t.Fatalf("expected migrate error")
	}
}

func TestWriter_TelemetryAndEvents(t *testing.T) {
	db, mock := newMock(t)
	at := time.UnixMilli(1_700_000_000_123)

	mock.ExpectExec(regexp.QuoteMeta(insertTelemetry)).
		WithArgs(at.UnixMilli(), `{"arc_on":1,"current":42.5}`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertEvent)).
		WithArgs(at.UnixMilli(), "pong_received", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertEvent)).
		WithArgs(at.UnixMilli(), "error", `"Gateway cannot be empty."`).
		WillReturnResult(sqlmock.NewResult(2, 1))

	w := NewWriter(db, 8, nil)
	w.Telemetry(domain.Record{"current": 42.5, "arc_on": 1}, at)
	w.Event(events.Event{Name: events.PongReceived, At: at})
	w.Event(events.Event{Name: events.Error, Value: "Gateway cannot be empty.", At: at})

	drain(w)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWriter_DropsWhenFull(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(insertEvent)).WillReturnResult(sqlmock.NewResult(1, 1))

	w := NewWriter(db, 1, nil)
	w.Event(events.Event{Name: events.SentParamList, At: time.Now()})
	w.Event(events.Event{Name: events.SentParamList, At: time.Now()})

	if w.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", w.Dropped())
	}

	drain(w)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWriter_InsertFailureIsLogged(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(insertTelemetry)).WillReturnError(errors.New("locked"))

	core, logs := observer.New(zap.WarnLevel)
	w := NewWriter(db, 4, zap.New(core))
	w.Telemetry(domain.Record{"x": 1}, time.Now())

	drain(w)

	if n := logs.FilterMessage("journal: insert failed").Len(); n != 1 {
		t.Fatalf("expected 1 warning, got %d", n)
	}
}

func TestRecentEvents(t *testing.T) {
	db, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"at_ms", "name", "value"}).
		AddRow(int64(2000), "error", nil).
		AddRow(int64(1000), "got_process_id", "11")
	mock.ExpectQuery(regexp.QuoteMeta(selectEvents)).WithArgs(10).WillReturnRows(rows)

	got, err := db.RecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Name != "error" || got[0].Value.Valid {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].Value.String != "11" || !got[1].At.Equal(time.UnixMilli(1000)) {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}
