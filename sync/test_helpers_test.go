package sync

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/daypulse/daypulse/core"
)

// fakeAdapter behaves like the sleep adapter in miniature: validity reads a
// positive "HR" field, normalization rejects empty payloads.
type fakeAdapter struct {
	id core.MetricID
}

func (a fakeAdapter) ID() core.MetricID {
	if a.id != "" {
		return a.id
	}
	return core.MetricSleep
}

func (a fakeAdapter) Normalize(src core.SourceRecord, targetDate string, _ core.NormalizePolicy) (core.NormalizedRecord, bool) {
	if len(src.Payload) == 0 {
		return core.NormalizedRecord{}, false
	}
	return core.NormalizedRecord{
		Metric: a.ID(),
		Date:   targetDate,
		Values: src.Payload,
	}, true
}

func (a fakeAdapter) BuildFields(rec core.NormalizedRecord) core.FieldSet {
	return core.FieldSet{
		"Date": core.DateField(rec.Date),
		"HR":   core.NumberField(52),
	}
}

func (a fakeAdapter) ValiditySignal(row core.SinkRow) bool {
	value, _ := row.Fields["HR"].(float64)
	return value > 0
}

func (a fakeAdapter) Icon(core.NormalizedRecord) *core.RecordIcon {
	return nil
}

type fakeTracker struct {
	mu      sync.Mutex
	records map[string]core.SourceRecord
	errs    map[string]error
	fetches []string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		records: map[string]core.SourceRecord{},
		errs:    map[string]error{},
	}
}

func (t *fakeTracker) put(date string, payload map[string]any) {
	t.records[date] = core.SourceRecord{Metric: core.MetricSleep, Date: date, Payload: payload}
}

func (t *fakeTracker) FetchDaily(_ context.Context, _ core.MetricID, date string) (core.SourceRecord, bool, error) {
	t.mu.Lock()
	t.fetches = append(t.fetches, date)
	t.mu.Unlock()
	if err := t.errs[date]; err != nil {
		return core.SourceRecord{}, false, err
	}
	rec, ok := t.records[date]
	return rec, ok, nil
}

func (t *fakeTracker) fetchedDates() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.fetches...)
}

type fakeStore struct {
	mu        sync.Mutex
	rows      []core.SinkRow
	pageSize  int
	queryErr  error
	createErr error
	updateErr error
	created   []core.CreateRecordInput
	updated   map[string]core.FieldSet
	queries   int
	nextID    int
}

func newFakeStore(rows ...core.SinkRow) *fakeStore {
	return &fakeStore{rows: rows, updated: map[string]core.FieldSet{}}
}

func (s *fakeStore) QueryByDateRange(_ context.Context, q core.SinkQuery) (core.SinkPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.queryErr != nil {
		return core.SinkPage{}, s.queryErr
	}

	size := s.pageSize
	if size <= 0 {
		size = q.PageSize
	}
	if size <= 0 {
		size = len(s.rows)
	}

	start := 0
	if q.Cursor != "" {
		parsed, err := strconv.Atoi(q.Cursor)
		if err != nil {
			return core.SinkPage{}, fmt.Errorf("bad cursor %q", q.Cursor)
		}
		start = parsed
	}
	end := start + size
	if end > len(s.rows) {
		end = len(s.rows)
	}
	page := core.SinkPage{Rows: append([]core.SinkRow(nil), s.rows[start:end]...)}
	if end < len(s.rows) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *fakeStore) CreateRecord(_ context.Context, in core.CreateRecordInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = append(s.created, in)
	s.nextID++
	return fmt.Sprintf("rec-%d", s.nextID), nil
}

func (s *fakeStore) UpdateRecord(_ context.Context, recordID string, fields core.FieldSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated[recordID] = fields
	return nil
}

type memoryLedger struct {
	mu      sync.Mutex
	records []core.RunRecord
}

func (l *memoryLedger) Record(_ context.Context, record core.RunRecord) (core.RunRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return record, nil
}

func (l *memoryLedger) List(_ context.Context, limit int) ([]core.RunRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.records) {
		limit = len(l.records)
	}
	return append([]core.RunRecord(nil), l.records[:limit]...), nil
}

func sinkRow(id, date string, hr float64) core.SinkRow {
	return core.SinkRow{ID: id, Date: date, Fields: map[string]any{"HR": hr}}
}
