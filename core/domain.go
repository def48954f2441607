package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date format used for window
// enumeration, destination date fields and index keys.
const DateLayout = "2006-01-02"

type MetricID string

const (
	MetricSleep    MetricID = "sleep"
	MetricSteps    MetricID = "steps"
	MetricActivity MetricID = "activity"
)

func (m MetricID) String() string {
	return string(m)
}

func ParseMetricID(value string) (MetricID, error) {
	switch MetricID(strings.TrimSpace(strings.ToLower(value))) {
	case MetricSleep:
		return MetricSleep, nil
	case MetricSteps:
		return MetricSteps, nil
	case MetricActivity:
		return MetricActivity, nil
	default:
		return "", fmt.Errorf("core: unknown metric %q", value)
	}
}

// DateWindow is the inclusive span of calendar days under reconciliation.
// It is computed once per run and never mutated.
type DateWindow struct {
	Start time.Time
	End   time.Time
	Zone  *time.Location
}

func (w DateWindow) StartDate() string {
	return w.Start.Format(DateLayout)
}

func (w DateWindow) EndDate() string {
	return w.End.Format(DateLayout)
}

// Len counts calendar days, not elapsed hours: a window crossing a DST
// transition still covers one entry per date.
func (w DateWindow) Len() int {
	if w.End.Before(w.Start) {
		return 0
	}
	count := 0
	for day := w.Start; !day.After(w.End); day = day.AddDate(0, 0, 1) {
		count++
	}
	return count
}

// Days enumerates every date in the window, oldest first.
func (w DateWindow) Days() []string {
	count := w.Len()
	days := make([]string, 0, count)
	for i := 0; i < count; i++ {
		days = append(days, w.Start.AddDate(0, 0, i).Format(DateLayout))
	}
	return days
}

// SourceRecord is the raw day-scoped bundle returned by the tracker. The
// payload may be partial, or structurally present but semantically empty
// (sentinel zero values for a day the device has not synced yet).
type SourceRecord struct {
	Metric  MetricID
	Date    string
	Payload map[string]any
}

type FieldKind string

const (
	FieldTitle    FieldKind = "title"
	FieldRichText FieldKind = "rich_text"
	FieldNumber   FieldKind = "number"
	FieldDate     FieldKind = "date"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
)

// Field is one destination-ready property value.
type Field struct {
	Kind    FieldKind
	Number  float64
	Text    string
	Date    string
	DateEnd string
	Checked bool
}

type FieldSet map[string]Field

func TitleField(text string) Field {
	return Field{Kind: FieldTitle, Text: text}
}

func RichTextField(text string) Field {
	return Field{Kind: FieldRichText, Text: text}
}

func NumberField(value float64) Field {
	return Field{Kind: FieldNumber, Number: value}
}

func DateField(start string) Field {
	return Field{Kind: FieldDate, Date: start}
}

func DateRangeField(start, end string) Field {
	return Field{Kind: FieldDate, Date: start, DateEnd: end}
}

func SelectField(name string) Field {
	return Field{Kind: FieldSelect, Text: name}
}

func CheckboxField(checked bool) Field {
	return Field{Kind: FieldCheckbox, Checked: checked}
}

// RecordIcon is the optional decorative marker attached on create.
type RecordIcon struct {
	Emoji       string
	ExternalURL string
}

// NormalizedRecord is the destination-ready form of one source day. Date is
// always the reconciliation loop's target date, never a date embedded in the
// source payload.
type NormalizedRecord struct {
	Metric MetricID
	Date   string
	Label  string
	Values map[string]any
}

// SinkRow is one raw destination record as returned by the store query, with
// its properties flattened into plain values.
type SinkRow struct {
	ID     string
	Date   string
	Fields map[string]any
}

// SinkEntry is the indexed view of one stored record for one date.
type SinkEntry struct {
	RecordID string
	Date     string
	Valid    bool
}

// SinkIndex maps each date in the window to every stored record for that
// date. One date may hold multiple entries when the destination carries
// duplicates; the index accumulates them all instead of rejecting.
type SinkIndex struct {
	entries map[string][]SinkEntry
}

func NewSinkIndex() *SinkIndex {
	return &SinkIndex{entries: map[string][]SinkEntry{}}
}

func (i *SinkIndex) Add(entry SinkEntry) {
	if i == nil || strings.TrimSpace(entry.Date) == "" {
		return
	}
	date := strings.TrimSpace(entry.Date)
	i.entries[date] = append(i.entries[date], entry)
}

func (i *SinkIndex) Entries(date string) []SinkEntry {
	if i == nil {
		return nil
	}
	return i.entries[strings.TrimSpace(date)]
}

// AnyValid reports whether at least one stored record for the date carries a
// true validity signal. One trustworthy record is enough to classify the
// whole date as already synced.
func (i *SinkIndex) AnyValid(date string) bool {
	for _, entry := range i.Entries(date) {
		if entry.Valid {
			return true
		}
	}
	return false
}

// DuplicateDates counts dates holding more than one stored record.
func (i *SinkIndex) DuplicateDates() int {
	if i == nil {
		return 0
	}
	count := 0
	for _, entries := range i.entries {
		if len(entries) > 1 {
			count++
		}
	}
	return count
}

func (i *SinkIndex) Dates() []string {
	if i == nil {
		return nil
	}
	dates := make([]string, 0, len(i.entries))
	for date := range i.entries {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

func (i *SinkIndex) TotalEntries() int {
	if i == nil {
		return 0
	}
	total := 0
	for _, entries := range i.entries {
		total += len(entries)
	}
	return total
}

type DayState string

const (
	DayCreated DayState = "created"
	DayUpdated DayState = "updated"
	DaySkipped DayState = "skipped"
	DayErrored DayState = "errored"
)

// DayResult records the terminal state of one date within a run.
type DayResult struct {
	Date      string
	State     DayState
	RecordIDs []string
	Error     string
}

// SyncOutcome aggregates the per-run counters reported at the end of a run.
type SyncOutcome struct {
	Metric         MetricID
	Window         DateWindow
	Created        int
	Updated        int
	Skipped        int
	Errored        int
	DuplicateDates int
	Days           []DayResult
	StartedAt      time.Time
	FinishedAt     time.Time
}

func (o *SyncOutcome) Track(day DayResult) {
	if o == nil {
		return
	}
	o.Days = append(o.Days, day)
	switch day.State {
	case DayCreated:
		o.Created++
	case DayUpdated:
		o.Updated++
	case DayErrored:
		o.Errored++
	default:
		o.Skipped++
	}
}

// Summary renders the final one-line report for the run.
func (o SyncOutcome) Summary() string {
	return fmt.Sprintf(
		"metric=%s window=%s..%s created=%d updated=%d skipped=%d errored=%d duplicate_dates=%d",
		o.Metric,
		o.Window.StartDate(),
		o.Window.EndDate(),
		o.Created,
		o.Updated,
		o.Skipped,
		o.Errored,
		o.DuplicateDates,
	)
}

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunRecord is the persisted form of one run outcome.
type RunRecord struct {
	ID             string
	Metric         string
	WindowStart    string
	WindowEnd      string
	Created        int
	Updated        int
	Skipped        int
	Errored        int
	DuplicateDates int
	Status         RunStatus
	Error          string
	Metadata       map[string]any
	StartedAt      time.Time
	FinishedAt     time.Time
	CreatedAt      time.Time
}

// RunSyncRequest asks the engine for one reconciliation pass over a metric.
// LookbackDays of 0 falls back to the configured default. DryRun classifies
// every date without performing destination writes.
type RunSyncRequest struct {
	Metric       MetricID
	LookbackDays int
	DryRun       bool
}

// NormalizePolicy carries the caller-level normalization settings handed to
// metric adapters.
type NormalizePolicy struct {
	SkipZeroSleep bool
	SkipZeroSteps bool
	Zone          *time.Location
}
