package core

import (
	stderrors "errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestSyncErrorMapper_AssignsStableCodes(t *testing.T) {
	mapped := syncErrorMapper(stderrors.New("core: unknown metric \"weight\""))
	if mapped.TextCode != SyncErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", mapped.TextCode)
	}
	if mapped.Code == 0 {
		t.Fatalf("expected http status code on mapped error")
	}

	mapped = syncErrorMapper(stderrors.New("destination rate limit exceeded"))
	if mapped.TextCode != SyncErrorThrottled {
		t.Fatalf("expected throttled code, got %q", mapped.TextCode)
	}
	if mapped.Category != goerrors.CategoryRateLimit {
		t.Fatalf("expected rate limit category, got %q", mapped.Category)
	}
}

func TestSyncErrorMapper_PassesRichErrorsThrough(t *testing.T) {
	original := FetchError(stderrors.New("boom"), "sync: source fetch failed")
	mapped := syncErrorMapper(original)
	if mapped.TextCode != SyncErrorFetchFailed {
		t.Fatalf("expected fetch text code preserved, got %q", mapped.TextCode)
	}
}

func TestIsFatalSyncError(t *testing.T) {
	if !IsFatalSyncError(IndexError(stderrors.New("boom"), "sync: index build failed")) {
		t.Fatalf("expected index errors to be fatal")
	}
	if !IsFatalSyncError(ConfigError(stderrors.New("boom"), "core: config invalid")) {
		t.Fatalf("expected config errors to be fatal")
	}
	if !IsFatalSyncError(MetricNotFoundError("weight")) {
		t.Fatalf("expected metric-not-found to be fatal")
	}
	if IsFatalSyncError(FetchError(stderrors.New("boom"), "sync: source fetch failed")) {
		t.Fatalf("expected fetch errors to stay per-day")
	}
	if IsFatalSyncError(WriteError(stderrors.New("boom"), "sync: destination write failed")) {
		t.Fatalf("expected write errors to stay per-day")
	}
	if IsFatalSyncError(nil) {
		t.Fatalf("expected nil to be non-fatal")
	}
}
