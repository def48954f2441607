package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	SyncErrorBadInput       = "SYNC_BAD_INPUT"
	SyncErrorConfigInvalid  = "SYNC_CONFIG_INVALID"
	SyncErrorMetricNotFound = "SYNC_METRIC_NOT_FOUND"
	SyncErrorIndexFailed    = "SYNC_INDEX_FAILED"
	SyncErrorFetchFailed    = "SYNC_FETCH_FAILED"
	SyncErrorWriteFailed    = "SYNC_WRITE_FAILED"
	SyncErrorThrottled      = "SYNC_THROTTLED"
	SyncErrorInternal       = "SYNC_INTERNAL_ERROR"
)

// ConfigError wraps configuration failures that must abort before any day is
// processed.
func ConfigError(err error, message string) *goerrors.Error {
	return ensureSyncErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryValidation, message).
			WithTextCode(SyncErrorConfigInvalid),
	)
}

// IndexError wraps destination index-build failures. Index errors are fatal
// to the run: a partial index would misclassify every date it is missing.
func IndexError(err error, message string) *goerrors.Error {
	return ensureSyncErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryExternal, message).
			WithTextCode(SyncErrorIndexFailed),
	)
}

// FetchError wraps per-day source fetch failures.
func FetchError(err error, message string) *goerrors.Error {
	return ensureSyncErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryExternal, message).
			WithTextCode(SyncErrorFetchFailed),
	)
}

// WriteError wraps per-day destination write failures.
func WriteError(err error, message string) *goerrors.Error {
	return ensureSyncErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryExternal, message).
			WithTextCode(SyncErrorWriteFailed),
	)
}

// MetricNotFoundError reports a metric id with no registered adapter.
func MetricNotFoundError(metric string) *goerrors.Error {
	return ensureSyncErrorEnvelope(
		goerrors.New("core: no adapter registered for metric: "+metric, goerrors.CategoryNotFound).
			WithTextCode(SyncErrorMetricNotFound),
	)
}

// IsFatalSyncError reports whether the error must abort the whole run instead
// of being contained at the per-day boundary.
func IsFatalSyncError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	switch richErr.TextCode {
	case SyncErrorConfigInvalid, SyncErrorIndexFailed, SyncErrorMetricNotFound, SyncErrorBadInput:
		return true
	}
	return false
}

// MapSyncError normalizes any error into the rich envelope used across the
// module: known text codes pass through, everything else is classified by
// message shape and finally by the default mappers.
func MapSyncError(err error) *goerrors.Error {
	return syncErrorMapper(err)
}

func syncErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureSyncErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "metric") && strings.Contains(msg, "no adapter"):
		return newSyncError(err.Error(), goerrors.CategoryNotFound, SyncErrorMetricNotFound)
	case strings.Contains(msg, "unknown metric"):
		return newSyncError(err.Error(), goerrors.CategoryBadInput, SyncErrorBadInput)
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "rate limit"):
		return newSyncError(err.Error(), goerrors.CategoryRateLimit, SyncErrorThrottled)
	case strings.Contains(msg, "index"):
		return newSyncError(err.Error(), goerrors.CategoryExternal, SyncErrorIndexFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return newSyncError(err.Error(), goerrors.CategoryBadInput, SyncErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureSyncErrorEnvelope(mapped)
}

func newSyncError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureSyncErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureSyncErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = syncHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultSyncTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultSyncTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return SyncErrorBadInput
	case goerrors.CategoryValidation:
		return SyncErrorConfigInvalid
	case goerrors.CategoryNotFound:
		return SyncErrorMetricNotFound
	case goerrors.CategoryRateLimit:
		return SyncErrorThrottled
	case goerrors.CategoryExternal:
		return SyncErrorFetchFailed
	default:
		return SyncErrorInternal
	}
}

func syncHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
