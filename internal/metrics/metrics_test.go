package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestCollector_RecordRequest はステータス別カウンタの増分を検証する。
func TestCollector_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", 200, 15*time.Millisecond)
	c.RecordRequest("GET", 200, 20*time.Millisecond)
	c.RecordRequest("POST", 401, 5*time.Millisecond)

	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("200")); got != 2 {
		t.Errorf("status 200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("401")); got != 1 {
		t.Errorf("status 401 count = %v, want 1", got)
	}
}

// TestCollector_RefreshCounters はリフレッシュ成否カウンタを検証する。
func TestCollector_RefreshCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRefreshSuccess()
	c.RecordRefreshFailure()
	c.RecordRefreshFailure()
	c.RecordReplay()

	if got := testutil.ToFloat64(c.refreshSuccess); got != 1 {
		t.Errorf("refresh success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.refreshFail); got != 2 {
		t.Errorf("refresh fail = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.replays); got != 1 {
		t.Errorf("replays = %v, want 1", got)
	}
}
