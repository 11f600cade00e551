package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("eth_call", "ok", time.Millisecond)
	m.ObserveProbe("owner()", "ok")
	m.ObserveAdapter("uniswap-v2", "ok", 2)
	m.ObserveAnalysis(time.Second)
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveRPC("eth_call", "ok", time.Millisecond)
	m.ObserveRPC("eth_call", "ok", time.Millisecond)
	m.ObserveAdapter("uniswap-v2", "failed", 0)
	m.ObserveAdapter("uniswap-v2", "ok", 3)

	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("eth_call", "ok")); got != 2 {
		t.Fatalf("expected 2 rpc requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.poolsDiscovered.WithLabelValues("uniswap-v2")); got != 3 {
		t.Fatalf("expected 3 pools, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveProbe("owner()", "unsupported")
	path := filepath.Join(t.TempDir(), "tokenscope.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "tokenscope_probe_calls_total") {
		t.Fatalf("missing probe counter in %s", data)
	}
}
