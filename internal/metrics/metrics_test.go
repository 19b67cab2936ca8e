package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/health", "200")
	before := testutil.ToFloat64(c)
	RecordAPIRequest("GET", "/health", 200, 3*time.Millisecond)
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("requests = %v, want %v", got, before+1)
	}
}

func TestRecordCatalogLoad(t *testing.T) {
	RecordCatalogLoad("iem", 42, time.Millisecond, nil)
	if got := testutil.ToFloat64(CatalogSize.WithLabelValues("iem")); got != 42 {
		t.Errorf("catalog size = %v, want 42", got)
	}
	RecordCatalogLoad("iem", 0, time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(CatalogSize.WithLabelValues("iem")); got != 42 {
		t.Errorf("failed load changed size to %v", got)
	}
}

func TestRecordReload(t *testing.T) {
	ok := testutil.ToFloat64(CatalogReloads.WithLabelValues("success"))
	bad := testutil.ToFloat64(CatalogReloads.WithLabelValues("error"))
	RecordReload(nil)
	RecordReload(errors.New("bad file"))
	if got := testutil.ToFloat64(CatalogReloads.WithLabelValues("success")); got != ok+1 {
		t.Errorf("success = %v, want %v", got, ok+1)
	}
	if got := testutil.ToFloat64(CatalogReloads.WithLabelValues("error")); got != bad+1 {
		t.Errorf("error = %v, want %v", got, bad+1)
	}
}

func TestRecordSongCache(t *testing.T) {
	h, m := testutil.ToFloat64(SongCacheHits), testutil.ToFloat64(SongCacheMisses)
	RecordSongCache(true)
	RecordSongCache(false)
	RecordSongCache(false)
	if got := testutil.ToFloat64(SongCacheHits); got != h+1 {
		t.Errorf("hits = %v, want %v", got, h+1)
	}
	if got := testutil.ToFloat64(SongCacheMisses); got != m+2 {
		t.Errorf("misses = %v, want %v", got, m+2)
	}
}
