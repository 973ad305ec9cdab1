package kvstore

import (
	"context"
	"os"
	"testing"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	dir, err := os.MkdirTemp("", "kvstore-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	a, err := Open(Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestWriteFlushScan(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	w, err := a.BatchWriter("events", WriterConfig{})
	if err != nil {
		t.Fatalf("BatchWriter: %v", err)
	}

	m := NewMutation([]byte("row1")).
		Put([]byte("f"), []byte("age"), []byte("27")).
		Put([]byte("f"), []byte("name"), []byte("alice"))
	if err := w.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cells, err := a.Scan(ctx, "events", UnboundedRange(), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
}

func TestScanRowRangeBoundaries(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	w, err := a.BatchWriter("events", WriterConfig{})
	if err != nil {
		t.Fatalf("BatchWriter: %v", err)
	}
	for _, row := range []string{"a", "b", "c", "d"} {
		if err := w.Write(NewMutation([]byte(row)).Put([]byte("f"), []byte("q"), []byte("v"))); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := KeyRange{Start: []byte("b"), StartInclusive: true, End: []byte("c"), EndInclusive: true}
	cells, err := a.Scan(ctx, "events", r, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells (b,c), got %d", len(cells))
	}

	r2 := KeyRange{Start: []byte("b"), StartInclusive: false, End: []byte("c"), EndInclusive: true}
	cells2, err := a.Scan(ctx, "events", r2, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cells2) != 1 || string(cells2[0].Row) != "c" {
		t.Fatalf("expected only row c, got %v", cells2)
	}
}

func TestMergeCombinerSumsDeltas(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	w, err := a.BatchWriter("t_idx_metrics", WriterConfig{})
	if err != nil {
		t.Fatalf("BatchWriter: %v", err)
	}
	row := []byte("alice")
	if err := w.Write(NewMutation(row).Merge([]byte("firstname"), []byte("___card___"), []byte("1"))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	w2, err := a.BatchWriter("t_idx_metrics", WriterConfig{})
	if err != nil {
		t.Fatalf("BatchWriter: %v", err)
	}
	if err := w2.Write(NewMutation(row).Merge([]byte("firstname"), []byte("___card___"), []byte("1"))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cells, err := a.Scan(ctx, "t_idx_metrics", KeyRange{Start: row, StartInclusive: true, End: row, EndInclusive: true}, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cells))
	}
	if string(cells[0].Value) != "2" {
		t.Fatalf("expected summed value 2, got %q", cells[0].Value)
	}
}

func TestTabletLocationsAndSplit(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.RegisterTablet("default", "t", []byte("m"), "host1:9997"); err != nil {
		t.Fatalf("RegisterTablet: %v", err)
	}
	if err := a.RegisterTablet("default", "t", nil, "host2:9997"); err != nil {
		t.Fatalf("RegisterTablet: %v", err)
	}

	host, err := a.TabletLocations(ctx, "default", "t", []byte("a"))
	if err != nil {
		t.Fatalf("TabletLocations: %v", err)
	}
	if host != "host1:9997" {
		t.Fatalf("expected host1:9997 for key before boundary, got %s", host)
	}

	host, err = a.TabletLocations(ctx, "default", "t", []byte("z"))
	if err != nil {
		t.Fatalf("TabletLocations: %v", err)
	}
	if host != "host2:9997" {
		t.Fatalf("expected host2:9997 for key after boundary, got %s", host)
	}

	host, err = a.TabletLocations(ctx, "default", "t", nil)
	if err != nil {
		t.Fatalf("TabletLocations: %v", err)
	}
	if host != "host2:9997" {
		t.Fatalf("expected default tablet host2:9997, got %s", host)
	}

	ranges, err := a.SplitRangeByTablets(ctx, "default", "t", UnboundedRange())
	if err != nil {
		t.Fatalf("SplitRangeByTablets: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 sub-ranges, got %d", len(ranges))
	}
}
