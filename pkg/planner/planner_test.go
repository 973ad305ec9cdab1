package planner

import (
	"bytes"
	"context"
	"testing"

	"github.com/etmarx/presto-accumulo/internal/testutil"
	"github.com/etmarx/presto-accumulo/pkg/index"
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

func TestMidpointBetweenEndpoints(t *testing.T) {
	a := []byte{0x00, 0x00}
	b := []byte{0xFF, 0xFF}
	mid, err := Midpoint(a, b)
	if err != nil {
		t.Fatalf("Midpoint: %v", err)
	}
	if len(mid) != len(a) {
		t.Fatalf("expected same-length result, got %d bytes", len(mid))
	}
	if compareBytes(a, mid) > 0 || compareBytes(mid, b) > 0 {
		t.Fatalf("expected a <= mid <= b, got a=%v mid=%v b=%v", a, mid, b)
	}
}

func TestMidpointCarriesRemainderAcrossBytes(t *testing.T) {
	mid, err := Midpoint([]byte{0x01, 0xFF}, []byte{0x00, 0xFF})
	if err != nil {
		t.Fatalf("Midpoint: %v", err)
	}
	want := []byte{0x00, 0x7F}
	if !bytes.Equal(mid, want) {
		t.Fatalf("got %v, want %v", mid, want)
	}
}

func TestMidpointRejectsMismatchedLengths(t *testing.T) {
	if _, err := Midpoint([]byte{0x00}, []byte{0x00, 0x01}); err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
}

func TestRangeFromDomainSingleValueIsPointRange(t *testing.T) {
	codec := rowcodec.LexicographicCodec{}
	typ := rowcodec.ScalarType(rowcodec.Varchar)
	d := Domain{{
		Low:  &Marker{Bound: Exactly, Value: rowcodec.VarcharValue("alice")},
		High: &Marker{Bound: Exactly, Value: rowcodec.VarcharValue("alice")},
	}}
	ranges, err := RangeFromDomain(codec, typ, d)
	if err != nil {
		t.Fatalf("RangeFromDomain: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}
	r := ranges[0]
	if !bytes.Equal(r.Start, r.End) || !r.StartInclusive || !r.EndInclusive {
		t.Fatalf("expected inclusive point range, got %+v", r)
	}
}

func TestDomainFromRangeRoundTrip(t *testing.T) {
	codec := rowcodec.LexicographicCodec{}
	typ := rowcodec.ScalarType(rowcodec.Bigint)

	cases := []Domain{
		{{Low: nil, High: nil}},
		{{Low: &Marker{Bound: Exactly, Value: rowcodec.BigintValue(5)}, High: &Marker{Bound: Exactly, Value: rowcodec.BigintValue(5)}}},
		{{Low: &Marker{Bound: Exactly, Value: rowcodec.BigintValue(1)}, High: &Marker{Bound: Below, Value: rowcodec.BigintValue(10)}}},
		{{Low: &Marker{Bound: Above, Value: rowcodec.BigintValue(1)}, High: nil}},
	}

	for i, d := range cases {
		ranges, err := RangeFromDomain(codec, typ, d)
		if err != nil {
			t.Fatalf("case %d RangeFromDomain: %v", i, err)
		}
		got, err := DomainFromRange(codec, typ, ranges)
		if err != nil {
			t.Fatalf("case %d DomainFromRange: %v", i, err)
		}
		if len(got) != len(d) {
			t.Fatalf("case %d: expected %d ranges back, got %d", i, len(d), len(got))
		}
		for j := range d {
			if !markersEqual(d[j].Low, got[j].Low) || !markersEqual(d[j].High, got[j].High) {
				t.Fatalf("case %d: round trip mismatch: want %+v got %+v", i, d[j], got[j])
			}
		}
	}
}

func markersEqual(a, b *Marker) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Bound == b.Bound && a.Value.Kind == b.Value.Kind && a.Value.I64 == b.Value.I64 &&
		a.Value.Str == b.Value.Str && a.Value.F64 == b.Value.F64 && a.Value.Bool == b.Value.Bool
}

func newPlannerTestKV(t *testing.T) *kvstore.Adapter {
	return testutil.OpenAdapter(t)
}

func ageFirstnameDescriptor() index.TableDescriptor {
	d := index.TableDescriptor{Schema: "default", Table: "users", RowIDColumn: "id", RowIDType: rowcodec.ScalarType(rowcodec.Varchar)}
	d = d.AddColumn(index.ColumnDescriptor{Name: "id", Family: "f", Qualifier: "id", Type: rowcodec.ScalarType(rowcodec.Varchar)})
	d = d.AddColumn(index.ColumnDescriptor{Name: "age", Family: "f", Qualifier: "age", Type: rowcodec.ScalarType(rowcodec.Bigint), Indexed: true})
	d = d.AddColumn(index.ColumnDescriptor{Name: "firstname", Family: "f", Qualifier: "firstname", Type: rowcodec.ScalarType(rowcodec.Varchar), Indexed: true})
	return d
}

func TestGetTabletSplitsZeroCardinalityShortCircuit(t *testing.T) {
	kv := newPlannerTestKV(t)
	ctx := context.Background()
	codec := rowcodec.LexicographicCodec{}
	desc := ageFirstnameDescriptor()

	ix, err := index.New(ctx, kv, codec, desc, index.Config{})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	for _, row := range []struct{ id, name string }{{"row1", "alice"}, {"row2", "bob"}} {
		err := ix.Index(index.Row{ID: []byte(row.id), Columns: []index.ColumnValue{
			{Family: "f", Qualifier: "id", Value: rowcodec.VarcharValue(row.id)},
			{Family: "f", Qualifier: "age", Value: rowcodec.BigintValue(27)},
			{Family: "f", Qualifier: "firstname", Value: rowcodec.VarcharValue(row.name)},
		}})
		if err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sess := DefaultSession()
	constraint := ColumnConstraint{
		Family: "f", Qualifier: "firstname", Indexed: true, Type: rowcodec.ScalarType(rowcodec.Varchar),
		Domain: Domain{{
			Low:  &Marker{Bound: Exactly, Value: rowcodec.VarcharValue("zzz")},
			High: &Marker{Bound: Exactly, Value: rowcodec.VarcharValue("zzz")},
		}},
	}

	splits, err := GetTabletSplits(ctx, kv, codec, sess, desc.Schema, desc.Table,
		rowcodec.ScalarType(rowcodec.Varchar), nil, []ColumnConstraint{constraint})
	if err != nil {
		t.Fatalf("GetTabletSplits: %v", err)
	}
	if len(splits) != 0 {
		t.Fatalf("expected empty plan, got %d splits", len(splits))
	}
}

func TestGetTabletSplitsIntersectionModeYieldsPointRange(t *testing.T) {
	kv := newPlannerTestKV(t)
	ctx := context.Background()
	codec := rowcodec.LexicographicCodec{}
	desc := ageFirstnameDescriptor()

	ix, err := index.New(ctx, kv, codec, desc, index.Config{})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	rows := []struct {
		id   string
		age  int64
		name string
	}{
		{"row1", 27, "alice"},
		{"row2", 27, "bob"},
		{"row3", 30, "alice"},
	}
	for _, r := range rows {
		err := ix.Index(index.Row{ID: []byte(r.id), Columns: []index.ColumnValue{
			{Family: "f", Qualifier: "id", Value: rowcodec.VarcharValue(r.id)},
			{Family: "f", Qualifier: "age", Value: rowcodec.BigintValue(r.age)},
			{Family: "f", Qualifier: "firstname", Value: rowcodec.VarcharValue(r.name)},
		}})
		if err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sess := DefaultSession()
	sess.LowestCardinalityThreshold = 0.01
	sess.IndexRatio = 0.5
	sess.NumArtificialSplits = 0

	ageConstraint := ColumnConstraint{
		Family: "f", Qualifier: "age", Indexed: true, Type: rowcodec.ScalarType(rowcodec.Bigint),
		Domain: Domain{{
			Low:  &Marker{Bound: Exactly, Value: rowcodec.BigintValue(27)},
			High: &Marker{Bound: Exactly, Value: rowcodec.BigintValue(27)},
		}},
	}
	nameConstraint := ColumnConstraint{
		Family: "f", Qualifier: "firstname", Indexed: true, Type: rowcodec.ScalarType(rowcodec.Varchar),
		Domain: Domain{{
			Low:  &Marker{Bound: Exactly, Value: rowcodec.VarcharValue("alice")},
			High: &Marker{Bound: Exactly, Value: rowcodec.VarcharValue("alice")},
		}},
	}

	splits, err := GetTabletSplits(ctx, kv, codec, sess, desc.Schema, desc.Table,
		rowcodec.ScalarType(rowcodec.Varchar), nil, []ColumnConstraint{ageConstraint, nameConstraint})
	if err != nil {
		t.Fatalf("GetTabletSplits: %v", err)
	}

	var total int
	for _, s := range splits {
		total += len(s.Ranges)
	}
	if total != 1 {
		t.Fatalf("expected exactly 1 candidate range (row1, intersection of age=27 and firstname=alice), got %d", total)
	}
	if string(splits[0].Ranges[0].Start) != "row1" {
		t.Fatalf("expected surviving range on row1, got %q", splits[0].Ranges[0].Start)
	}
}

func TestGetTabletSplitsRatioGateFallsBackToPushdown(t *testing.T) {
	kv := newPlannerTestKV(t)
	ctx := context.Background()
	codec := rowcodec.LexicographicCodec{}
	desc := ageFirstnameDescriptor()

	ix, err := index.New(ctx, kv, codec, desc, index.Config{})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	for _, id := range []string{"row1", "row2", "row3"} {
		err := ix.Index(index.Row{ID: []byte(id), Columns: []index.ColumnValue{
			{Family: "f", Qualifier: "id", Value: rowcodec.VarcharValue(id)},
			{Family: "f", Qualifier: "age", Value: rowcodec.BigintValue(5)},
			{Family: "f", Qualifier: "firstname", Value: rowcodec.VarcharValue("same")},
		}})
		if err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sess := DefaultSession()
	sess.LowestCardinalityThreshold = 0.01
	sess.IndexRatio = 0.5
	sess.OptimizeRangeSplits = false

	ageConstraint := ColumnConstraint{
		Family: "f", Qualifier: "age", Indexed: true, Type: rowcodec.ScalarType(rowcodec.Bigint),
		Domain: Domain{{
			Low:  &Marker{Bound: Exactly, Value: rowcodec.BigintValue(5)},
			High: &Marker{Bound: Exactly, Value: rowcodec.BigintValue(5)},
		}},
	}

	splits, err := GetTabletSplits(ctx, kv, codec, sess, desc.Schema, desc.Table,
		rowcodec.ScalarType(rowcodec.Varchar), nil, []ColumnConstraint{ageConstraint})
	if err != nil {
		t.Fatalf("GetTabletSplits: %v", err)
	}
	if len(splits) != 1 || len(splits[0].Ranges) != 1 {
		t.Fatalf("expected a single fallback range, got %+v", splits)
	}
	r := splits[0].Ranges[0]
	if r.Start != nil || r.End != nil {
		t.Fatalf("expected unbounded pushdown fallback range, got %+v", r)
	}
}
