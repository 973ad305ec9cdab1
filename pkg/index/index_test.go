package index

import (
	"context"
	"testing"

	"github.com/etmarx/presto-accumulo/internal/testutil"
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

func newTestIndexer(t *testing.T, desc TableDescriptor) (*Indexer, *kvstore.Adapter) {
	t.Helper()
	kv := testutil.OpenAdapter(t)

	codec := rowcodec.LexicographicCodec{}
	ix, err := New(context.Background(), kv, codec, desc, Config{})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix, kv
}

func testDescriptor() TableDescriptor {
	d := TableDescriptor{Schema: "default", Table: "users", RowIDColumn: "id", RowIDType: rowcodec.ScalarType(rowcodec.Varchar)}
	d = d.AddColumn(ColumnDescriptor{Name: "id", Family: "f", Qualifier: "id", Type: rowcodec.ScalarType(rowcodec.Varchar), Indexed: false})
	d = d.AddColumn(ColumnDescriptor{Name: "name", Family: "f", Qualifier: "name", Type: rowcodec.ScalarType(rowcodec.Varchar), Indexed: true})
	d = d.AddColumn(ColumnDescriptor{Name: "tags", Family: "f", Qualifier: "tags", Type: rowcodec.ArrayType(rowcodec.Varchar), Indexed: true})
	return d
}

func TestIndexWritesDataAndIndexCells(t *testing.T) {
	desc := testDescriptor()
	ix, kv := newTestIndexer(t, desc)
	ctx := context.Background()

	row := Row{
		ID: []byte("row1"),
		Columns: []ColumnValue{
			{Family: "f", Qualifier: "id", Value: rowcodec.VarcharValue("row1")},
			{Family: "f", Qualifier: "name", Value: rowcodec.VarcharValue("alice")},
			{Family: "f", Qualifier: "tags", Value: rowcodec.ArrayValue([]rowcodec.Value{
				rowcodec.VarcharValue("admin"), rowcodec.VarcharValue("staff"),
			})},
		},
	}
	if err := ix.Index(row); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := ix.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	dataCells, err := kv.Scan(ctx, desc.DataTableName(), kvstore.UnboundedRange(), nil)
	if err != nil {
		t.Fatalf("Scan data: %v", err)
	}
	if len(dataCells) != 3 {
		t.Fatalf("expected 3 data cells, got %d", len(dataCells))
	}

	indexCells, err := kv.Scan(ctx, desc.IndexTableName(), kvstore.UnboundedRange(), nil)
	if err != nil {
		t.Fatalf("Scan index: %v", err)
	}
	// one for "name"=alice, two for the distinct tags
	if len(indexCells) != 3 {
		t.Fatalf("expected 3 index cells, got %d", len(indexCells))
	}

	first, last, ok, err := MinMaxRowIDs(ctx, kv, desc)
	if err != nil {
		t.Fatalf("MinMaxRowIDs: %v", err)
	}
	if !ok || string(first) != "row1" || string(last) != "row1" {
		t.Fatalf("unexpected min/max: %q %q ok=%v", first, last, ok)
	}

	nameCol, _ := desc.Column("f", "name")
	encodedAlice, err := rowcodec.LexicographicCodec{}.Encode(nameCol.Type, rowcodec.VarcharValue("alice"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	card, found, err := Cardinality(ctx, kv, desc, nameCol, encodedAlice)
	if err != nil {
		t.Fatalf("Cardinality: %v", err)
	}
	if !found || card != 1 {
		t.Fatalf("expected cardinality 1, got %d found=%v", card, found)
	}
}

func TestCardinalitySumsAcrossRows(t *testing.T) {
	desc := testDescriptor()
	ix, kv := newTestIndexer(t, desc)
	ctx := context.Background()

	for _, id := range []string{"row1", "row2"} {
		row := Row{
			ID: []byte(id),
			Columns: []ColumnValue{
				{Family: "f", Qualifier: "id", Value: rowcodec.VarcharValue(id)},
				{Family: "f", Qualifier: "name", Value: rowcodec.VarcharValue("bob")},
				{Family: "f", Qualifier: "tags", Value: rowcodec.ArrayValue(nil)},
			},
		}
		if err := ix.Index(row); err != nil {
			t.Fatalf("Index: %v", err)
		}
		if err := ix.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
	}

	nameCol, _ := desc.Column("f", "name")
	encodedBob, err := rowcodec.LexicographicCodec{}.Encode(nameCol.Type, rowcodec.VarcharValue("bob"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	card, found, err := Cardinality(ctx, kv, desc, nameCol, encodedBob)
	if err != nil {
		t.Fatalf("Cardinality: %v", err)
	}
	if !found || card != 2 {
		t.Fatalf("expected cardinality 2 after two flushes, got %d found=%v", card, found)
	}

	rows, err := RowCount(ctx, kv, desc)
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected row count 2, got %d", rows)
	}

	first, last, ok, err := MinMaxRowIDs(ctx, kv, desc)
	if err != nil {
		t.Fatalf("MinMaxRowIDs: %v", err)
	}
	if !ok || string(first) != "row1" || string(last) != "row2" {
		t.Fatalf("unexpected running min/max: %q %q", first, last)
	}
}

func TestIndexRejectsUnknownColumn(t *testing.T) {
	desc := testDescriptor()
	ix, _ := newTestIndexer(t, desc)

	row := Row{
		ID: []byte("row1"),
		Columns: []ColumnValue{
			{Family: "f", Qualifier: "unknown", Value: rowcodec.VarcharValue("x")},
		},
	}
	if err := ix.Index(row); err == nil {
		t.Fatalf("expected error indexing unknown column")
	}
}
