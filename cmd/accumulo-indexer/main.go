// Command accumulo-indexer is a demonstration CLI over the secondary
// index engine and split planner: it indexes a small fixed schema into
// a local pebble directory and plans a query against it, wiring a
// cobra root command around a couple of library calls the way
// influxdata-influxdb's idpd binary does.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/etmarx/presto-accumulo/pkg/config"
	"github.com/etmarx/presto-accumulo/pkg/index"
	"github.com/etmarx/presto-accumulo/pkg/kvstore"
	"github.com/etmarx/presto-accumulo/pkg/logging"
	"github.com/etmarx/presto-accumulo/pkg/planner"
	"github.com/etmarx/presto-accumulo/pkg/rowcodec"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "accumulo-indexer",
		Short: "index and plan splits against a local pebble-backed table",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.ApplyEnv()
			return logging.Init(logging.Config{Level: logging.LogLevel(cfg.LogLevel), Format: cfg.LogFormat})
		},
	}
	cfg.BindTo(root)

	root.AddCommand(newIndexDemoCommand(&cfg))
	root.AddCommand(newPlanDemoCommand(&cfg))
	root.AddCommand(newRegisterTabletCommand(&cfg))

	return root
}

func usersDescriptor() index.TableDescriptor {
	d := index.TableDescriptor{Schema: "default", Table: "users", RowIDColumn: "id", RowIDType: rowcodec.ScalarType(rowcodec.Varchar)}
	d = d.AddColumn(index.ColumnDescriptor{Name: "id", Family: "f", Qualifier: "id", Type: rowcodec.ScalarType(rowcodec.Varchar)})
	d = d.AddColumn(index.ColumnDescriptor{Name: "age", Family: "f", Qualifier: "age", Type: rowcodec.ScalarType(rowcodec.Bigint), Indexed: true})
	d = d.AddColumn(index.ColumnDescriptor{Name: "firstname", Family: "f", Qualifier: "firstname", Type: rowcodec.ScalarType(rowcodec.Varchar), Indexed: true})
	d = d.AddColumn(index.ColumnDescriptor{Name: "tags", Family: "f", Qualifier: "tags", Type: rowcodec.ArrayType(rowcodec.Varchar), Indexed: true})
	return d
}

func newIndexDemoCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "index-demo",
		Short: "index two fixed rows into the users table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			kv, err := kvstore.Open(kvstore.Config{BaseDir: cfg.BaseDir, ScanConcurrency: cfg.ScanConcurrency})
			if err != nil {
				return err
			}
			defer kv.Close()

			codec := rowcodec.LexicographicCodec{}
			desc := usersDescriptor()
			ix, err := index.New(ctx, kv, codec, desc, index.Config{})
			if err != nil {
				return err
			}

			rows := []index.Row{
				{ID: []byte("row1"), Columns: []index.ColumnValue{
					{Family: "f", Qualifier: "id", Value: rowcodec.VarcharValue("row1")},
					{Family: "f", Qualifier: "age", Value: rowcodec.BigintValue(27)},
					{Family: "f", Qualifier: "firstname", Value: rowcodec.VarcharValue("alice")},
					{Family: "f", Qualifier: "tags", Value: rowcodec.ArrayValue([]rowcodec.Value{
						rowcodec.VarcharValue("abc"), rowcodec.VarcharValue("def"), rowcodec.VarcharValue("ghi"),
					})},
				}},
				{ID: []byte("row2"), Columns: []index.ColumnValue{
					{Family: "f", Qualifier: "id", Value: rowcodec.VarcharValue("row2")},
					{Family: "f", Qualifier: "age", Value: rowcodec.BigintValue(27)},
					{Family: "f", Qualifier: "firstname", Value: rowcodec.VarcharValue("bob")},
					{Family: "f", Qualifier: "tags", Value: rowcodec.ArrayValue([]rowcodec.Value{
						rowcodec.VarcharValue("ghi"), rowcodec.VarcharValue("mno"), rowcodec.VarcharValue("abc"),
					})},
				}},
			}
			for _, row := range rows {
				if err := ix.Index(row); err != nil {
					return err
				}
			}
			if err := ix.Close(); err != nil {
				return err
			}

			n, err := index.RowCount(ctx, kv, desc)
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d rows into %s\n", n, desc.DataTableName())
			return nil
		},
	}
}

func newPlanDemoCommand(cfg *config.Config) *cobra.Command {
	var firstname string
	cmd := &cobra.Command{
		Use:   "plan-demo",
		Short: "plan splits for firstname = <value> against the users table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			kv, err := kvstore.Open(kvstore.Config{BaseDir: cfg.BaseDir, ScanConcurrency: cfg.ScanConcurrency})
			if err != nil {
				return err
			}
			defer kv.Close()

			codec := rowcodec.LexicographicCodec{}
			desc := usersDescriptor()

			constraint := planner.ColumnConstraint{
				Family: "f", Qualifier: "firstname", Indexed: true, Type: rowcodec.ScalarType(rowcodec.Varchar),
				Domain: planner.Domain{{
					Low:  &planner.Marker{Bound: planner.Exactly, Value: rowcodec.VarcharValue(firstname)},
					High: &planner.Marker{Bound: planner.Exactly, Value: rowcodec.VarcharValue(firstname)},
				}},
			}

			splits, err := planner.GetTabletSplits(ctx, kv, codec, cfg.Session, desc.Schema, desc.Table,
				desc.RowIDType, nil, []planner.ColumnConstraint{constraint})
			if err != nil {
				return err
			}

			fmt.Printf("%d splits for firstname = %q\n", len(splits), firstname)
			for i, s := range splits {
				fmt.Printf("  split %d -> host %s, %d range(s)\n", i, s.PreferredHost, len(s.Ranges))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&firstname, "firstname", "alice", "value to probe the firstname index with")
	return cmd
}

func newRegisterTabletCommand(cfg *config.Config) *cobra.Command {
	var endKey, hostPort string
	cmd := &cobra.Command{
		Use:   "register-tablet",
		Short: "register a tablet boundary -> host:port mapping for the users table",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := kvstore.Open(kvstore.Config{BaseDir: cfg.BaseDir, ScanConcurrency: cfg.ScanConcurrency})
			if err != nil {
				return err
			}
			defer kv.Close()

			var end []byte
			if endKey != "" {
				end = []byte(endKey)
			}
			desc := usersDescriptor()
			return kv.RegisterTablet(desc.Schema, desc.Table, end, hostPort)
		},
	}
	cmd.Flags().StringVar(&endKey, "end-key", "", "inclusive end key of the tablet (empty means the default/last tablet)")
	cmd.Flags().StringVar(&hostPort, "host", "localhost:9997", "host:port serving this tablet")
	return cmd
}
