package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/stockroom-app/stockroom/internal/app"
	"github.com/stockroom-app/stockroom/internal/entity"
	"github.com/stockroom-app/stockroom/internal/seeder"
	servicecatalog "github.com/stockroom-app/stockroom/internal/service/catalog"
	serviceorder "github.com/stockroom-app/stockroom/internal/service/order"
)

// NewRootCommand builds the root stockroom CLI command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stockroom",
		Short: "Supply ordering toolkit",
	}

	root.AddCommand(newStartCmd())
	root.AddCommand(newIngestCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newOrdersCmd())
	root.AddCommand(newWorkerCmd())

	return root
}

// Execute runs the stockroom CLI.
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"run"},
		Short:   "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := fx.New(app.Module)
			if err := application.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return application.Stop(stopCtx)
		},
	}
}

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Replace the catalog from a wide CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noHeader, _ := cmd.Flags().GetBool("no-header")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			reader := csv.NewReader(f)
			reader.FieldsPerRecord = -1
			table, err := reader.ReadAll()
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if !noHeader && len(table) > 0 {
				table = table[1:]
			}

			var svc *servicecatalog.Service
			opts := fx.Options(app.Core, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				count, err := svc.Ingest(ctx, table)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catalog replaced with %d items\n", count)
				return nil
			})
		},
	}
	cmd.Flags().Bool("no-header", false, "Treat the first row as data, not a header")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write sample data files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *seeder.Seeder
			opts := fx.Options(app.Core, seeder.Module, fx.Populate(&seed))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := seed.Catalog(ctx); err != nil {
					return err
				}
				if err := seed.People(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed data applied")
				return nil
			})
		},
	}
}

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and maintain order history",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print order history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *serviceorder.Service
			opts := fx.Options(app.Core, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				for _, entry := range svc.History(ctx) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s — %s — Qty %d\n",
						entry.OrderedAt, entry.Orderer, entry.Item, entry.ProductNumber, entry.Qty)
				}
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear order history",
		RunE: func(cmd *cobra.Command, args []string) error {
			item, _ := cmd.Flags().GetString("item")
			number, _ := cmd.Flags().GetString("product-number")

			var keys []entity.ItemKey
			if item != "" || number != "" {
				if item == "" || number == "" {
					return fmt.Errorf("--item and --product-number must be used together")
				}
				keys = append(keys, entity.ItemKey{Item: item, ProductNumber: number})
			}

			var svc *serviceorder.Service
			opts := fx.Options(app.Core, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := svc.ClearHistory(ctx, keys); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "order history cleared")
				return nil
			})
		},
	}
	clearCmd.Flags().String("item", "", "Clear only entries for this item name")
	clearCmd.Flags().String("product-number", "", "Clear only entries for this product number")

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage background workers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run worker engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := fx.New(app.Worker)
			if err := application.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return application.Stop(stopCtx)
		},
	})
	return cmd
}

func runWithApp(ctx context.Context, opts fx.Option, fn func(context.Context) error) error {
	application := fx.New(opts, fx.NopLogger)
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()
	return fn(ctx)
}
