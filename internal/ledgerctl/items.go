package ledgerctl

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/omnitrip-budget-ledger/internal/ledger"
	"github.com/spf13/cobra"
)

var itemsSegment string

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Print a segment's persisted items and accounting",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		store, _, closeFn, err := e.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return printItems(cmd.OutOrStdout(), store, itemsSegment)
	},
}

func init() {
	itemsCmd.Flags().StringVarP(&itemsSegment, "segment", "s", "", "Segment id (omit to list segments)")
	rootCmd.AddCommand(itemsCmd)
}

// printItems writes the item table and accounting for segmentID, or the list of
// known segments when segmentID is empty.
func printItems(w io.Writer, store *ledger.Store, segmentID string) error {
	if segmentID == "" {
		segments := store.Segments()
		if len(segments) == 0 {
			_, err := fmt.Fprintln(w, "No segments found.")
			return err
		}
		for _, s := range segments {
			fmt.Fprintf(w, "%s\t%d items\n", s, len(store.GetItems(s)))
		}
		return nil
	}

	items := store.GetItems(segmentID)
	acc := store.GetAccounting(segmentID, nil)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tAMOUNT\tSTATUS\tCONFIRMATION")
	for _, item := range items {
		detail := item.ConfirmationCode
		if detail == "" {
			detail = item.FailReason
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Type, item.Title, formatAmount(item.Amount, item.Currency), statusLabel(item.Status), detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total budget: %s\n", formatAmount(acc.TotalBudget, acc.Currency))
	fmt.Fprintf(w, "Items spent:  %s\n", formatAmount(acc.BudgetItemsSpent, acc.Currency))
	_, err := fmt.Fprintf(w, "Remaining:    %s\n", formatAmount(acc.Remaining, acc.Currency))
	return err
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Mark items left in paid by a crashed process as failed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		store, flush, closeFn, err := e.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		return recoverItems(cmd.Context(), cmd.OutOrStdout(), store, flush)
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}

func recoverItems(ctx context.Context, w io.Writer, store *ledger.Store, flush func(context.Context) error) error {
	recovered := store.RecoverInterrupted()
	if len(recovered) == 0 {
		_, err := fmt.Fprintln(w, "No interrupted items found.")
		return err
	}

	if err := flush(ctx); err != nil {
		return fmt.Errorf("failed to persist recovered items: %w", err)
	}

	for _, item := range recovered {
		fmt.Fprintf(w, "%s/%s %q -> %s\n", item.SegmentID, item.ID, item.Title, item.Status)
	}
	_, err := fmt.Fprintf(w, "Recovered %d item(s).\n", len(recovered))
	return err
}
