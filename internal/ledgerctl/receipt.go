package ledgerctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/omnitrip-budget-ledger/internal/data/mongo"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/platform/persistence"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

var (
	exportFormat string
	exportOut    string
)

var receiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Archived receipt commands",
}

var receiptExportCmd = &cobra.Command{
	Use:   "export <orderId>",
	Short: "Export an archived receipt as JSON or TOML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != formatJSON && exportFormat != formatTOML {
			return fmt.Errorf("unsupported format %q, use json or toml", exportFormat)
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		mongoDB, err := persistence.NewMongoDB(ctx, e.log, &e.cfg.MongoDB)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoDB.Close(closeCtx)
		}()

		repo := mongo.NewReceiptRepository(e.log, mongoDB.Database(), e.cfg.MongoDB.ReceiptCollection)
		r, err := repo.GetByOrderID(ctx, args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}
		if err := writeReceipt(w, r, exportFormat); err != nil {
			return err
		}
		if exportOut != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Receipt %s written to %s\n", r.OrderID, exportOut)
		}
		return nil
	},
}

func init() {
	receiptExportCmd.Flags().StringVarP(&exportFormat, "format", "f", formatJSON, "Output format: json or toml")
	receiptExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	receiptCmd.AddCommand(receiptExportCmd)
	rootCmd.AddCommand(receiptCmd)
}

type receiptDocument struct {
	OrderID       string         `toml:"order_id"`
	SegmentID     string         `toml:"segment_id"`
	PaidAt        time.Time      `toml:"paid_at"`
	CorrelationID string         `toml:"correlation_id,omitempty"`
	Currency      string         `toml:"currency"`
	Subtotal      float64        `toml:"subtotal"`
	Fees          float64        `toml:"fees"`
	Total         float64        `toml:"total"`
	Method        methodDocument `toml:"method"`
	Items         []lineDocument `toml:"items"`
}

type methodDocument struct {
	ID    string `toml:"id"`
	Type  string `toml:"type"`
	Label string `toml:"label"`
	Last4 string `toml:"last4,omitempty"`
}

type lineDocument struct {
	ItemID           string  `toml:"item_id"`
	Type             string  `toml:"type"`
	Title            string  `toml:"title"`
	Provider         string  `toml:"provider,omitempty"`
	Amount           float64 `toml:"amount"`
	Status           string  `toml:"status"`
	ConfirmationCode string  `toml:"confirmation_code,omitempty"`
	Reason           string  `toml:"reason,omitempty"`
}

func newReceiptDocument(r *budget.OrderReceipt) receiptDocument {
	doc := receiptDocument{
		OrderID:       r.OrderID,
		SegmentID:     r.SegmentID,
		PaidAt:        r.PaidAt.UTC(),
		CorrelationID: r.CorrelationID,
		Currency:      r.Currency,
		Subtotal:      r.Subtotal,
		Fees:          r.Fees,
		Total:         r.Total,
		Method: methodDocument{
			ID:    r.Method.ID,
			Type:  string(r.Method.Type),
			Label: r.Method.Label,
			Last4: r.Method.Last4,
		},
		Items: make([]lineDocument, 0, len(r.Items)),
	}
	for _, line := range r.Items {
		doc.Items = append(doc.Items, lineDocument{
			ItemID:           line.Item.ID,
			Type:             string(line.Item.Type),
			Title:            line.Item.Title,
			Provider:         line.Item.ProviderName,
			Amount:           line.Item.Amount,
			Status:           string(line.Confirmation.Status),
			ConfirmationCode: line.Confirmation.ConfirmationCode,
			Reason:           line.Confirmation.Reason,
		})
	}
	return doc
}

// writeReceipt encodes r as indented JSON (the API's export shape) or TOML.
func writeReceipt(w io.Writer, r *budget.OrderReceipt, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatTOML:
		return toml.NewEncoder(w).Encode(newReceiptDocument(r))
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
