package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-ebics/pkg/security"
)

// transfer <transaction-id>: send the segments written by upload
func transferCmd() *cobra.Command {
	var segmentsPath string

	cmd := &cobra.Command{
		Use:   "transfer <transaction-id>",
		Short: "Send the order data segments of an upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transactionID, err := security.DecodeHex(args[0])
			if err != nil {
				return fmt.Errorf("transaction id: %w", err)
			}
			pending, err := readSegments(segmentsPath)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			responses, err := a.client.Transfer(cmd.Context(), transactionID, pending)
			for i, response := range responses {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s segment %d/%d\n", pending.OrderType, pending.OrderID, i+1, len(pending.Segments))
				fmt.Fprintln(cmd.OutOrStdout(), string(response))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&segmentsPath, "segments", "segments.txt", "segments written by upload")
	return cmd
}
