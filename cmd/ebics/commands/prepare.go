package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-ebics/pkg/request"
)

// printPrepared writes the authenticated request to stdout without sending it
func printPrepared(cmd *cobra.Command, a *app, created *request.Created) error {
	serialized, segments, err := a.client.Prepare(cmd.Context(), created)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(serialized.Bytes()))
	if len(segments) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d order data segments not sent\n", len(segments))
	}
	return nil
}
