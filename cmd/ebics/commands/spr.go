package commands

import (
	"github.com/spf13/cobra"
)

// spr: suspend the subscriber at the bank
func sprCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spr",
		Short: "Suspend the subscriber (SPR)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if dryRun {
				return printPrepared(cmd, a, a.client.NewRevocation())
			}

			result, err := a.client.Revoke(cmd.Context())
			if err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}
}
