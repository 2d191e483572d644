package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-ebics/pkg/client"
	"github.com/sirosfoundation/go-ebics/pkg/request"
)

// upload <order-type> <file>: send the initialisation message of an upload
func uploadCmd() *cobra.Command {
	var (
		fileFormat   string
		countryCode  string
		test         bool
		segmentsPath string
	)

	cmd := &cobra.Command{
		Use:   "upload <order-type> <file>",
		Short: "Upload order data (CCT, CDD, FUL, ...)",
		Long: `Sends the initialisation message of an upload. The encrypted order data
segments are written to --segments; send them with "ebics transfer" once the
bank has returned a transaction id.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderType := strings.ToUpper(args[0])
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading order data: %w", err)
			}

			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			params := request.FileParams{FileFormat: fileFormat, CountryCode: countryCode, Test: test}
			created := a.client.NewUpload(orderType, data)
			if orderType == request.OrderTypeFileUpload {
				created = a.client.NewFileUpload(params, data)
			}

			if dryRun {
				return printPrepared(cmd, a, created)
			}

			var result *client.Result
			if orderType == request.OrderTypeFileUpload {
				result, err = a.client.UploadFile(cmd.Context(), params, data)
			} else {
				result, err = a.client.Upload(cmd.Context(), orderType, data)
			}
			if err != nil {
				return err
			}

			if err := writeSegments(segmentsPath, result.Pending()); err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&fileFormat, "file-format", "", "FUL file format, e.g. pain.001.001.03")
	cmd.Flags().StringVar(&countryCode, "country", "", "FUL file format country code")
	cmd.Flags().BoolVar(&test, "test", false, "mark a FUL order as test")
	cmd.Flags().StringVar(&segmentsPath, "segments", "segments.txt", "where to write the order data segments")
	return cmd
}

// The segments file starts with "<order type> <order id>", followed by one
// base64 segment per line.
func writeSegments(path string, pending client.Pending) error {
	lines := append([]string{pending.OrderType + " " + pending.OrderID}, pending.Segments...)
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}

func readSegments(path string) (client.Pending, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.Pending{}, fmt.Errorf("reading segments: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return client.Pending{}, fmt.Errorf("no segments in %s", path)
	}
	orderType, orderID, ok := strings.Cut(lines[0], " ")
	if !ok || !request.ValidOrderID(orderID) {
		return client.Pending{}, fmt.Errorf("%s: malformed order line %q", path, lines[0])
	}
	return client.Pending{OrderType: orderType, OrderID: orderID, Segments: lines[1:]}, nil
}
