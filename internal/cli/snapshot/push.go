package snapshot

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type pushOpts struct {
	signatureURL string
}

func newPushCmd() *cobra.Command {
	opts := &pushOpts{}

	cmd := &cobra.Command{
		Use:   "push <url>",
		Short: "Store the normalized form of a remote document",
		Args:  cobra.ExactArgs(1),
		RunE:  runPushCmd(opts),
	}

	cmd.Flags().StringVar(&opts.signatureURL, "signature-url", "", "URL of the armored detached signature the server verifies")
	return cmd
}

func runPushCmd(opts *pushOpts) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		s, err := c.Snapshot.Create(context.Background(), args[0], opts.signatureURL)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", s.ID, s.Attributes.Variant)
		return nil
	}
}
