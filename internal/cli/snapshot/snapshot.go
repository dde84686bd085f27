package snapshot

import (
	"net/url"

	"github.com/kerraform/kota/internal/client"
	"github.com/kerraform/kota/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultURL = "http://localhost:5000"

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot related operations on a kota server",
		Aliases: []string{
			"snap",
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("url", "u", defaultURL, "Specify the endpoint of the kota server")
	viper.BindEnv("url", "KOTA_URL")
	viper.BindPFlag("url", flags.Lookup("url"))

	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	return cmd
}

func newClient() (*client.Client, error) {
	u, err := url.Parse(viper.GetString("url"))
	if err != nil {
		return nil, err
	}

	return client.New(u, client.WithUserAgent("kota-cli/"+version.Version)), nil
}
