// Package cli defines the cobra command tree for reviewctl.
package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"reviewboard/internal/client"
)

const defaultServerURL = "http://localhost:8080"

var (
	flagFormat string
	flagServer string
	flagTokens string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Post and manage anonymous product reviews",
		Long:          "A client for the reviewboard API. Reviews you post are remembered by their ownership token so you can edit or delete them later.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagServer, "server", envOr("REVIEWBOARD_URL", defaultServerURL), "reviewboard server URL")
	root.PersistentFlags().StringVar(&flagTokens, "tokens", "", "ownership token file (default: ~/.config/reviewctl/tokens.yaml)")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newShowCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newStatsCmd(),
	)

	return root
}

// newAPIClient builds a client backed by the token file.
func newAPIClient() (*client.Client, error) {
	path := flagTokens
	if path == "" {
		var err error
		path, err = client.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
	}
	return client.New(flagServer, client.NewFileTokenStore(path)), nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
