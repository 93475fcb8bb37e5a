package main

import (
	"fmt"
	"io"
	"os"

	"charge-relay/internal/config"
	"charge-relay/internal/middleware"
	"charge-relay/internal/signature"

	"github.com/spf13/cobra"
)

var signSecret string

// signCmd prints the signature header value for a payload, for replaying
// provider deliveries against a local server.
var signCmd = &cobra.Command{
	Use:   "sign [file]",
	Short: "Print the webhook signature for a payload file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		body, err := middleware.ReadRawBody(in, 0)
		if err != nil {
			return err
		}

		secret := signSecret
		if secret == "" {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			secret = cfg.Webhook.Secret
		}
		if secret == "" {
			return fmt.Errorf("no webhook secret: pass --secret or configure one")
		}

		fmt.Fprintln(cmd.OutOrStdout(), signature.Sign(body, secret))
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signSecret, "secret", "", "shared webhook secret (default: from config)")
}
