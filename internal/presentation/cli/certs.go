package cli

import (
	"context"
	"path/filepath"

	urfave "github.com/urfave/cli/v3"

	"github.com/strokeguard/strokeguard/pkg/tlsutil"
)

func (a *app) certsCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "certs",
		Usage: "Generate a development CA and server certificate for the gRPC listener",
		Flags: []urfave.Flag{
			&urfave.StringSliceFlag{
				Name:  "host",
				Usage: "DNS name or IP the certificate covers, repeatable",
				Value: []string{"localhost", "127.0.0.1"},
			},
			&urfave.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   "certs",
			},
		},
		Action: func(_ context.Context, cmd *urfave.Command) error {
			dir := cmd.String("out")
			if err := tlsutil.GenerateSelfSignedCert(cmd.StringSlice("host"), dir); err != nil {
				return err
			}
			return a.encode(map[string]string{
				"ca":       filepath.Join(dir, "ca.pem"),
				"cert":     filepath.Join(dir, "server.pem"),
				"key":      filepath.Join(dir, "server-key.pem"),
				"env_cert": "GRPC_TLS_CERT_FILE",
				"env_key":  "GRPC_TLS_KEY_FILE",
			})
		},
	}
}
