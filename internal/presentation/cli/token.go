package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	urfave "github.com/urfave/cli/v3"

	"github.com/strokeguard/strokeguard/pkg/auth"
)

func (a *app) tokenCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "token",
		Usage: "Issue a bearer token for calling predict",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     "subject",
				Usage:    "Token subject",
				Required: true,
			},
			&urfave.StringSliceFlag{
				Name:  "role",
				Usage: fmt.Sprintf("Role to grant, repeatable %v", auth.PredictRoles),
				Value: []string{auth.RoleClinician},
			},
			&urfave.StringFlag{
				Name:    "secret",
				Usage:   "HMAC signing secret",
				Sources: urfave.EnvVars("JWT_SECRET"),
			},
			&urfave.StringFlag{
				Name:    "private-key",
				Usage:   "PEM RSA private key file; takes precedence over --secret",
				Sources: urfave.EnvVars("JWT_PRIVATE_KEY_FILE"),
			},
			&urfave.StringFlag{
				Name:    "issuer",
				Usage:   "Token issuer",
				Value:   "strokeguard",
				Sources: urfave.EnvVars("JWT_ISSUER"),
			},
			&urfave.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime",
				Value: time.Hour,
			},
		},
		Action: func(_ context.Context, cmd *urfave.Command) error {
			cfg := auth.JWTConfig{
				Secret:     cmd.String("secret"),
				Issuer:     cmd.String("issuer"),
				Expiration: cmd.Duration("ttl"),
			}
			if path := cmd.String("private-key"); path != "" {
				pem, err := auth.LoadKeyFromFile(path)
				if err != nil {
					return err
				}
				cfg.PrivateKeyPEM = string(pem)
			}
			if cfg.Secret == "" && cfg.PrivateKeyPEM == "" {
				return errors.New("--secret or --private-key is required")
			}

			svc, err := auth.NewJWTService(cfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(cmd.String("subject"), cmd.StringSlice("role"))
			if err != nil {
				return err
			}
			return a.encode(map[string]string{"token": token})
		},
	}
}
