package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	urfave "github.com/urfave/cli/v3"

	"github.com/strokeguard/strokeguard/internal/application/dto"
	"github.com/strokeguard/strokeguard/pkg/tlsutil"
)

func (a *app) healthCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "health",
		Usage: "Query a running service's health endpoint",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  "url",
				Usage: "Base URL of the service",
				Value: "http://localhost:8000",
			},
			&urfave.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: 5 * time.Second,
			},
			&urfave.StringFlag{
				Name:  "ca",
				Usage: "CA certificate for https URLs (defaults to the system pool)",
			},
			&urfave.BoolFlag{
				Name:  "insecure",
				Usage: "Skip TLS certificate verification",
			},
		},
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			client, err := healthClient(cmd.String("url"), cmd.String("ca"), cmd.Bool("insecure"))
			if err != nil {
				return err
			}
			report, err := fetchHealth(ctx, client, cmd.String("url"), cmd.Duration("timeout"))
			if err != nil {
				return err
			}
			return a.encode(report)
		},
	}
}

func healthClient(baseURL, caFile string, insecure bool) (*http.Client, error) {
	if !strings.HasPrefix(baseURL, "https://") {
		return http.DefaultClient, nil
	}
	tlsCfg, err := tlsutil.ClientConfig(caFile, insecure)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}, nil
}

func fetchHealth(ctx context.Context, client *http.Client, baseURL string, timeout time.Duration) (dto.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil)
	if err != nil {
		return dto.HealthResponse{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return dto.HealthResponse{}, fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dto.HealthResponse{}, fmt.Errorf("health request: unexpected status %s", resp.Status)
	}

	var report dto.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return dto.HealthResponse{}, fmt.Errorf("decode health response: %w", err)
	}
	return report, nil
}
