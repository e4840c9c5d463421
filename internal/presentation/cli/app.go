// Package cli implements strokectl, the operator and offline tooling for the
// inference service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/strokeguard/strokeguard/pkg/observability"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"

	defaultTransformPath = "models/preprocessor.json"
	defaultModelPath     = "models/stroke_dnn.json"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

// app carries the state shared by every command.
type app struct {
	out    io.Writer
	in     io.Reader
	logger *slog.Logger
	format string
}

// Execute runs strokectl with os.Args and exits non-zero on failure.
func Execute(ctx context.Context) {
	cmd := New(os.Stdout, os.Stdin)
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// New builds the root command. Command output goes to out; "-" inputs read in.
func New(out io.Writer, in io.Reader) *urfave.Command {
	a := &app{out: out, in: in, logger: observability.NopLogger(), format: formatJSON}

	return &urfave.Command{
		Name:                  "strokectl",
		Version:               fmt.Sprintf("%s (commit: %s)", version, commit),
		Usage:                 "Stroke risk scoring, artifact fitting and service operations",
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  "debug",
				Usage: "Prints verbose logs to stderr",
			},
			&urfave.StringFlag{
				Name:  "format",
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			switch f := cmd.String("format"); f {
			case formatJSON:
				a.format = formatJSON
			case formatYAML, "yml":
				a.format = formatYAML
			default:
				return ctx, fmt.Errorf("unsupported output format %q", f)
			}
			level := "warn"
			if cmd.Bool("debug") {
				level = "debug"
			}
			a.logger = observability.InitLogger(observability.LogConfig{
				Output: os.Stderr,
				Level:  level,
				Format: "text",
			})
			return ctx, nil
		},
		Commands: []*urfave.Command{
			a.predictCmd(),
			a.fitCmd(),
			a.evaluateCmd(),
			a.healthCmd(),
			a.migrateCmd(),
			a.eventsCmd(),
			a.tokenCmd(),
			a.certsCmd(),
		},
	}
}

func (a *app) encode(v any) error {
	if a.format == formatYAML {
		enc := yaml.NewEncoder(a.out)
		defer enc.Close()
		return enc.Encode(v)
	}
	e := json.NewEncoder(a.out)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
