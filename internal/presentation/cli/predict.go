package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	urfave "github.com/urfave/cli/v3"

	"github.com/strokeguard/strokeguard/internal/application/usecase"
	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/infrastructure/artifact"
)

func transformFlag() *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:    "transform",
		Usage:   "Path to the fitted transform artifact",
		Value:   defaultTransformPath,
		Sources: urfave.EnvVars("TRANSFORM_PATH"),
	}
}

func modelFlag() *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:    "model",
		Usage:   "Path to the classifier artifact",
		Value:   defaultModelPath,
		Sources: urfave.EnvVars("MODEL_PATH"),
	}
}

func (a *app) predictCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "predict",
		Usage: "Score one patient record locally, without a server",
		Flags: []urfave.Flag{
			transformFlag(),
			modelFlag(),
			&urfave.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file holding one record (\"-\" for stdin)",
			},
			&urfave.StringFlag{
				Name:  "record",
				Usage: "Record as an inline JSON object",
			},
			&urfave.BoolFlag{
				Name:  "strict",
				Usage: "Reject records with unknown keys",
			},
		},
		Action: a.predict,
	}
}

func (a *app) predict(ctx context.Context, cmd *urfave.Command) error {
	raw, err := a.readRecordArg(cmd.String("input"), cmd.String("record"))
	if err != nil {
		return err
	}

	ictx := a.bootstrap(ctx, cmd.String("transform"), cmd.String("model"))
	uc := usecase.NewPredictRisk(ictx, model.ValidateOptions{Strict: cmd.Bool("strict")}, nil, a.logger)

	resp, err := uc.Execute(ctx, raw)
	if err != nil {
		return err
	}
	return a.encode(resp)
}

func (a *app) bootstrap(ctx context.Context, transformPath, modelPath string) *usecase.InferenceContext {
	return usecase.NewBootstrap(artifact.NewFileStore(), nil, nil, a.logger).Execute(ctx, usecase.BootstrapConfig{
		TransformPath: transformPath,
		ModelPath:     modelPath,
		Instance:      "strokectl",
	})
}

func (a *app) readRecordArg(input, inline string) (map[string]any, error) {
	var data []byte
	switch {
	case input != "" && inline != "":
		return nil, errors.New("use either --input or --record, not both")
	case inline != "":
		data = []byte(inline)
	case input == "-":
		b, err := io.ReadAll(a.in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = b
	case input != "":
		b, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		data = b
	default:
		return nil, errors.New("a record is required: pass --input or --record")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, errors.New("record must be a JSON object")
	}
	return raw, nil
}
