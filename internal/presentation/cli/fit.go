package cli

import (
	"context"

	urfave "github.com/urfave/cli/v3"

	"github.com/strokeguard/strokeguard/internal/application/usecase"
	"github.com/strokeguard/strokeguard/internal/infrastructure/artifact"
)

func (a *app) fitCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "fit",
		Usage: "Fit the preprocessing transform from a training CSV",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Training CSV with a header row",
				Required: true,
			},
			&urfave.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Where to write the transform artifact",
				Value:   defaultTransformPath,
			},
		},
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			rows, err := readDataset(cmd.String("data"))
			if err != nil {
				return err
			}
			report, err := usecase.NewFitTransform(artifact.NewFileStore(), a.logger).Execute(ctx, rows, cmd.String("out"))
			if err != nil {
				return err
			}
			return a.encode(report)
		},
	}
}
