package cli

import (
	"context"

	urfave "github.com/urfave/cli/v3"

	"github.com/strokeguard/strokeguard/internal/application/usecase"
)

func (a *app) evaluateCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "evaluate",
		Usage: "Report ROC AUC, confusion matrix and per-class metrics on a labelled CSV",
		Flags: []urfave.Flag{
			transformFlag(),
			modelFlag(),
			&urfave.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Labelled CSV with a header row",
				Required: true,
			},
			&urfave.StringFlag{
				Name:  "label",
				Usage: "Name of the 0/1 label column",
				Value: "stroke",
			},
		},
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			rows, err := readDataset(cmd.String("data"))
			if err != nil {
				return err
			}
			ictx := a.bootstrap(ctx, cmd.String("transform"), cmd.String("model"))
			report, err := usecase.NewEvaluateClassifier(ictx, a.logger).Execute(ctx, labelRows(rows, cmd.String("label")))
			if err != nil {
				return err
			}
			return a.encode(report)
		},
	}
}
