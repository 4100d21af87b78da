package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/flopayments/recongen/config"
	"github.com/flopayments/recongen/dataset"
	"github.com/flopayments/recongen/generator"
	"github.com/flopayments/recongen/registry"
	"github.com/flopayments/recongen/textgen"
)

func main() {
	app := &cli.App{
		Name:  "recongen",
		Usage: "generate labeled invoice/payment reconciliation datasets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "generation plan JSON file (defaults apply when omitted)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "out",
				Usage:   "output directory",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "override the plan seed",
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "override the plan total size",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "override the worker count",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "csv",
				Usage: "export format: csv, xlsx or both",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		config.GetLogger().Fatal(err)
	}
}

func run(c *cli.Context) error {
	logger := config.GetLogger()

	plan, err := loadPlan(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("seed", plan.Seed).WithField("total_size", plan.TotalSize).Info("generation started")

	sch := generator.NewScheduler(plan, registry.NewLocal(plan.Seed), textgen.FromEnv())
	scenarios, report, err := sch.Run(ctx)
	if err != nil {
		return err
	}

	assembled, err := dataset.Assemble(plan, scenarios, report)
	if err != nil {
		return err
	}

	exporter := dataset.NewExporter(c.String("output"), plan.Reference())
	format := c.String("format")
	if format == "csv" || format == "both" {
		if err := exporter.WriteCSV(assembled); err != nil {
			return err
		}
	}
	if format == "xlsx" || format == "both" {
		if err := exporter.WriteXLSX(assembled); err != nil {
			return err
		}
	}
	if err := exporter.WriteMetadata(report); err != nil {
		return err
	}

	logger.WithField("output", c.String("output")).Info("dataset written")
	return nil
}

func loadPlan(c *cli.Context) (*config.Plan, error) {
	var plan *config.Plan
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		plan = loaded
	} else {
		plan = config.DefaultPlan()
	}

	if c.IsSet("seed") {
		plan.Seed = c.Int64("seed")
	}
	if c.IsSet("size") {
		plan.TotalSize = c.Int("size")
	}
	if c.IsSet("workers") {
		plan.Workers = c.Int("workers")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
