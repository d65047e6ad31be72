// Command riskctl trains the credit risk model from a CSV file and prints a
// risk assessment report for one customer profile.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/dataset"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
	"github.com/bibbank/creditrisk/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "riskctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg := config.Load()
	if err := cfg.LoadError(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("riskctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dataPath := fs.String("data", cfg.Risk.DataPath, "training CSV path")
	interactive := fs.Bool("interactive", false, "prompt for profiles on stdin")
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	income := fs.Float64("income", 0, "annual income")
	debt := fs.Float64("debt", 0, "total debt outstanding")
	fico := fs.Float64("fico", 0, "FICO score")
	lines := fs.Float64("credit-lines", 0, "number of credit lines outstanding")
	loan := fs.Float64("loan", 0, "loan amount outstanding")
	years := fs.Float64("years-employed", 0, "years employed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	riskCfg, err := cfg.RiskConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{Output: stderr, Level: *logLevel, Format: "text"})

	trainUC := usecase.NewTrainModel(
		dataset.NewCSVLoader(*dataPath),
		ml.NewLogisticRegression(ml.DefaultLogisticRegressionConfig()),
		usecase.TrainModelConfig{
			Risk:       riskCfg,
			Classifier: "logistic_regression",
			TestSize:   cfg.Risk.TestSize,
			Seed:       cfg.Risk.Seed,
		},
		logger,
	)
	trained, err := trainUC.Execute(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Model evaluation (accuracy %.4f on %d hold-out rows)\n%s\n",
		trained.Info.Evaluation.Accuracy, trained.Info.TestRows, trained.Info.Evaluation.Report())

	models := usecase.NewModelRegistry()
	models.Activate(trained)
	scoreUC := usecase.NewScoreProfile(models)

	if !*interactive {
		profile := map[string]float64{
			model.FieldIncome:        *income,
			model.FieldTotalDebt:     *debt,
			model.FieldFICOScore:     *fico,
			model.FieldCreditLines:   *lines,
			model.FieldLoanAmount:    *loan,
			model.FieldYearsEmployed: *years,
		}
		resp, err := scoreUC.Execute(ctx, dto.ScoreRequest{Profile: profile})
		if err != nil {
			return err
		}
		writeReport(stdout, resp)
		return nil
	}

	in := bufio.NewScanner(stdin)
	for {
		profile, err := readProfile(in, stdout)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, errNotNumeric) {
			fmt.Fprintln(stdout, "Error: please enter valid numeric values.")
			continue
		}
		if err != nil {
			return fmt.Errorf("reading profile: %w", err)
		}

		resp, err := scoreUC.Execute(ctx, dto.ScoreRequest{Profile: profile})
		if err != nil {
			logger.Error("assessment failed", slog.String("error", err.Error()))
			fmt.Fprintln(stdout, "Error:", err)
		} else {
			writeReport(stdout, resp)
		}

		answer, err := prompt(in, stdout, "\nAssess another customer? (y/n): ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading answer: %w", err)
		}
		if !strings.EqualFold(answer, "y") {
			return nil
		}
	}
}
