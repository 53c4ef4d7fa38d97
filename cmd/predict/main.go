// Command predict scores a single customer from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"churnpredict/artifact"
	"churnpredict/churn"
	"churnpredict/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config.yaml")
	scaler := fs.String("scaler", "", "scaler artifact path or URL (overrides config)")
	model := fs.String("model", "", "model artifact path or URL (overrides config)")
	tenure := fs.Float64("tenure", 0, "months as a customer (required)")
	complain := fs.String("complain", "", "complaint raised: Yes or No (required)")
	days := fs.Int("days", 0, "days since last order (required)")
	cashback := fs.Float64("cashback", 0, "cashback amount (required)")
	marital := fs.String("marital", "", "Single, Married or Divorced (required)")
	gender := fs.String("gender", "", "Male or Female (required)")
	verbose := fs.Bool("v", false, "log artifact loading")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if missing := missingFlags(fs, customerFlags); len(missing) > 0 {
		fmt.Fprintf(stderr, "Error: missing required flags: %s\n", strings.Join(missing, ", "))
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *scaler != "" {
		cfg.Artifacts.Scaler = *scaler
	}
	if *model != "" {
		cfg.Artifacts.Model = *model
	}

	req, err := buildRequest(*tenure, *complain, *days, *cashback, *marital, *gender)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log := zap.NewNop()
	if *verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(stderr, "Error: build logger: %v\n", err)
			return 1
		}
	}
	fetcher := artifact.NewSourceFetcher(cfg.Artifacts.FetchTimeout, cfg.Artifacts.MaxBytes, nil)
	loader, err := artifact.NewLoader(fetcher, 1, log, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	svc := churn.NewService(loader, churn.ServiceConfig{
		Locators:      artifact.Locators{Scaler: cfg.Artifacts.Scaler, Model: cfg.Artifacts.Model},
		PositiveClass: cfg.Model.PositiveClass,
	}, log, nil)

	pred, err := svc.Predict(context.Background(), req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Prediction: %s\n", pred.Label)
	return 0
}

// customerFlags describe the customer and have no meaningful default.
var customerFlags = []string{"tenure", "complain", "days", "cashback", "marital", "gender"}

func missingFlags(fs *flag.FlagSet, names []string) []string {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var missing []string
	for _, n := range names {
		if !set[n] {
			missing = append(missing, "-"+n)
		}
	}
	return missing
}

func buildRequest(tenure float64, complain string, days int, cashback float64, marital, gender string) (churn.Request, error) {
	hasComplaint, err := churn.ParseYesNo(complain)
	if err != nil {
		return churn.Request{}, fmt.Errorf("-complain: %w", err)
	}
	m, err := churn.ParseMaritalStatus(marital)
	if err != nil {
		return churn.Request{}, fmt.Errorf("-marital: %w", err)
	}
	g, err := churn.ParseGender(gender)
	if err != nil {
		return churn.Request{}, fmt.Errorf("-gender: %w", err)
	}
	return churn.Request{
		Tenure:             tenure,
		HasComplaint:       hasComplaint,
		DaysSinceLastOrder: days,
		CashbackAmount:     cashback,
		MaritalStatus:      m,
		Gender:             g,
	}, nil
}
