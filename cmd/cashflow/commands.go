package main

import (
	"context"
	"fmt"
	"io"

	"cashflow/internal/report"
	"cashflow/internal/scenario"
	"cashflow/internal/settlement"
	"cashflow/pkg/config"
	"cashflow/pkg/logger"
	"cashflow/pkg/validator"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "cashflow",
		Short: "Minimise the transfers needed to settle debts between parties",
		Long: `cashflow nets out the debts between a group of parties and prints the
smallest set of transfers that settles every balance. Parties only pay each
other over a payment channel they share; an intermediary that accepts every
channel bridges the rest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	settleCmd = &cobra.Command{
		Use:   "settle",
		Short: "Settle a scenario file and print the minimised transfers",
		Args:  cobra.NoArgs,
		RunE:  runSettle,
	}
	balancesCmd = &cobra.Command{
		Use:   "balances",
		Short: "Print the net balance of every party in a scenario file",
		Args:  cobra.NoArgs,
		RunE:  runBalances,
	}
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check a scenario file without settling it",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
	demoCmd = &cobra.Command{
		Use:   "demo [name]",
		Short: "Settle the built-in sample scenarios",
		Long:  `Runs one built-in scenario by name, or all of them when no name is given. Use --list to see the names.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDemo,
	}

	scenarioPath string
	jsonOutput   bool
	logLevel     string
	listSamples  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{settleCmd, balancesCmd, validateCmd} {
		cmd.Flags().StringVarP(&scenarioPath, "file", "f", "", "scenario file (.yaml, .yml or .json)")
		_ = cmd.MarkFlagRequired("file")
	}
	settleCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the plan as JSON")
	balancesCmd.Flags().BoolVar(&jsonOutput, "json", false, "print balances as JSON")
	demoCmd.Flags().BoolVar(&jsonOutput, "json", false, "print plans as JSON")
	demoCmd.Flags().BoolVar(&listSamples, "list", false, "list the built-in scenarios")

	rootCmd.AddCommand(settleCmd, balancesCmd, validateCmd, demoCmd)
}

// app bundles what every command needs.
type app struct {
	cfg       *config.Config
	limits    scenario.Limits
	validator *validator.Validator
	service   *settlement.Service
}

func newApp(stderr io.Writer) *app {
	cfg := config.Load()
	log := logger.NewWithWriter("cashflow", stderr, logger.ParseLevel(logLevel))

	return &app{
		cfg:       cfg,
		limits:    scenario.LimitsFromConfig(cfg),
		validator: validator.New(),
		service:   settlement.NewService(nil, log, cfg.Settlement.CacheTTL),
	}
}

func (a *app) load(path string) (*scenario.File, *settlement.Request, error) {
	f, err := scenario.Load(path)
	if err != nil {
		return nil, nil, err
	}
	req, err := scenario.Build(f, a.validator, a.limits)
	if err != nil {
		return nil, nil, err
	}
	return f, req, nil
}

func runSettle(cmd *cobra.Command, args []string) error {
	a := newApp(cmd.ErrOrStderr())

	_, req, err := a.load(scenarioPath)
	if err != nil {
		return err
	}
	return a.settle(cmd.Context(), cmd.OutOrStdout(), req)
}

func (a *app) settle(ctx context.Context, out io.Writer, req *settlement.Request) error {
	plan, err := a.service.Settle(ctx, req)
	if err != nil {
		return err
	}

	if jsonOutput {
		return report.JSON(out, plan)
	}
	report.Plan(out, plan)
	return nil
}

func runBalances(cmd *cobra.Command, args []string) error {
	a := newApp(cmd.ErrOrStderr())

	_, req, err := a.load(scenarioPath)
	if err != nil {
		return err
	}

	balances, err := a.service.Balances(cmd.Context(), req)
	if err != nil {
		return err
	}

	if jsonOutput {
		return report.JSON(cmd.OutOrStdout(), balances)
	}
	report.Balances(cmd.OutOrStdout(), balances)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	a := newApp(cmd.ErrOrStderr())

	f, req, err := a.load(scenarioPath)
	if err != nil {
		return err
	}

	intermediary := "none"
	if req.Intermediary >= 0 && req.Intermediary < len(req.Parties) {
		intermediary = req.Parties[req.Intermediary].Name
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[SUCCESS] %s is valid: %d parties, %d debts, intermediary %s\n",
		displayName(f, scenarioPath), len(req.Parties), len(f.Debts), intermediary)
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if listSamples {
		for _, name := range scenario.SampleNames() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	names := scenario.SampleNames()
	if len(args) == 1 {
		names = args
	}

	a := newApp(cmd.ErrOrStderr())
	for _, name := range names {
		f, err := scenario.Sample(name)
		if err != nil {
			return err
		}
		req, err := scenario.Build(f, a.validator, a.limits)
		if err != nil {
			return err
		}

		if !jsonOutput {
			report.Section(out, displayName(f, name)+": "+f.Description)
		}
		if err := a.settle(cmd.Context(), out, req); err != nil {
			return err
		}
	}
	return nil
}

func displayName(f *scenario.File, fallback string) string {
	if f.Name != "" {
		return f.Name
	}
	return fallback
}
