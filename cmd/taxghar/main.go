package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taxghar/taxghar/internal/batch"
	"github.com/taxghar/taxghar/internal/calculation"
	"github.com/taxghar/taxghar/internal/config"
	"github.com/taxghar/taxghar/internal/consolidate"
	"github.com/taxghar/taxghar/internal/domain"
	"github.com/taxghar/taxghar/internal/output"
	"github.com/taxghar/taxghar/internal/rules"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "taxghar %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(os.Stdout, info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "taxghar",
	Short: "Indian personal income tax calculator",
	Long:  "Year-aware income tax calculator for salaried taxpayers: old and new regime, multi-employer consolidation, exemption components and Section 89 relief",
}

// ruleProvider honours --rules-dir so rule data can be overridden
// without a rebuild; otherwise the embedded rule files are used.
func ruleProvider(cmd *cobra.Command) *rules.Provider {
	dir, _ := cmd.Flags().GetString("rules-dir")
	if dir != "" {
		provider, err := rules.NewProviderFromDir(dir)
		if err != nil {
			log.Fatal(err)
		}
		return provider
	}
	provider, err := rules.NewProvider()
	if err != nil {
		log.Fatal(err)
	}
	return provider
}

func newCalculator(cmd *cobra.Command) *calculation.Calculator {
	calc := calculation.NewCalculator(ruleProvider(cmd))
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		calc.SetLogger(simpleCLILogger{})
	}
	return calc
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [case-file]",
	Short: "Compute tax for a case file or manual figures",
	Long:  "Computes liability under every regime the year offers (or the regimes given with --regime) and recommends the cheaper one. With no case file, --salary and the other manual flags describe the income.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var cf *config.CaseFile
		var err error

		parser := config.NewInputParser()
		if len(args) == 1 {
			cf, err = parser.LoadFromFile(args[0])
			if err != nil {
				log.Fatal(err)
			}
		} else {
			cf, err = caseFileFromFlags(cmd)
			if err != nil {
				log.Fatal(err)
			}
			if err := parser.ValidateCaseFile(cf); err != nil {
				log.Fatal(err)
			}
		}
		if err := applyOverrides(cmd, cf); err != nil {
			log.Fatal(err)
		}

		req, err := cf.ToRequest()
		if err != nil {
			log.Fatal(err)
		}

		calc := newCalculator(cmd)
		assessment, err := calc.Calculate(context.Background(), req)
		if err != nil {
			log.Fatal(err)
		}
		assessment.Warnings = append(assessment.Warnings, parser.ConfidenceFindings(cf)...)

		printAssessment(cmd, assessment)
	},
}

// caseFileFromFlags builds a single-record case file from the manual
// entry flags.
func caseFileFromFlags(cmd *cobra.Command) (*config.CaseFile, error) {
	salary, err := decimalFlag(cmd, "salary")
	if err != nil {
		return nil, err
	}
	if salary.IsZero() {
		return nil, fmt.Errorf("either a case file or --salary is required")
	}

	record := domain.IncomeRecord{SalaryIncome: salary}
	record.EmployeePAN, _ = cmd.Flags().GetString("pan")
	record.EmployerName, _ = cmd.Flags().GetString("employer")
	record.FinancialYear, _ = cmd.Flags().GetString("financial-year")
	if record.FinancialYear == "" {
		// Fall back to the assessment year flag: the income belongs to
		// the financial year immediately before it.
		if year, _ := cmd.Flags().GetString("year"); year != "" {
			record.FinancialYear = string(domain.AssessmentYear(year).PriorYear())
		}
	}
	if record.EmployeePAN == "" {
		record.EmployeePAN = "SELF"
	}
	if record.EmployerName == "" {
		record.EmployerName = "manual entry"
	}

	for flag, target := range map[string]*decimal.Decimal{
		"basic":        &record.BasicSalary,
		"da":           &record.DearnessAllowance,
		"hra-received": &record.HRAReceived,
		"prof-tax":     &record.ProfessionalTax,
		"tds":          &record.TDSDeducted,
	} {
		value, err := decimalFlag(cmd, flag)
		if err != nil {
			return nil, err
		}
		*target = value
	}

	record.Deductions = map[string]decimal.Decimal{}
	pairs, _ := cmd.Flags().GetStringArray("deduction")
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("deduction %q: want section=amount, e.g. 80c=150000", pair)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("deduction %q: %w", pair, err)
		}
		record.Deductions[strings.ToLower(key)] = amount
	}

	return &config.CaseFile{Records: []domain.IncomeRecord{record}}, nil
}

// applyOverrides lets flags win over whatever the case file says.
func applyOverrides(cmd *cobra.Command, cf *config.CaseFile) error {
	if year, _ := cmd.Flags().GetString("year"); year != "" {
		cf.AssessmentYear = domain.AssessmentYear(year)
	}
	if regimes, _ := cmd.Flags().GetStringSlice("regime"); len(regimes) > 0 {
		cf.Regimes = nil
		for _, r := range regimes {
			cf.Regimes = append(cf.Regimes, domain.Regime(strings.ToLower(r)))
		}
	}
	if age, _ := cmd.Flags().GetString("age"); age != "" {
		cf.Age = domain.AgeCategory(age)
	}
	if metro, _ := cmd.Flags().GetBool("metro"); metro {
		cf.Components.City = domain.CityMetro
	}
	rent, err := decimalFlag(cmd, "rent")
	if err != nil {
		return err
	}
	if rent.IsPositive() {
		cf.Components.RentPaid = rent
	}
	if state, _ := cmd.Flags().GetString("state"); state != "" {
		cf.Components.StateOfResidence = state
	}
	return nil
}

func printAssessment(cmd *cobra.Command, assessment *domain.Assessment) {
	format, _ := cmd.Flags().GetString("format")
	formatter, err := output.ForFormat(format)
	if err != nil {
		log.Fatal(err)
	}
	data, err := formatter.Format(assessment)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(data))
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate [case-file...]",
	Short: "Merge multi-employer records into one",
	Long:  "Gathers the income records from the given case files, checks they belong to one taxpayer and year, and prints the merged record with any findings. Use it to inspect the consolidation before calculating.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		var records []domain.IncomeRecord
		for _, path := range args {
			cf, err := parser.LoadFromFile(path)
			if err != nil {
				log.Fatal(err)
			}
			records = append(records, cf.Records...)
		}

		merged, err := consolidate.Consolidate(records)
		if err != nil {
			log.Fatal(err)
		}
		data, err := yaml.Marshal(merged)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(string(data))
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [path...]",
	Short: "Run many case files concurrently",
	Long:  "Each path is a case file or a directory of .yaml/.yml/.json case files. A bad file fails alone; the rest of the batch completes.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		paths, err := expandPaths(args)
		if err != nil {
			log.Fatal(err)
		}
		if len(paths) == 0 {
			log.Fatal("no case files found")
		}

		runner := batch.NewRunner(newCalculator(cmd))
		if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
			runner.Workers = workers
		}
		if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
			runner.Logger = simpleCLILogger{}
		}

		result, err := runner.Run(context.Background(), paths)
		if err != nil {
			log.Fatal(err)
		}

		data, err := yaml.Marshal(result)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(string(data))
		if result.Failed > 0 {
			os.Exit(1)
		}
	},
}

// expandPaths flattens directory arguments into their case files.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch filepath.Ext(entry.Name()) {
			case ".yaml", ".yml", ".json":
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List supported assessment years and their regimes",
	Run: func(cmd *cobra.Command, args []string) {
		provider := ruleProvider(cmd)
		for _, year := range provider.SupportedYears() {
			regimes, err := provider.AvailableRegimes(year)
			if err != nil {
				log.Fatal(err)
			}
			def, err := provider.DefaultRegime(year)
			if err != nil {
				log.Fatal(err)
			}
			var labels []string
			for _, regime := range regimes {
				label := string(regime)
				if regime == def {
					label += " (default)"
				}
				labels = append(labels, label)
			}
			fmt.Printf("%s: %s\n", year, strings.Join(labels, ", "))
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [case-file]",
	Short: "Validate a case file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		cf, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Case file %s is valid (%d record(s))\n", args[0], len(cf.Records))
		for _, finding := range parser.ConfidenceFindings(cf) {
			fmt.Printf("note: %s\n", finding.Message)
		}
	},
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("flag --%s: %w", name, err)
	}
	return value, nil
}

func init() {
	rootCmd.PersistentFlags().String("rules-dir", "", "Load rule data from a directory instead of the embedded files")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	calculateCmd.Flags().String("format", "console", "Output format (console, json, csv, yaml)")
	calculateCmd.Flags().String("year", "", "Assessment year, e.g. 2024-25 (default: derived from the records)")
	calculateCmd.Flags().StringSlice("regime", nil, "Regimes to compute (old, new); default is every regime the year offers")
	calculateCmd.Flags().String("age", "", "Age category: below_60, senior, super_senior")
	calculateCmd.Flags().String("rent", "", "Annual rent paid, enables the HRA exemption")
	calculateCmd.Flags().Bool("metro", false, "Residence is in a metro city")
	calculateCmd.Flags().String("state", "", "State of residence, resolves professional tax when the record lacks it")

	// Manual entry, used when no case file is given.
	calculateCmd.Flags().String("salary", "", "Gross salary income under Section 17(1)")
	calculateCmd.Flags().String("basic", "", "Basic salary component")
	calculateCmd.Flags().String("da", "", "Dearness allowance")
	calculateCmd.Flags().String("hra-received", "", "HRA received from the employer")
	calculateCmd.Flags().String("prof-tax", "", "Professional tax deducted")
	calculateCmd.Flags().String("tds", "", "TDS already deducted")
	calculateCmd.Flags().String("pan", "", "Employee PAN")
	calculateCmd.Flags().String("employer", "", "Employer name")
	calculateCmd.Flags().String("financial-year", "", "Financial year of the income, e.g. 2023-24")
	calculateCmd.Flags().StringArray("deduction", nil, "Chapter VI-A claim as section=amount, repeatable (e.g. --deduction 80c=150000)")

	batchCmd.Flags().Int("workers", 0, "Concurrent workers (default 4)")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(yearsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
