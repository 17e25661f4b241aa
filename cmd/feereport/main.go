package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"preschoolfees/internal/app"
	"preschoolfees/internal/logger"
	"preschoolfees/internal/repository"
	"preschoolfees/internal/service"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code so deferred cleanup happens before exit
func run(args []string, out io.Writer) int {
	flags := flag.NewFlagSet("feereport", flag.ContinueOnError)
	dateFlag := flags.String("date", "", "Reference date YYYY-MM-DD (default: today)")
	familyFlag := flags.Int64("family", 0, "Only report this family ID (default: every paying family)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	a, err := app.Open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	on, err := a.ParseDate(*dateFlag)
	if err != nil {
		logger.Error().Err(err).Msg("bad -date")
		return 1
	}

	families := service.NewFamilyService(a.DB)
	fees := service.NewFeeService(families, repository.NewSnippetRepository(a.DB))

	var reports []service.FamilyFeeReport
	if *familyFlag != 0 {
		report, err := fees.FamilyReport(*familyFlag, on)
		if err != nil {
			logger.Error().Err(err).Int64("family_id", *familyFlag).Msg("failed to build report")
			return 1
		}
		reports = append(reports, *report)
	} else {
		reports, err = fees.Reports(on)
		if err != nil {
			logger.Error().Err(err).Msg("failed to build reports")
			return 1
		}
	}

	subsidies, err := fees.CurrentSubsidiesTotal(on)
	if err != nil {
		logger.Error().Err(err).Msg("failed to sum subsidies")
		return 1
	}

	printReport(out, reports, subsidies, on.Format("2006-01-02"))
	return 0
}

func printReport(out io.Writer, reports []service.FamilyFeeReport, subsidies float64, date string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Fee report %s\n\n", date)

	var total float64
	for _, r := range reports {
		fmt.Fprintf(w, "%s (#%d)\tincome %d\t", r.Name, r.FamilyID, r.RelevantIncome)
		if r.ParentAtHome {
			fmt.Fprint(w, "parent at home")
		}
		fmt.Fprintln(w)
		for _, line := range r.Kids {
			free := ""
			if line.FreeWeek {
				free = "15h free"
			}
			fmt.Fprintf(w, "  %d. %s\t%.1f%%\t%s\t%.2f\n", line.BirthOrder, line.Name, line.Percent*100, free, line.Fee)
		}
		fmt.Fprintf(w, "  total\t\t\t%.0f\n", r.TotalFee)
		total += r.TotalFee
	}

	fmt.Fprintf(w, "\nFamilies\t%d\n", len(reports))
	fmt.Fprintf(w, "Fees total\t%.0f\n", total)
	fmt.Fprintf(w, "Subsidies total\t%.2f\n", subsidies)
	w.Flush()
}
