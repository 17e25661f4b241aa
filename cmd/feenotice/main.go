package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"preschoolfees/internal/app"
	"preschoolfees/internal/logger"
	"preschoolfees/internal/repository"
	"preschoolfees/internal/service"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit.
// A send with failed families exits with 2.
func run() int {
	sendCmd := flag.NewFlagSet("send", flag.ExitOnError)
	sendDate := sendCmd.String("date", "", "Reference date YYYY-MM-DD (default: today)")

	scheduleCmd := flag.NewFlagSet("schedule", flag.ExitOnError)
	scheduleSpec := scheduleCmd.String("cron", "", "Cron schedule (default: NOTICE_SCHEDULE)")

	if len(os.Args) < 2 {
		printUsage()
		return 1
	}

	switch os.Args[1] {
	case "send":
		sendCmd.Parse(os.Args[2:])
	case "schedule":
		scheduleCmd.Parse(os.Args[2:])
	default:
		printUsage()
		return 1
	}

	a, err := app.Open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := a.Config
	emails, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.SESSendRate)
	if err != nil {
		logger.Error().Err(err).Msg("failed to set up email")
		return 1
	}

	families := service.NewFamilyService(a.DB)
	fees := service.NewFeeService(families, repository.NewSnippetRepository(a.DB))
	notices := service.NewNoticeService(fees, emails, a.Location)

	if os.Args[1] == "send" {
		on, err := a.ParseDate(*sendDate)
		if err != nil {
			logger.Error().Err(err).Msg("bad -date")
			return 1
		}
		result, err := notices.SendAll(ctx, on)
		if err != nil {
			logger.Error().Err(err).Msg("fee notice failed")
			return 1
		}
		if result.Failed > 0 {
			return 2
		}
		return 0
	}

	spec := *scheduleSpec
	if spec == "" {
		spec = cfg.NoticeSchedule
	}
	scheduler, err := notices.Schedule(ctx, spec)
	if err != nil {
		logger.Error().Err(err).Msg("failed to schedule notices")
		return 1
	}
	scheduler.Start()
	logger.Info().Str("schedule", spec).Str("timezone", cfg.Timezone).Msg("fee notices scheduled")

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	<-scheduler.Stop().Done()
	return 0
}

func printUsage() {
	fmt.Println("Preschool fee notices")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  feenotice send [-date YYYY-MM-DD]    Mail fee statements once")
	fmt.Println("  feenotice schedule [-cron SPEC]      Mail fee statements on a cron schedule")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  SES_FROM_EMAIL     Sender address; statements are only logged when empty")
	fmt.Println("  NOTICE_SCHEDULE    Default cron schedule (default: 0 6 1 * *)")
	fmt.Println("  TIMEZONE           Timezone for schedule and today (default: Europe/Stockholm)")
}
