package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"preschoolfees/internal/app"
	"preschoolfees/internal/logger"
	"preschoolfees/internal/service"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit
func run() int {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		return 1
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			return 1
		}
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

	backupService := service.NewBackupService(a.DB)

	if os.Args[1] == "export" {
		err = handleExport(backupService, *exportOutput)
	} else {
		err = handleImport(backupService, *importInput, *importClear)
	}
	if err != nil {
		logger.Error().Err(err).Msg(os.Args[1] + " failed")
		return 1
	}
	return 0
}

func handleExport(backupService *service.BackupService, outputPath string) error {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := backupService.Export(outputPath); err != nil {
		return err
	}

	if info, err := os.Stat(outputPath); err == nil {
		logger.Info().Str("path", outputPath).Int64("bytes", info.Size()).Msg("export complete")
	}
	return nil
}

func handleImport(backupService *service.BackupService, inputPath string, clearData bool) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}

	if clearData {
		fmt.Print("WARNING: This will delete all families, kids, snippets and history. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			logger.Info().Msg("import cancelled")
			return nil
		}
		if err := backupService.Clear(); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
	}

	if err := backupService.Import(inputPath); err != nil {
		return err
	}
	logger.Info().Str("path", inputPath).Msg("import complete")
	return nil
}

func printUsage() {
	fmt.Println("Preschool fees database backup tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export database to JSON file")
	fmt.Println("  backup import [options]    Import database from JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./preschoolfees.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
