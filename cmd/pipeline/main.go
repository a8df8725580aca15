package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mr-pipeline/internal/config"
	"github.com/mr-pipeline/internal/db"
	"github.com/mr-pipeline/internal/diagnose"
	"github.com/mr-pipeline/internal/extract"
	"github.com/mr-pipeline/internal/ingest"
	"github.com/mr-pipeline/internal/lineage"
	"github.com/mr-pipeline/internal/match"
	"github.com/mr-pipeline/internal/pdftext"
)

var (
	// Global debug flag
	debugMode bool
)

func main() {
	// Load environment configuration
	config.LoadEnv()

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Market Report Data Pipeline",
		Long:  `Extracts structured real estate data from market report text and loads it into PostgreSQL with full source lineage`,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug output")

	// Add subcommands
	rootCmd.AddCommand(createExtractCmd())
	rootCmd.AddCommand(createIngestCmd())
	rootCmd.AddCommand(createMatchCmd())
	rootCmd.AddCommand(createLineageCmd())
	rootCmd.AddCommand(createSourcesCmd())
	rootCmd.AddCommand(createPdftextCmd())
	rootCmd.AddCommand(createDBCmd())
	rootCmd.AddCommand(createPingCmd())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// connectDB opens the database connection used by data commands
func connectDB() *db.Connection {
	dbConn, err := db.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return dbConn
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			fmt.Println("Database connection successful!")

			// Show some basic info
			var count int
			err := dbConn.DB.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count)
			if err != nil {
				log.Printf("Error counting projects: %v", err)
			} else {
				fmt.Printf("Projects loaded: %d\n", count)
			}

			err = dbConn.DB.QueryRow("SELECT COUNT(*) FROM source_reports").Scan(&count)
			if err != nil {
				log.Printf("Error counting source reports: %v", err)
			} else {
				fmt.Printf("Source reports registered: %d\n", count)
			}

			err = dbConn.DB.QueryRow("SELECT COUNT(*) FROM data_lineage").Scan(&count)
			if err != nil {
				log.Printf("Error counting lineage records: %v", err)
			} else {
				fmt.Printf("Lineage records: %d\n", count)
			}
		},
	}
}

// createExtractCmd creates the extract subcommand
func createExtractCmd() *cobra.Command {
	var sourceDir, outputDir string

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract structured records from report text",
		Long:  `Run extraction passes over page-marked report text files and write JSON artifacts`,
	}

	extractCmd.PersistentFlags().StringVar(&sourceDir, "source-dir", "data/source", "Directory containing page-marked report text")
	extractCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "data/extracted", "Directory for JSON artifacts")

	// Add extract subcommands
	extractCmd.AddCommand(createExtractCasestudyCmd(&sourceDir, &outputDir))
	extractCmd.AddCommand(createExtractMarketCmd(&sourceDir, &outputDir))
	extractCmd.AddCommand(createExtractPricingCmd(&sourceDir, &outputDir))
	extractCmd.AddCommand(createExtractAllCmd(&sourceDir, &outputDir))

	return extractCmd
}

func createExtractCasestudyCmd(sourceDir, outputDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "casestudy",
		Short: "Extract the mixed-use case study report",
		Run: func(cmd *cobra.Command, args []string) {
			runExtractor(extract.NewCaseStudy(*sourceDir, *outputDir))
		},
	}
}

func createExtractMarketCmd(sourceDir, outputDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Extract the market pass reports",
		Run: func(cmd *cobra.Command, args []string) {
			runExtractor(extract.NewMarketPass(*sourceDir, *outputDir))
		},
	}
}

func createExtractPricingCmd(sourceDir, outputDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pricing",
		Short: "Extract the price analysis reports",
		Run: func(cmd *cobra.Command, args []string) {
			runExtractor(extract.NewPriceAnalysis(*sourceDir, *outputDir))
		},
	}
}

func createExtractAllCmd(sourceDir, outputDir *string) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every extraction pass",
		Long:  `Run the case study, market pass, and price analysis extractions in parallel`,
		Run: func(cmd *cobra.Command, args []string) {
			runner := &extract.Runner{
				SourceDir: *sourceDir,
				OutputDir: *outputDir,
				Workers:   workers,
				Debug:     debugMode,
			}

			results, err := runner.Run(context.Background())
			if err != nil {
				log.Fatalf("Extraction failed: %v", err)
			}

			printExtractResults(results)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel extraction workers (0 = one per pass)")

	return cmd
}

// runExtractor runs one extraction driver and prints its artifact counts
func runExtractor(ex extract.Extractor) {
	results, err := ex.Extract()
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	printExtractResults(results)
}

func printExtractResults(results map[string]int) {
	fmt.Printf("\n=== Extraction Results ===\n")

	filenames := make([]string, 0, len(results))
	for filename := range results {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	total := 0
	for _, filename := range filenames {
		fmt.Printf("%-32s %6d records\n", filename, results[filename])
		total += results[filename]
	}
	fmt.Printf("Total: %d records\n", total)
}

// createIngestCmd creates the ingest subcommand
func createIngestCmd() *cobra.Command {
	var artifactDir, rulesPath string

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load extracted artifacts into the database",
		Long:  `Resolve project names against the catalogue and seed extracted records into PostgreSQL with lineage`,
	}

	ingestCmd.PersistentFlags().StringVar(&artifactDir, "artifacts", "data/extracted", "Directory containing JSON artifacts")
	ingestCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Match rules YAML file (defaults to built-in rules)")

	// Add ingest subcommands
	ingestCmd.AddCommand(createIngestBlocksCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestUnitTypesCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestFacilitiesCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestSalesPointsCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestPriceFactorsCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestSalesStatusesCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestSegmentsCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestDistrictMetricsCmd(&artifactDir, &rulesPath))
	ingestCmd.AddCommand(createIngestAllCmd(&artifactDir, &rulesPath))

	return ingestCmd
}

func createIngestBlocksCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "Seed project blocks",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedBlocks()
			if err != nil {
				log.Fatalf("Block seeding failed: %v", err)
			}

			fmt.Printf("\n=== Block Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestUnitTypesCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unit-types",
		Short: "Seed unit mix records",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedUnitTypes()
			if err != nil {
				log.Fatalf("Unit type seeding failed: %v", err)
			}

			fmt.Printf("\n=== Unit Type Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestFacilitiesCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "facilities",
		Short: "Seed project facilities",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedFacilities()
			if err != nil {
				log.Fatalf("Facility seeding failed: %v", err)
			}

			fmt.Printf("\n=== Facility Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestSalesPointsCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sales-points",
		Short: "Seed project sales points",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedSalesPoints()
			if err != nil {
				log.Fatalf("Sales point seeding failed: %v", err)
			}

			fmt.Printf("\n=== Sales Point Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestPriceFactorsCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "price-factors",
		Short: "Seed price records and their movement factors",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedPriceFactors()
			if err != nil {
				log.Fatalf("Price factor seeding failed: %v", err)
			}

			fmt.Printf("\n=== Price Factor Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestSalesStatusesCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sales-statuses",
		Short: "Seed sales status records",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedSalesStatuses()
			if err != nil {
				log.Fatalf("Sales status seeding failed: %v", err)
			}

			fmt.Printf("\n=== Sales Status Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestSegmentsCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "Seed market segment summaries",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedSegments()
			if err != nil {
				log.Fatalf("Segment seeding failed: %v", err)
			}

			fmt.Printf("\n=== Segment Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestDistrictMetricsCmd(artifactDir, rulesPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "district-metrics",
		Short: "Seed district metrics and computed aggregates",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			result, err := seeder.SeedDistrictMetrics()
			if err != nil {
				log.Fatalf("District metric seeding failed: %v", err)
			}

			fmt.Printf("\n=== District Metric Seeding Results ===\n")
			fmt.Printf("Created: %d\n", result.Created)
			fmt.Printf("Unmatched: %d\n", result.Unmatched)
		},
	}
}

func createIngestAllCmd(artifactDir, rulesPath *string) *cobra.Command {
	var projectsPath, sourcesPath string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Seed reference data and run every ingestion stage",
		Long:  `Seeds cities, districts, periods, grades, and the project catalogue, registers catalogued sources, then runs all artifact ingestion stages in dependency order`,
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			projectCatalog, err := config.LoadProjectCatalog(projectsPath)
			if err != nil {
				log.Fatalf("Failed to load project catalogue: %v", err)
			}
			refCreated, err := ingest.SeedReferenceData(debugMode, dbConn.DB, projectCatalog)
			if err != nil {
				log.Fatalf("Reference data seeding failed: %v", err)
			}

			sourceCatalog, err := config.LoadSourceCatalog(sourcesPath)
			if err != nil {
				log.Fatalf("Failed to load source catalogue: %v", err)
			}
			srcCreated, err := ingest.SeedSources(debugMode, dbConn.DB, sourceCatalog)
			if err != nil {
				log.Fatalf("Source registration failed: %v", err)
			}

			// The seeder snapshots the project catalogue at construction,
			// so build it after reference data is in place.
			seeder := newSeeder(dbConn, *artifactDir, *rulesPath)
			outcomes := seeder.RunAll()

			fmt.Printf("\n=== Ingestion Results ===\n")
			fmt.Printf("Reference rows created: %d\n", refCreated)
			fmt.Printf("Sources registered: %d\n", srcCreated)
			fmt.Println()
			fmt.Println("Stage            | Created | Unmatched | Status")
			fmt.Println("-----------------|---------|-----------|-------")

			failed := 0
			for _, outcome := range outcomes {
				status := "ok"
				if outcome.Err != nil {
					status = "FAILED"
					failed++
				}
				fmt.Printf("%-16s | %7d | %9d | %s\n",
					outcome.Name, outcome.Result.Created, outcome.Result.Unmatched, status)
			}

			if failed > 0 {
				fmt.Printf("\nStages failed: %d\n", failed)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&projectsPath, "projects", "", "Project catalogue YAML file (defaults to built-in catalogue)")
	cmd.Flags().StringVar(&sourcesPath, "sources", "", "Source catalogue YAML file (defaults to built-in catalogue)")

	return cmd
}

// newSeeder builds an artifact seeder or exits
func newSeeder(dbConn *db.Connection, artifactDir, rulesPath string) *ingest.Seeder {
	rules, err := config.LoadMatchRules(rulesPath)
	if err != nil {
		log.Fatalf("Failed to load match rules: %v", err)
	}

	seeder, err := ingest.NewSeeder(debugMode, dbConn.DB, artifactDir, rules)
	if err != nil {
		log.Fatalf("Failed to initialize seeder: %v", err)
	}
	return seeder
}

// createMatchCmd creates the match subcommand
func createMatchCmd() *cobra.Command {
	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Project name matching utilities",
		Long:  `Diagnose how well extracted project names resolve against the project catalogue`,
	}

	matchCmd.AddCommand(createMatchDiagnoseCmd())

	return matchCmd
}

func createMatchDiagnoseCmd() *cobra.Command {
	var artifactDir, rulesPath, outputPath string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose project name match coverage",
		Long:  `Collect every project name in the extracted artifacts and report which match the catalogue, which are junk, and which need aliases`,
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			rules, err := config.LoadMatchRules(rulesPath)
			if err != nil {
				log.Fatalf("Failed to load match rules: %v", err)
			}

			projects, err := ingest.NewStore(dbConn.DB).ProjectsSnapshot()
			if err != nil {
				log.Fatalf("Failed to load project catalogue: %v", err)
			}

			matcher, err := match.NewMatcher(projects, rules)
			if err != nil {
				log.Fatalf("Failed to build matcher: %v", err)
			}

			result := diagnose.Run(debugMode, matcher, artifactDir)
			result.Print()

			if outputPath != "" {
				if err := result.Save(outputPath); err != nil {
					log.Fatalf("Failed to save results: %v", err)
				}
				fmt.Printf("\nResults saved to %s\n", outputPath)
			}
		},
	}

	cmd.Flags().StringVar(&artifactDir, "artifacts", "data/extracted", "Directory containing JSON artifacts")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Match rules YAML file (defaults to built-in rules)")
	cmd.Flags().StringVar(&outputPath, "output", "match_diagnostic_results.json", "Write results JSON to this file (empty to skip)")

	return cmd
}

// createLineageCmd creates the lineage subcommand
func createLineageCmd() *cobra.Command {
	lineageCmd := &cobra.Command{
		Use:   "lineage",
		Short: "Data lineage utilities",
		Long:  `Inspect, validate, and correct the lineage records that tie stored data back to source reports`,
	}

	lineageCmd.AddCommand(createLineageStatsCmd())
	lineageCmd.AddCommand(createLineageValidateCmd())
	lineageCmd.AddCommand(createLineageLowConfidenceCmd())
	lineageCmd.AddCommand(createLineageFromSourceCmd())
	lineageCmd.AddCommand(createLineageTrackCmd())
	lineageCmd.AddCommand(createLineageSetConfidenceCmd())

	return lineageCmd
}

func createLineageStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show lineage tracking statistics",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			tracker := lineage.NewTracker(dbConn.DB)
			stats, err := tracker.Statistics(debugMode)
			if err != nil {
				log.Fatalf("Failed to collect lineage statistics: %v", err)
			}

			fmt.Printf("\n=== Lineage Statistics ===\n")
			fmt.Printf("Lineage records: %d\n", stats.TotalLineageRecords)
			fmt.Printf("Source reports: %d\n", stats.TotalSourceReports)
			fmt.Printf("Tables tracked: %d\n", stats.TablesTracked)
			fmt.Printf("Average confidence: %.3f\n", stats.AverageConfidence)
		},
	}
}

func createLineageValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Run lineage integrity checks",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			tracker := lineage.NewTracker(dbConn.DB)
			result, err := tracker.ValidateIntegrity(debugMode)
			if err != nil {
				log.Fatalf("Lineage validation failed: %v", err)
			}

			fmt.Printf("\n=== Lineage Integrity ===\n")
			fmt.Printf("Checks performed: %d\n", result.ChecksPerformed)

			if result.IsValid {
				fmt.Println("All lineage integrity checks passed")
				return
			}

			fmt.Printf("Issues found: %d\n", len(result.Issues))
			for _, issue := range result.Issues {
				fmt.Printf("  - %s\n", issue)
			}
			os.Exit(1)
		},
	}
}

func createLineageLowConfidenceCmd() *cobra.Command {
	var threshold float64
	var tableName string

	cmd := &cobra.Command{
		Use:   "low-confidence",
		Short: "List extractions below a confidence threshold",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			tracker := lineage.NewTracker(dbConn.DB)
			records, err := tracker.LowConfidenceRecords(debugMode, threshold, tableName)
			if err != nil {
				log.Fatalf("Failed to load low confidence records: %v", err)
			}

			fmt.Printf("\n=== Low Confidence Records (below %.2f) ===\n", threshold)
			if len(records) == 0 {
				fmt.Println("No records below threshold")
				return
			}

			printLineageRecords(records)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Confidence threshold")
	cmd.Flags().StringVar(&tableName, "table", "", "Restrict to one table")

	return cmd
}

func createLineageFromSourceCmd() *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "from-source [source-id]",
		Short: "List every record extracted from one source report",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			sourceID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				log.Fatalf("Invalid source ID: %s", args[0])
			}

			dbConn := connectDB()
			defer dbConn.Close()

			tracker := lineage.NewTracker(dbConn.DB)
			records, err := tracker.RecordsFromSource(debugMode, sourceID, tableName)
			if err != nil {
				log.Fatalf("Failed to load records: %v", err)
			}

			fmt.Printf("\n=== Records From Source %d ===\n", sourceID)
			if len(records) == 0 {
				fmt.Println("No records found")
				return
			}

			printLineageRecords(records)
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "Restrict to one table")

	return cmd
}

func printLineageRecords(records []lineage.Record) {
	fmt.Println("Table                | Record | Confidence | Source")
	fmt.Println("---------------------|--------|------------|-------")
	for _, record := range records {
		confidence := "-"
		if record.Confidence != nil {
			confidence = fmt.Sprintf("%.2f", *record.Confidence)
		}
		fmt.Printf("%-20s | %6d | %10s | %s\n",
			record.TableName, record.RecordID, confidence, record.SourceFile)
	}
	fmt.Printf("Total: %d records\n", len(records))
}

func createLineageTrackCmd() *cobra.Command {
	var page int
	var confidence float64

	cmd := &cobra.Command{
		Use:   "track [table] [record-id] [source-id]",
		Short: "Manually attach lineage to a stored record",
		Long:  `Record that an existing row came from a source report, for data added or corrected outside the ingestion stages`,
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			recordID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				log.Fatalf("Invalid record ID: %s", args[1])
			}
			sourceID, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				log.Fatalf("Invalid source ID: %s", args[2])
			}

			dbConn := connectDB()
			defer dbConn.Close()

			var pageNumber *int
			if page > 0 {
				pageNumber = &page
			}

			tracker := lineage.NewTracker(dbConn.DB)
			if err := tracker.Track(debugMode, args[0], recordID, sourceID, pageNumber, confidence); err != nil {
				log.Fatalf("Failed to record lineage: %v", err)
			}

			fmt.Printf("Lineage recorded for %s/%d from source %d\n", args[0], recordID, sourceID)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number the record came from")
	cmd.Flags().Float64Var(&confidence, "confidence", 1.0, "Extraction confidence score")

	return cmd
}

func createLineageSetConfidenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-confidence [table] [record-id] [confidence]",
		Short: "Set a reviewed confidence score on a record's lineage",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			recordID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				log.Fatalf("Invalid record ID: %s", args[1])
			}
			confidence, err := strconv.ParseFloat(args[2], 64)
			if err != nil || confidence < 0 || confidence > 1 {
				log.Fatalf("Confidence must be a number between 0 and 1: %s", args[2])
			}

			dbConn := connectDB()
			defer dbConn.Close()

			tracker := lineage.NewTracker(dbConn.DB)
			updated, err := tracker.UpdateConfidence(debugMode, args[0], recordID, confidence)
			if err != nil {
				log.Fatalf("Failed to update confidence: %v", err)
			}
			if !updated {
				log.Fatalf("No lineage record found for %s/%d", args[0], recordID)
			}

			fmt.Printf("Confidence updated to %.2f for %s/%d\n", confidence, args[0], recordID)
		},
	}
}

// createSourcesCmd creates the sources subcommand
func createSourcesCmd() *cobra.Command {
	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "Source report registry commands",
		Long:  `Register and inspect the source reports the pipeline extracts from`,
	}

	sourcesCmd.AddCommand(createSourcesSeedCmd())
	sourcesCmd.AddCommand(createSourcesRegisterCmd())
	sourcesCmd.AddCommand(createSourcesMarkIngestedCmd())
	sourcesCmd.AddCommand(createSourcesListCmd())

	return sourcesCmd
}

func createSourcesSeedCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register every catalogued source report",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			catalog, err := config.LoadSourceCatalog(catalogPath)
			if err != nil {
				log.Fatalf("Failed to load source catalogue: %v", err)
			}

			created, err := ingest.SeedSources(debugMode, dbConn.DB, catalog)
			if err != nil {
				log.Fatalf("Source registration failed: %v", err)
			}

			fmt.Printf("\n=== Source Registration Results ===\n")
			fmt.Printf("Catalogued: %d\n", len(catalog.Sources))
			fmt.Printf("Registered: %d\n", created)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Source catalogue YAML file (defaults to built-in catalogue)")

	return cmd
}

func createSourcesRegisterCmd() *cobra.Command {
	var reportType string

	cmd := &cobra.Command{
		Use:   "register [filename]",
		Short: "Register a single source report",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			id, err := ingest.RegisterSource(dbConn.DB, args[0], reportType)
			if err != nil {
				log.Fatalf("Failed to register source: %v", err)
			}

			fmt.Printf("Source registered with ID %d\n", id)
		},
	}

	cmd.Flags().StringVar(&reportType, "type", "", "Report type (case_study, market_analysis, price_analysis)")

	return cmd
}

func createSourcesMarkIngestedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-ingested [filename]",
		Short: "Mark a registered source report as ingested",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			if err := ingest.MarkIngested(dbConn.DB, args[0]); err != nil {
				log.Fatalf("Failed to mark source: %v", err)
			}

			fmt.Printf("Source %s marked as ingested\n", args[0])
		},
	}
}

func createSourcesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered source reports",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			sources, err := ingest.ListSources(dbConn.DB)
			if err != nil {
				log.Fatalf("Failed to list sources: %v", err)
			}

			fmt.Printf("\n=== Registered Sources ===\n")
			if len(sources) == 0 {
				fmt.Println("No sources registered")
				return
			}

			fmt.Println("ID   | Status    | Period  | City             | Filename")
			fmt.Println("-----|-----------|---------|------------------|---------")
			for _, source := range sources {
				city := source.City
				if city == "" {
					city = "-"
				}
				period := source.Period
				if period == "" {
					period = "-"
				}
				fmt.Printf("%4d | %-9s | %-7s | %-16s | %s\n",
					source.ID, source.Status, period, city, source.Filename)
			}
			fmt.Printf("Total: %d sources\n", len(sources))
		},
	}
}

// createPdftextCmd creates the pdftext subcommand
func createPdftextCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "pdftext [pdf-file]",
		Short: "Convert a PDF report to page-marked text",
		Long:  `Extract a PDF report into the page-marked text format the extraction passes consume`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			pdfPath := args[0]

			outPath := outputPath
			if outPath == "" {
				outPath = strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".txt"
			}

			result, err := pdftext.Convert(debugMode, pdfPath, outPath)
			if err != nil {
				log.Fatalf("PDF conversion failed: %v", err)
			}

			fmt.Printf("\n=== PDF Conversion Results ===\n")
			fmt.Printf("Pages extracted: %d\n", result.Pages)
			fmt.Printf("Pages failed: %d\n", result.FailedPages)
			fmt.Printf("Output: %s\n", outPath)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Output text file (defaults to the PDF name with a .txt extension)")

	return cmd
}

// createDBCmd creates the db subcommand
func createDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database utility commands",
		Long:  `Database utilities for schema creation and reference data`,
	}

	dbCmd.AddCommand(createDBInitCmd())
	dbCmd.AddCommand(createDBSeedReferenceCmd())

	return dbCmd
}

func createDBInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the pipeline schema",
		Long:  `Create all pipeline tables and indexes if they do not exist`,
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			if err := db.EnsureSchema(dbConn.DB); err != nil {
				log.Fatalf("Schema creation failed: %v", err)
			}

			fmt.Println("Schema created")
		},
	}
}

func createDBSeedReferenceCmd() *cobra.Command {
	var projectsPath string

	cmd := &cobra.Command{
		Use:   "seed-reference",
		Short: "Seed cities, districts, periods, grades, and projects",
		Run: func(cmd *cobra.Command, args []string) {
			dbConn := connectDB()
			defer dbConn.Close()

			catalog, err := config.LoadProjectCatalog(projectsPath)
			if err != nil {
				log.Fatalf("Failed to load project catalogue: %v", err)
			}

			created, err := ingest.SeedReferenceData(debugMode, dbConn.DB, catalog)
			if err != nil {
				log.Fatalf("Reference data seeding failed: %v", err)
			}

			fmt.Printf("\n=== Reference Data Results ===\n")
			fmt.Printf("Rows created: %d\n", created)
		},
	}

	cmd.Flags().StringVar(&projectsPath, "projects", "", "Project catalogue YAML file (defaults to built-in catalogue)")

	return cmd
}
