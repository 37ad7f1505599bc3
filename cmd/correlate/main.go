package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/DGfinder/fleet-correlation-go/internal/analysis"
	"github.com/DGfinder/fleet-correlation-go/internal/config"
	"github.com/DGfinder/fleet-correlation-go/internal/database"
	"github.com/DGfinder/fleet-correlation-go/internal/models"

	// Register batch engine jobs
	_ "github.com/DGfinder/fleet-correlation-go/internal/analysis/correlation"
	_ "github.com/DGfinder/fleet-correlation-go/internal/analysis/discovery"
	_ "github.com/DGfinder/fleet-correlation-go/internal/analysis/routes"
)

var dbPath string

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "correlate",
		Short: "Batch engine for trip-delivery correlation",
		Long: `Runs the batch analysis jobs against the fleet database:
POI discovery from trip endpoints, trip-delivery correlation, and
route pattern aggregation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return database.Init(database.Config{Path: dbPath})
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "path to the SQLite database")

	rootCmd.AddCommand(newDiscoverCmd(cfg))
	rootCmd.AddCommand(newCorrelateCmd(cfg))
	rootCmd.AddCommand(newRoutesCmd(cfg))
	rootCmd.AddCommand(newAllCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newDiscoverCmd(cfg *config.Config) *cobra.Command {
	params := cfg.Cluster

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover POIs by clustering trip endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(models.RunKindDiscover, params)
		},
	}

	cmd.Flags().Float64Var(&params.RadiusMeters, "radius", params.RadiusMeters, "cluster neighborhood radius in meters")
	cmd.Flags().IntVar(&params.MinPoints, "min-points", params.MinPoints, "minimum endpoints per cluster")
	cmd.Flags().Float64Var(&params.MinIdleMinutes, "min-idle", params.MinIdleMinutes, "minimum idle minutes for an endpoint to count")
	cmd.Flags().BoolVar(&params.Reset, "reset", false, "clear previously discovered POIs first")

	return cmd
}

func newCorrelateCmd(cfg *config.Config) *cobra.Command {
	params := cfg.Correlation

	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Correlate trips against delivery records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(models.RunKindCorrelate, params)
		},
	}

	cmd.Flags().IntVar(&params.DateToleranceDays, "date-tolerance", params.DateToleranceDays, "maximum date gap in days")
	cmd.Flags().Float64Var(&params.MaxSearchRadiusKm, "max-radius", params.MaxSearchRadiusKm, "maximum terminal search radius in km")
	cmd.Flags().IntVar(&params.MinConfidence, "min-confidence", params.MinConfidence, "minimum fused confidence to store")
	cmd.Flags().BoolVar(&params.TextEnabled, "text", params.TextEnabled, "enable the text signal")
	cmd.Flags().BoolVar(&params.GeoEnabled, "geo", params.GeoEnabled, "enable the geospatial signal")
	cmd.Flags().BoolVar(&params.TemporalEnabled, "temporal", params.TemporalEnabled, "enable the temporal signal")
	cmd.Flags().StringVar(&params.StartDate, "start-date", "", "only correlate trips starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&params.EndDate, "end-date", "", "only correlate trips starting on or before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&params.Workers, "workers", params.Workers, "worker pool size")

	return cmd
}

func newRoutesCmd(cfg *config.Config) *cobra.Command {
	params := cfg.Routes

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Aggregate route patterns between classified POIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(models.RunKindRoutes, params)
		},
	}

	cmd.Flags().IntVar(&params.MinTripCount, "min-trips", params.MinTripCount, "minimum trips for a POI pair to become a route")
	cmd.Flags().IntVar(&params.POIConfidenceFloor, "poi-floor", params.POIConfidenceFloor, "minimum POI confidence for route endpoints")
	cmd.Flags().Float64Var(&params.AssignRadiusMeters, "assign-radius", params.AssignRadiusMeters, "endpoint-to-POI assignment radius in meters")

	return cmd
}

func newAllCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run discovery, correlation, and route aggregation in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runJob(models.RunKindDiscover, cfg.Cluster); err != nil {
				return err
			}
			if err := runJob(models.RunKindCorrelate, cfg.Correlation); err != nil {
				return err
			}
			return runJob(models.RunKindRoutes, cfg.Routes)
		},
	}
}

// runJob creates a run row and executes the job synchronously
func runJob(kind string, params interface{}) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	db := database.GetDB()
	runner, err := analysis.NewRunner(kind, db, string(paramsJSON))
	if err != nil {
		return err
	}

	runID, err := analysis.NewBaseRun(db, kind).CreateRun(kind, string(paramsJSON))
	if err != nil {
		return err
	}

	log.Printf("Starting %s (run %d)", kind, runID)
	return runner.Run(context.Background(), runID)
}
