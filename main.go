package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "property-scraper",
	Short: "Scrape UK commercial property agencies into one canonical listing format",
	Long: `property-scraper visits the agency sites listed in a YAML registry,
normalizes every listing (price, size, tenure, sale type, postcode) and
writes the results to CSV and, optionally, PostgreSQL.

Examples:
  # Scrape every enabled site in ./sites.yaml
  property-scraper run

  # Scrape two sites only, without touching the database
  property-scraper run --only acme,northern --no-db

  # Check how a piece of listing text is normalized
  property-scraper normalize --sale-type "For Sale" --price "Offers over £1.2m"`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newRunCmd(), newNormalizeCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
