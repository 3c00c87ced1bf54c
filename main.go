package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"

	"geolr/domain/evidence"
	"geolr/domain/geo"
	"geolr/internal/config"
	"geolr/internal/container"
	"geolr/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "geolr",
		Short: "Likelihood ratio of an evidence location under two candidate origins",
		Long: `geolr weighs an evidence point against two candidate origin points using
the historical location fixes recorded around each candidate.

With no subcommand it runs the analysis. Configuration is read from geolr.yaml
(or --config), GEOLR_* environment variables and the flags below.

Example: geolr --ref1 Report_P1.xlsx --ref2 Report_P2.xlsx --report json,html`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, v, cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./geolr.yaml)")
	flags.String("log-level", "info", "log level: error, warn, info, debug, trace")
	flags.Float64("half-width", 0, "wedge half-width in radians (default π/6)")
	flags.Bool("wrap", false, "let the wedge wrap across the ±π bearing seam")
	flags.Bool("strict", true, "fail when the denominator probability is zero")
	flags.Float64("evidence-lon", 0, "evidence longitude")
	flags.Float64("evidence-lat", 0, "evidence latitude")
	flags.String("ref1", "", "reference file of the first candidate")
	flags.String("ref2", "", "reference file of the second candidate")
	flags.Int("skip-rows", 0, "data rows to drop after the header of tabular references")
	flags.StringP("output", "o", "", "output directory")
	flags.Bool("plots", true, "write histogram and scatter images")
	flags.Bool("geojson", false, "write scene.geojson")
	flags.StringSlice("report", nil, "report formats: json, yaml, markdown, html")

	bindings := map[string]string{
		"logging.level":                        "log-level",
		"analysis.half_width":                  "half-width",
		"analysis.wrap_bearings":               "wrap",
		"analysis.strict_ratio":                "strict",
		"evidence.lon":                         "evidence-lon",
		"evidence.lat":                         "evidence-lat",
		"candidates.first.reference.path":      "ref1",
		"candidates.second.reference.path":     "ref2",
		"candidates.first.reference.skip_rows": "skip-rows",
		"output.dir":                           "output",
		"output.plots":                         "plots",
		"output.geojson":                       "geojson",
		"output.reports":                       "report",
	}
	for key, name := range bindings {
		v.BindPFlag(key, flags.Lookup(name))
	}
	// one flag feeds both candidates
	v.BindPFlag("candidates.second.reference.skip_rows", flags.Lookup("skip-rows"))

	rootCmd.AddCommand(
		newAnalyzeCmd(v, &cfgFile),
		newTransformCmd(v, &cfgFile),
		newVersionCmd(),
	)
	return rootCmd
}

func newAnalyzeCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compute the likelihood ratio and write plots and reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, v, *cfgFile)
		},
	}
}

func newTransformCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Print distance and bearing between the evidence and each candidate",
		Long: `Print the polar observation of each candidate seen from the evidence point,
and of the evidence point seen from each candidate. Bearings are forward
azimuths in radians, clockwise from north.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			e := container.Point(cfg.Evidence)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FROM\tTO\tDISTANCE (m)\tBEARING (rad)\tBEARING (deg)")
			for _, c := range []config.CandidateConfig{cfg.Candidates.First, cfg.Candidates.Second} {
				p := container.Point(c.Point)
				for _, row := range []struct {
					from, to string
					obs      geo.PolarObservation
				}{
					{"E", c.Label, geo.Transform(e, p)},
					{c.Label, "E", geo.Transform(p, e)},
				} {
					fmt.Fprintf(w, "%s\t%s\t%.3f\t%.6f\t%.2f\n", row.from, row.to, row.obs.Distance, row.obs.Bearing, row.obs.BearingDegrees())
				}
			}
			return w.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "geolr %s\n", version)
		},
	}
}

func runAnalyze(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	c, err := container.New(cfg)
	if err != nil {
		return err
	}

	report, err := c.LikelihoodService.Run(cmd.Context())
	if err != nil {
		return err
	}
	printSummary(cmd, report)
	return nil
}

func printSummary(cmd *cobra.Command, r *evidence.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", r.RunID)
	for _, c := range r.Candidates {
		fmt.Fprintf(out, "  %-6s wedge %d/%d  fraction %.6g  density %.6g\n",
			c.Label, c.Wedge.Count, c.Wedge.Total, c.Probabilities.AngularFraction, c.Probabilities.ConditionalDensity)
	}
	if len(r.Candidates) == 2 {
		fmt.Fprintf(out, "LR(%s/%s) = %g  (log10 %.4f)\n", r.Candidates[0].Label, r.Candidates[1].Label, r.Ratio.Value, r.Ratio.Log10)
	}
	if r.Favours != "" {
		fmt.Fprintf(out, "%s for %s\n", r.Scale, r.Favours)
	}
	for _, a := range r.Artifacts {
		fmt.Fprintf(out, "  wrote %s\n", a)
	}
}
