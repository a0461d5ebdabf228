package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lirany1/stress-insight/pkg/advice"
	"github.com/lirany1/stress-insight/pkg/charts"
	"github.com/lirany1/stress-insight/pkg/client"
	"github.com/lirany1/stress-insight/pkg/config"
	"github.com/lirany1/stress-insight/pkg/controller"
	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/export"
	"github.com/lirany1/stress-insight/pkg/form"
	"github.com/lirany1/stress-insight/pkg/logger"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/renderer"
	"github.com/lirany1/stress-insight/pkg/server"
	"github.com/lirany1/stress-insight/pkg/themes"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "stress-insight",
		Short: "Stress level prediction client",
		Long: `Stress level prediction client

Collects a lifestyle profile, asks a prediction service for a stress level and presents
the result with feature-importance charts and personalized recommendations.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Serve command - the interactive page
	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction page server",
		Long:  "Serve the single-page form and present predictions as they are submitted.",
		RunE:  runServe,
	}

	// Predict command - one-shot submission
	var predictCmd = &cobra.Command{
		Use:   "predict",
		Short: "Submit one profile and export the result",
		Long:  "Send one profile to the prediction service and write the presented result as HTML, PNG charts and/or JSON.",
		RunE:  runPredict,
	}

	// Init command - writes a starter config file
	var initCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}

	// Rules command
	var rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List the recommendation rules",
		RunE:  runRules,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().String("predict-url", "", "Base URL of the prediction service")
	rootCmd.PersistentFlags().StringP("theme", "t", "",
		fmt.Sprintf("Chart palette (%s)", strings.Join(themes.NewManager(themes.DefaultTheme).Names(), ", ")))
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	// Flags for serve command
	serveCmd.Flags().IntP("port", "p", 0, "Port to run server on")
	serveCmd.Flags().StringP("host", "H", "", "Host to bind server to")

	// Flags for predict command
	for _, name := range models.FieldNames {
		predictCmd.Flags().String(flagName(name), "", fmt.Sprintf("Value of the %s field", name))
	}
	predictCmd.Flags().StringP("output", "o", "", "Output directory for exported files")
	predictCmd.Flags().StringSliceP("formats", "f", nil, "Export formats (html, png, json)")

	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	rootCmd.AddCommand(serveCmd, predictCmd, initCmd, rulesCmd)
	return rootCmd
}

// loadConfig resolves config file, environment and then command-line flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if configFile != "" {
		cfg = config.NewConfig()
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.LoadFromEnv()
	} else {
		var err error
		if cfg, err = config.LoadConfig(); err != nil {
			return nil, err
		}
	}

	// Override with command-line flags
	if v, _ := cmd.Flags().GetString("predict-url"); v != "" {
		cfg.PredictURL = v
	}
	if v, _ := cmd.Flags().GetString("theme"); v != "" {
		cfg.Theme = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if f := cmd.Flags().Lookup("host"); f != nil && f.Changed {
		cfg.Host = f.Value.String()
	}
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		cfg.OutputDir = f.Value.String()
	}
	if f := cmd.Flags().Lookup("formats"); f != nil && f.Changed {
		cfg.ExportFormats, _ = cmd.Flags().GetStringSlice("formats")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// newPipeline wires client, renderer and controller for one page session
func newPipeline(cfg *config.Config) (*controller.Controller, themes.Palette) {
	palette := themes.NewManager(themes.DefaultTheme).Palette(cfg.Theme)
	r := renderer.New(
		display.NewSurface(),
		charts.NewManager(charts.NewEChartsFactory()),
		advice.NewEngine(),
		palette,
	)
	return controller.New(client.New(cfg.PredictURL), r), palette
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, palette := newPipeline(cfg)
	defer ctrl.Renderer().Close()

	logger.Infof("Starting stress prediction page on %s", cfg.Addr())
	logger.Infof("Prediction service: %s", client.New(cfg.PredictURL).Endpoint())

	srv := server.NewServer(&server.Config{
		Addr:        cfg.Addr(),
		FormOptions: cfg.FormOptions,
		Palette:     palette,
	}, ctrl)

	return srv.Start()
}

// stderrNotifier prints blocking notices for the one-shot command
type stderrNotifier struct{}

func (stderrNotifier) Notify(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	values := make(map[string]string, len(models.FieldNames))
	for _, name := range models.FieldNames {
		values[name], _ = cmd.Flags().GetString(flagName(name))
	}

	ctrl, palette := newPipeline(cfg)
	defer ctrl.Renderer().Close()
	surface := ctrl.Renderer().Surface()
	surface.SetNotifier(stderrNotifier{})

	src := form.FromMap(values)
	result, err := ctrl.HandleSubmit(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", surface.Label.Text)
	for _, text := range surface.Recommendations.Bullets() {
		fmt.Fprintf(cmd.OutOrStdout(), "  • %s\n", text)
	}

	view := renderer.NewPageView(surface, cfg.FormOptions, form.Collect(src), palette)
	paths, err := export.NewExporter().Export(cmd.Context(), export.Snapshot(ctrl.Renderer(), result, view), cfg.OutputDir, cfg.ExportFormats)
	if err != nil {
		return fmt.Errorf("failed to export result: %w", err)
	}
	for _, path := range paths {
		logger.Infof("Wrote %s", path)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "stress-insight.yml"
	if len(args) == 1 {
		path = args[0]
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.NewConfig().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	logger.Infof("Wrote default configuration to %s", path)
	return nil
}

func runRules(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Recommendation rules:")
	for _, rule := range advice.Rules() {
		fmt.Fprintf(out, "  • %s in [%s]\n      %s\n", rule.Feature, strings.Join(rule.AtRisk, ", "), rule.Advice)
	}
	fmt.Fprintln(out, "Fallbacks:")
	for _, text := range advice.Fallbacks() {
		fmt.Fprintf(out, "  • %s\n", text)
	}
	return nil
}

// flagName turns a field name such as "work_hours" into "work-hours"
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}
