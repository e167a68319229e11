// Command joyctl runs jobs and inspects history against the configured
// stores without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"joyex-backend/internal/accuracy"
	"joyex-backend/internal/app"
	"joyex-backend/internal/config"
	"joyex-backend/internal/fal"
	"joyex-backend/internal/imaging"
	"joyex-backend/internal/jobs"
	"joyex-backend/internal/logger"
	"joyex-backend/internal/models"
)

var version = "dev"

type CLI struct {
	Out        io.Writer
	Err        io.Writer
	LoadConfig func() (*config.Config, error)
	NewLogger  func(cfg *config.Config) (*zap.Logger, error)
}

func DefaultCLI() *CLI {
	return &CLI{
		Out:        os.Stdout,
		Err:        os.Stderr,
		LoadConfig: config.Load,
		NewLogger: func(cfg *config.Config) (*zap.Logger, error) {
			return logger.New(cfg.Environment, cfg.LogLevel)
		},
	}
}

func main() {
	if err := newRootCmd(DefaultCLI()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joyctl",
		Short: "Operate the joyex image job pipeline from the command line",
		Long: `joyctl submits edit and replace jobs, manages per-user history and
inspects images using the same configuration as the API server.

Examples:
  joyctl submit --user u1 --mode edit --prompt "make it snow" --image https://x/a.png
  joyctl submit --user u1 --mode replace --prompt "swap the bottle" \
      --competitor https://x/scene.png --product https://x/bottle.png
  joyctl history --user u1
  joyctl analyze photo.jpg`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.Out)
	cmd.SetErr(cli.Err)

	cmd.AddCommand(
		newSubmitCmd(cli),
		newHistoryCmd(cli),
		newDeleteCmd(cli),
		newPresetsCmd(cli),
		newAnalyzeCmd(cli),
		newMigrateCmd(cli),
	)
	return cmd
}

// withApp loads configuration, builds the application and runs fn with a
// context cancelled on SIGINT or SIGTERM.
func (cli *CLI) withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	log, err := cli.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func (cli *CLI) printJSON(v any) error {
	enc := json.NewEncoder(cli.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSubmitCmd(cli *CLI) *cobra.Command {
	var (
		in       jobs.Input
		mode     string
		seed     int64
		strength float64
		guidance float64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Run one edit or replace job and record it in the user's history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Mode = models.JobMode(mode)
			if cmd.Flags().Changed("seed") {
				in.Seed = &seed
			}
			if cmd.Flags().Changed("strength") {
				in.Strength = &strength
			}
			if cmd.Flags().Changed("guidance") {
				in.Guidance = &guidance
			}

			return cli.withApp(func(ctx context.Context, a *app.App) error {
				result := a.Jobs.Submit(ctx, in)
				if err := cli.printJSON(result.JobResult); err != nil {
					return err
				}
				if !result.Success {
					return fmt.Errorf("job failed: %s", result.Error)
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.UserID, "user", "", "owner of the job")
	f.StringVar(&mode, "mode", string(models.ModeEdit), "job mode (edit, replace)")
	f.StringVarP(&in.Prompt, "prompt", "p", "", "instruction for the edit")
	f.StringArrayVarP(&in.ImageURLs, "image", "i", nil, "input image URL (repeatable)")
	f.StringArrayVar(&in.CompetitorImages, "competitor", nil, "scene image URL for replace mode (repeatable)")
	f.StringArrayVar(&in.ProductImages, "product", nil, "product image URL for replace mode (repeatable)")
	f.StringVarP(&in.Size, "size", "s", "", "output size, e.g. 2048x2048")
	f.StringVar(&in.AccuracyPreset, "preset", "", "accuracy preset (standard, ultra-conservative)")
	f.StringVar(&in.AddonPrompt, "addon", "", "extra text appended to the expanded prompt")
	f.Int64Var(&seed, "seed", 0, "generation seed")
	f.Float64Var(&strength, "strength", 0, "override the preset strength")
	f.Float64Var(&guidance, "guidance", 0, "override the preset guidance")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newHistoryCmd(cli *CLI) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cli.withApp(func(ctx context.Context, a *app.App) error {
				history := a.Jobs.History(ctx, userID)
				response := models.JobListResponse{Jobs: make([]models.JobResponse, 0, len(history))}
				for i := range history {
					response.Jobs = append(response.Jobs, models.ToJobResponse(&history[i]))
				}
				return cli.printJSON(response)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner of the history")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newDeleteCmd(cli *CLI) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Remove a job from a user's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cli.withApp(func(ctx context.Context, a *app.App) error {
				a.Jobs.Delete(ctx, args[0], userID)
				fmt.Fprintf(cli.Out, "Deleted %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner of the job")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newPresetsCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "Show accuracy presets and supported output sizes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range accuracy.Names() {
				cfg := accuracy.Get(name)
				status := "ok"
				if violations := accuracy.Violations(cfg); len(violations) > 0 {
					status = fmt.Sprintf("%v", violations)
				}
				fmt.Fprintf(cli.Out, "%-20s strength=%.2f guidance=%.1f steps=%d  %s\n",
					cfg.Name, cfg.Strength, cfg.Guidance, cfg.InferenceSteps, status)
			}
			fmt.Fprintf(cli.Out, "sizes: %v\n", fal.SupportedSizes)
			return nil
		},
	}
}

func newAnalyzeCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Score local images for generation suitability",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			reports := make([]models.ImageReport, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				report := models.ImageReport{Filename: filepath.Base(path), Size: int64(len(data))}
				if r, err := imaging.Analyze(data); err != nil {
					report.Error = err.Error()
				} else {
					report.Width, report.Height = r.Width, r.Height
					report.Score, report.IsOptimal = r.Score, r.IsOptimal
					report.Recommendations = r.Recommendations
				}
				reports = append(reports, report)
			}
			return cli.printJSON(models.ImageReportsResponse{Reports: reports})
		},
	}
}

func newMigrateCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			log, err := cli.NewLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return app.Migrate(ctx, cfg.DatabaseURL, log)
		},
	}
}
