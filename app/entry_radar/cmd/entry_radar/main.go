package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/config"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/engine"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/logger"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/report"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "entry_radar",
		Short:         "Market entry research assistant",
		Long:          "Entry Radar turns an engagement (company, industry, target markets) into a company brief and per-market PESTEL analysis.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(runCmd(&configPath))
	root.AddCommand(healthCmd(&configPath))
	return root
}

func runCmd(configPath *string) *cobra.Command {
	var (
		company    string
		industry   string
		markets    string
		priorities string
		useCase    string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one engagement and write report.md and report.html",
		Example: `  entry_radar run --company "Acme Co" --industry Retail --markets "Germany, Brazil" --priorities growth
  entry_radar run --config configs/config.yaml --company Acme --industry Retail --markets Japan --out output/acme`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Report.OutputDir
			}

			req := dm.EngagementRequest{
				Company:    company,
				Industry:   industry,
				Markets:    dm.ParseMarkets(markets),
				Priorities: dm.ParsePriorities(priorities),
				UseCase:    useCase,
			}
			return runEngagement(cmd.Context(), cmd.OutOrStdout(), cfg, req, outDir)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name (required)")
	cmd.Flags().StringVar(&industry, "industry", "", "industry (required)")
	cmd.Flags().StringVar(&markets, "markets", "", "comma-separated target markets (required)")
	cmd.Flags().StringVar(&priorities, "priorities", "", "strategic priorities, comma or newline separated")
	cmd.Flags().StringVar(&useCase, "use-case", "", "optional use case")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (defaults to report.output_dir)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("industry")
	_ = cmd.MarkFlagRequired("markets")
	return cmd
}

func healthCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Send a minimal prompt to check the model endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			eng, err := engine.NewEngine(cfg)
			if err != nil {
				return err
			}

			mc := cfg.LLM.ModelConfig()
			status, err := eng.Client().HealthCheck(cmd.Context(), mc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model %s replied %q in %s\n", status.Model, status.Reply, status.Latency)
			return nil
		},
	}
}

// loadConfig 读取配置文件并初始化日志；默认配置文件不存在时只使用环境变量
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("无法加载配置文件: %w", err)
	}

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("无法初始化日志: %w", err)
	}
	return cfg, nil
}

func runEngagement(ctx context.Context, out io.Writer, cfg *config.Config, req dm.EngagementRequest, outDir string) error {
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	logger.Log.Info("启动 Entry Radar...")
	res, err := eng.Run(ctx, req, cfg.LLM.ModelConfig(), engine.RunOptions{
		ProgressCallback: func(status string, progress int) {
			logger.Log.Infof("[%3d%%] %s", progress, status)
		},
	})
	if err != nil {
		return err
	}

	view := report.BuildView(res)
	paths, err := report.WriteFiles(outDir, view)
	if err != nil {
		return err
	}

	fmt.Fprint(out, report.RenderTerminal(view))
	for _, p := range paths {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	logger.Log.Infof("报告生成完毕: %s", outDir)
	return nil
}
