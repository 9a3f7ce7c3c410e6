package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fitgraph/backend/internal/agent"
	"fitgraph/backend/internal/extractor"
	"fitgraph/backend/internal/graph"
	"fitgraph/backend/internal/server"
	"fitgraph/backend/pkg/config"
	apperrors "fitgraph/backend/pkg/errors"
	"fitgraph/backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI and maps the outcome to an exit code
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd(in, out)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, apperrors.ErrUserCancelled):
		// already reported by the prompter
	case apperrors.IsErrorType(err, apperrors.ErrorTypeConfig):
		fmt.Fprintf(errOut, "ERROR: %v. Exiting.\n", err)
	default:
		logger.Get().Error("Fatal error", zap.Error(err))
		fmt.Fprintf(errOut, "Fatal error: %v\n", err)
	}
	return 1
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	sc := agent.DefaultScenario()

	root := &cobra.Command{
		Use:           "fitgraph",
		Short:         "Run the FitGraph demo (MemMachine + Neo4j)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), sc, isAutoMode(cmd), in, out)
		},
	}

	root.Flags().BoolP("auto", "a", false, "Run non-interactively, skip prompts")
	root.Flags().BoolP("yes", "y", false, "Alias for --auto")
	root.Flags().StringVar(&sc.UserID, "user", sc.UserID, "User ID for the scenario")
	root.Flags().StringVar(&sc.Feedback, "feedback", sc.Feedback, "Return feedback text")
	root.Flags().StringVar(&sc.ReturnedProductID, "returned", sc.ReturnedProductID, "Product the user returned")
	root.Flags().StringVar(&sc.CandidateProductID, "candidate", sc.CandidateProductID, "Product to check for fit risk")

	root.AddCommand(newServeCmd(), newResetCmd(in, out))
	return root
}

// isAutoMode is true when either spelling of the auto flag is set
func isAutoMode(cmd *cobra.Command) bool {
	auto, _ := cmd.Flags().GetBool("auto")
	yes, _ := cmd.Flags().GetBool("yes")
	return auto || yes
}

// setup loads configuration and initializes the logger. Configuration is
// checked before any connection is attempted.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Get()
	log.Debug("Configuration loaded", zap.Stringer("config", cfg))
	return cfg, log, nil
}

// demoStore is the graph surface the demo drives
type demoStore interface {
	agent.DemoStore
	Close(ctx context.Context) error
}

// connectDemoStore opens the store used by the demo; tests replace it
var connectDemoStore = func(ctx context.Context, cfg *config.Config) (demoStore, error) {
	repo, err := graph.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func runDemo(ctx context.Context, sc agent.Scenario, auto bool, in io.Reader, out io.Writer) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	repo, err := connectDemoStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			log.Warn("Failed to close Neo4j driver", zap.Error(err))
		}
	}()

	var prompter agent.Prompter = agent.NewTerminalPrompter(in, out)
	if auto {
		prompter = agent.AutoPrompter{Out: out}
	}

	orch := agent.NewOrchestrator(repo, extractor.New(cfg, log), cfg.ConfidenceThreshold, prompter, out)
	result, err := orch.Run(ctx, sc)
	if err != nil {
		log.Debug("Demo stopped", zap.Stringer("stage", result.Stage))
		return err
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the feedback and fit-risk HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			repo, err := graph.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())

			repo.EnsureSchema(ctx)
			if err := repo.UpsertProducts(ctx, graph.SeedCatalog()); err != nil {
				return err
			}

			pipeline := agent.NewPipeline(extractor.New(cfg, log), repo, cfg.ConfidenceThreshold)
			log.Info("Feedback pipeline ready", zap.Float64("threshold", pipeline.Threshold()))
			srv, err := server.New(pipeline, repo, log)
			if err != nil {
				return err
			}
			return srv.Run(ctx, ":"+cfg.Port)
		},
	}
}

func newResetCmd(in io.Reader, out io.Writer) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "DELETE ALL DATA in Neo4j and reseed the demo catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !skipConfirm {
				log.Warn("⚠️  WARNING: This will DELETE ALL DATA from Neo4j!", zap.String("uri", cfg.Neo4jURI))
				fmt.Fprint(out, "Are you sure you want to continue? (yes/no): ")
				response, _ := bufio.NewReader(in).ReadString('\n')
				response = strings.ToLower(strings.TrimSpace(response))
				if response != "yes" && response != "y" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			repo, err := graph.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())

			if err := repo.ResetAndSeed(ctx, graph.SeedCatalog()); err != nil {
				return err
			}

			stats, err := repo.Stats(ctx)
			if err != nil {
				return err
			}
			log.Info("✅ Database reset and seed completed successfully!",
				zap.Int64("products", stats.Products),
				zap.Int64("users", stats.Users),
			)
			fmt.Fprintf(out, "Reset complete: %d products seeded.\n", stats.Products)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}
