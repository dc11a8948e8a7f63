package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/zen-systems/teamgate/pkg/adapter"
	"github.com/zen-systems/teamgate/pkg/agent"
	"github.com/zen-systems/teamgate/pkg/config"
	"github.com/zen-systems/teamgate/pkg/expert"
	"github.com/zen-systems/teamgate/pkg/memory"
	"github.com/zen-systems/teamgate/pkg/queue"
	"github.com/zen-systems/teamgate/pkg/server"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags.
var version = "dev"

var verboseFlag bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "teamgate",
		Short: "Multi-agent coordination service with expert selection",
		Long: `Teamgate coordinates a small agile team of agents: a Product Owner
	plans work, an Agile Coach reviews it, and domain experts are selected
	from task text by keyword heuristics with an optional LLM assist.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(expertsCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(retroCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verboseFlag {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newSelector(cfg *config.Config, log *zap.Logger) (*expert.Selector, error) {
	var catalog *expert.Catalog
	if cfg.CatalogPath != "" {
		loaded, err := expert.LoadCatalogFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		catalog = loaded
	}

	var oracle expert.Oracle
	if a := adapter.Detect(cfg.OracleSettings(), log); a != nil {
		oracle = a
	}

	return expert.NewSelector(catalog, oracle, log), nil
}

func serveCmd() *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and chat WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addrFlag != "" {
				cfg.ListenAddr = addrFlag
			}

			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := memory.NewStore(ctx, cfg.RedisURL, log)
			graph, err := memory.NewKnowledgeGraph(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
			if err != nil {
				return fmt.Errorf("failed to connect to graph store: %w", err)
			}
			defer graph.Close(context.Background())

			selector, err := newSelector(cfg, log)
			if err != nil {
				return err
			}

			dispatcher, cleanup := newDispatcher(ctx, cfg, store, graph, log)
			defer cleanup()

			srv := server.New(server.Options{
				Store:         store,
				Graph:         graph,
				Selector:      selector,
				Dispatcher:    dispatcher,
				Version:       version,
				OracleTimeout: cfg.Oracle.Timeout,
				Log:           log,
			})

			httpSrv := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: srv.Handler(),
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("server listening", zap.String("addr", cfg.ListenAddr))
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides config)")

	return cmd
}

// newDispatcher returns the Redis-backed dispatcher when Redis is
// configured and reachable, otherwise an inline one. Either way the retro
// handler is wired so /api/retro/run always works.
func newDispatcher(ctx context.Context, cfg *config.Config, store memory.Store, graph *memory.KnowledgeGraph, log *zap.Logger) (queue.Dispatcher, func()) {
	coach := agent.NewAgileCoach(store, graph, log)

	if cfg.RedisURL != "" {
		q, err := queue.NewQueue(ctx, cfg.RedisURL, log)
		if err == nil {
			log.Info("task queue using redis")
			return q, func() { q.Close() }
		}
		log.Warn("falling back to inline task execution", zap.Error(err))
	}

	d := queue.NewInline(log)
	d.Register(queue.KindRetro, queue.NewRetroHandler(coach, log))
	return d, func() {}
}

func workerCmd() *cobra.Command {
	var timeoutFlag time.Duration

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the background task worker",
		Long:  "Consumes queued tasks from Redis. Requires REDIS_URL or redis.url in config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.RedisURL == "" {
				return fmt.Errorf("worker requires a redis URL")
			}

			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := memory.NewStore(ctx, cfg.RedisURL, log)
			graph, err := memory.NewKnowledgeGraph(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
			if err != nil {
				return fmt.Errorf("failed to connect to graph store: %w", err)
			}
			defer graph.Close(context.Background())

			q, err := queue.NewQueue(ctx, cfg.RedisURL, log)
			if err != nil {
				return fmt.Errorf("failed to connect to task queue: %w", err)
			}
			defer q.Close()

			coach := agent.NewAgileCoach(store, graph, log)
			w := queue.NewWorker(q, timeoutFlag, log)
			w.Register(queue.KindRetro, queue.NewRetroHandler(coach, log))

			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeoutFlag, "task-timeout", time.Minute, "per-task execution timeout")

	return cmd
}

func expertsCmd() *cobra.Command {
	var debugFlag bool
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "experts [description]",
		Short: "Select the experts needed for a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log := zap.NewNop()
			if verboseFlag {
				if log, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}

			selector, err := newSelector(cfg, log)
			if err != nil {
				return err
			}

			store := memory.NewInMemoryStore()
			po := agent.NewProductOwner(store, nil, log)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Oracle.Timeout)
			defer cancel()

			tasks := po.PlanWork(ctx, description)
			selection := selector.SelectFromTasks(ctx, tasks)

			if jsonFlag {
				out := map[string]any{"tasks": tasks, "experts": selection.Experts}
				if debugFlag {
					out["_debug"] = selection.Debug
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			heading := color.New(color.FgCyan, color.Bold)
			heading.Println("Plan")
			for i, task := range tasks {
				fmt.Printf("  %d. %s\n", i+1, task)
			}

			heading.Println("Experts")
			for _, spec := range selection.Experts {
				name := color.GreenString("%-16s", spec.Expertise)
				fmt.Printf("  %s %.1f (%s)\n", name, spec.Confidence, spec.Source)
			}

			if debugFlag {
				heading.Println("Debug")
				fmt.Printf("  heuristic: %v\n", selection.Debug.Heuristic)
				if selection.Debug.Oracle.Provider != "" {
					fmt.Printf("  oracle:    %s -> %v\n",
						selection.Debug.Oracle.Provider, selection.Debug.Oracle.Parsed)
				} else {
					fmt.Println("  oracle:    disabled")
				}
				fmt.Printf("  final:     %v\n", selection.Debug.Final)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&debugFlag, "debug", false, "show selection debug details")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "emit JSON instead of text")

	return cmd
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [description]",
		Short: "Show the Product Owner's plan and the Agile Coach's feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := memory.NewInMemoryStore()
			log := zap.NewNop()

			po := agent.NewProductOwner(store, nil, log)
			coach := agent.NewAgileCoach(store, nil, log)

			tasks := po.PlanWork(cmd.Context(), args[0])
			for i, task := range tasks {
				fmt.Printf("%d. %s\n", i+1, task)
			}
			fmt.Println()
			fmt.Println(coach.FeedbackOnPlan(cmd.Context(), tasks))
			return nil
		},
	}
}

func retroCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retro",
		Short: "Dispatch a retrospective task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			store := memory.NewStore(ctx, cfg.RedisURL, log)
			graph, err := memory.NewKnowledgeGraph(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
			if err != nil {
				return fmt.Errorf("failed to connect to graph store: %w", err)
			}
			defer graph.Close(context.Background())

			dispatcher, cleanup := newDispatcher(ctx, cfg, store, graph, log)
			defer cleanup()

			id, err := dispatcher.Dispatch(ctx, queue.KindRetro, nil)
			if err != nil {
				return fmt.Errorf("failed to dispatch retro: %w", err)
			}
			fmt.Printf("retro dispatched: %s\n", id)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the teamgate version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
