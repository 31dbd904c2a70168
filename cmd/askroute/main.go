package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zen-systems/askroute/pkg/config"
	"github.com/zen-systems/askroute/pkg/ingest"
	"github.com/zen-systems/askroute/pkg/location"
	"github.com/zen-systems/askroute/pkg/pipeline"
	"github.com/zen-systems/askroute/pkg/router"
	"github.com/zen-systems/askroute/pkg/server"
	"github.com/zen-systems/askroute/pkg/telemetry"
)

const version = "0.1.0"

var (
	configFile   string
	logLevelFlag string
	aliases      *config.ModelAliases
	logger       = zerolog.Nop()
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "askroute",
		Short: "Answer weather and document questions through a hybrid router",
		Long: `askroute routes each question to a weather handler or a PDF
	question-answering handler. Keyword rules decide first; an LLM classifier
	decides when no rule matches.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ~/.askroute/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(candidatesCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer a question",
		Long: `Routes the question and prints the answer with the routing decision.
	PDF answers are followed by their citations.

	Use --json to print the full response object.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			shutdown, err := telemetry.Init(ctx, cfg.Telemetry, version, logger)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			agent, err := buildAgent(cfg)
			if err != nil {
				return err
			}

			resp, err := agent.Run(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			printResponse(os.Stdout, resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the response as JSON")

	return cmd
}

// printResponse writes the answer, the route line and any citations.
func printResponse(w io.Writer, resp *pipeline.Response) {
	fmt.Fprintln(w, resp.Answer)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "[route] %s (%s)\n", resp.Route, resp.RouteReason)

	citations := resp.Citations()
	if len(citations) == 0 {
		return
	}
	fmt.Fprintln(w, "[citations]")
	for _, c := range citations {
		fmt.Fprintf(w, "- page=%d chunk_ref=%s\n", c.Page, c.ChunkRef)
	}
}

func routeCmd() *cobra.Command {
	var showRules bool

	cmd := &cobra.Command{
		Use:   "route [query]",
		Short: "Show the routing decision for a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return fmt.Errorf("failed to create adapters: %w", err)
			}
			r, err := buildRouter(cfg, adapters)
			if err != nil {
				return err
			}

			decision, err := r.Route(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var keywords []string
			if showRules {
				keywords = r.Rules().Keywords()
			}
			return printDecision(os.Stdout, decision, keywords)
		},
	}

	cmd.Flags().BoolVar(&showRules, "rules", false, "also list the weather keywords checked before the classifier")
	return cmd
}

func printDecision(out io.Writer, decision *router.Decision, keywords []string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ROUTE\t%s\n", decision.Route)
	fmt.Fprintf(w, "REASON\t%s\n", decision.Reason)
	if decision.Keyword != "" {
		fmt.Fprintf(w, "KEYWORD\t%s\n", decision.Keyword)
	}
	if decision.UsedLLM {
		fmt.Fprintf(w, "CLASSIFIER\t%s/%s\n", decision.ClassifierAdapter, decision.ClassifierModel)
		fmt.Fprintf(w, "OUTPUT\t%q\n", decision.ClassifierOutput)
	}
	if len(keywords) > 0 {
		fmt.Fprintf(w, "RULES\t%s\n", strings.Join(keywords, ", "))
	}
	return w.Flush()
}

func candidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates [query]",
		Short: "List the location candidates extracted from a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			candidates := location.NewResolver(cfg.Location).ExtractCandidates(args[0])
			if len(candidates) == 0 {
				fmt.Println("No location candidates found.")
				return nil
			}
			for i, c := range candidates {
				fmt.Printf("%d. %s\n", i+1, c)
			}
			return nil
		},
	}
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [pdf]",
		Short: "Load a PDF into the vector collection",
		Long: `Extracts the text of each page, splits it into overlapping chunks,
	embeds them and upserts them into the Qdrant collection. Point ids are
	derived from chunk content, so re-ingesting a document overwrites it.

	Without an argument the ingest.pdf_path setting (PDF_PATH) is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			path := cfg.Ingest.PDFPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no pdf given and ingest.pdf_path is not set")
			}

			pages, err := ingest.LoadPDF(path)
			if err != nil {
				return err
			}

			ing, store, err := buildIngester(cfg)
			if err != nil {
				return err
			}
			res, err := ing.Ingest(cmd.Context(), pages)
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d chunks from %d pages into Qdrant collection: %s\n",
				res.Stored, res.Pages, store.Collection())
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ask API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addrFlag != "" {
				cfg.Server.Addr = addrFlag
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := telemetry.Init(ctx, cfg.Telemetry, version, logger)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			agent, err := buildAgent(cfg)
			if err != nil {
				return err
			}

			srv := server.New(agent, cfg.Server.Addr,
				server.WithLogger(logger.With().Str("component", "server").Logger()),
				server.WithVersion(version),
			)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool
	var validateFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available adapters, models, and aliases",
		Long: `Lists adapters and their available models.

	Use --resolve to show aliases and what they resolve to.
	Use --validate to check that every configured model is served by its adapter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if resolveFlag {
				return showAliases()
			}

			if validateFlag {
				return validateModels(cfg)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")

			providers := aliases.ListProviders()
			if len(providers) == 0 {
				providers = []string{"anthropic", "deepseek", "google", "openai", "mock"}
			}

			for _, provider := range providers {
				models := strings.Join(aliases.GetProviderModels(provider), ", ")
				status := "no key"
				if cfg.HasAdapter(provider) {
					status = "ready"
				}
				if provider == cfg.LLM.Adapter {
					status += " (selected)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, models, status)
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")
	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check configured models against their adapters")

	return cmd
}

func showAliases() error {
	if aliases == nil {
		fmt.Println("No model aliases configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")

	aliasMap := aliases.ListAliases()
	var aliasNames []string
	for name := range aliasMap {
		aliasNames = append(aliasNames, name)
	}
	sort.Strings(aliasNames)

	for _, alias := range aliasNames {
		model := aliasMap[alias]
		provider := aliases.GetProviderForModel(model)
		fmt.Fprintf(w, "%s\t%s\t%s\n", alias, model, provider)
	}

	return w.Flush()
}

func validateModels(cfg *config.Config) error {
	errs := aliases.ValidateConfig(cfg)
	if len(errs) == 0 {
		fmt.Println("All configured models are valid.")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Found %d validation errors:\n", len(errs))
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}
