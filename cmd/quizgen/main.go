package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/handler"
	appI18n "github.com/ivyinautumn/Intelligent-question-generator/internal/i18n"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/llm"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/loader"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/question"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/quiz"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quizgen",
		Short: "Document-grounded quiz generator powered by LLMs",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), mergeCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `quizgen --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func llmFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("llm-url", "http://localhost:8000/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "sk-no-key-required", "API key for LLM")
	f.String("llm-model", "Qwen2.5-7B-Instruct", "LLM model name")
	f.Duration("llm-timeout", 120*time.Second, "Timeout for a single LLM call (0 = none)")
}

func commonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("data-dir", "data", "Directory for documents and question banks")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	commonFlags(cmd)
	llmFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringP("lang", "l", "zh", "UI message language (en, zh)")
	f.Int("similarity-threshold", question.DefaultThreshold, "Fuzzy similarity score above which generated questions are dropped")
	f.Int("grading-threshold", quiz.DefaultSubjectiveThreshold, "Semantic similarity score for subjective answers to count as correct")
	f.Bool("fallback-questions", false, "Substitute template questions when model output is unparseable")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate questions from a document into its bank",
		RunE:  runGenerate,
	}
	commonFlags(cmd)
	llmFlags(cmd)
	f := cmd.Flags()
	f.StringP("file", "f", "", "Source document filename (required)")
	f.IntP("count", "n", 5, "Questions to generate per type")
	f.StringSliceP("types", "t", nil, "Question types to generate (single_choice, judge, subjective; default all)")
	f.Int("similarity-threshold", question.DefaultThreshold, "Fuzzy similarity score above which generated questions are dropped")
	f.Bool("fallback-questions", false, "Substitute template questions when model output is unparseable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge one question bank into another",
		RunE:  runMerge,
	}
	commonFlags(cmd)
	f := cmd.Flags()
	f.String("into", "", "Target bank name (required)")
	f.String("from", "", "Source bank name (required)")
	_ = cmd.MarkFlagRequired("into")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance. The LLM settings also honor the conventional OPENAI_* env
// variable names.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("llm-key", "QUIZGEN_LLM_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm-url", "QUIZGEN_LLM_URL", "OPENAI_API_BASE")
	_ = v.BindEnv("llm-model", "QUIZGEN_LLM_MODEL", "OPENAI_MODEL_NAME")

	v.SetConfigName("quizgen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizgen")
	v.AddConfigPath("/etc/quizgen")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func newLLMClient(v *viper.Viper) *llm.Client {
	return llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
		v.GetDuration("llm-timeout"),
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	l, err := loader.New(v.GetString("data-dir"))
	if err != nil {
		return fmt.Errorf("init data dir: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	llmClient := newLLMClient(v)
	if err := llmClient.Ping(cmd.Context()); err != nil {
		// Bank browsing and objective grading work without a model;
		// generation and subjective grading will fail per request.
		slog.Warn("LLM health check failed", "url", v.GetString("llm-url"), "error", err)
	} else {
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}

	gen := question.NewGenerator(llmClient, l, v.GetInt("similarity-threshold"), v.GetBool("fallback-questions"))
	agent := quiz.NewAgent(llmClient, v.GetInt("grading-threshold"))
	h := handler.New(l, gen, agent)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"data_dir", v.GetString("data-dir"),
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"similarity_threshold", v.GetInt("similarity-threshold"),
	)
	return http.ListenAndServe(addr, r)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	l, err := loader.New(v.GetString("data-dir"))
	if err != nil {
		return fmt.Errorf("init data dir: %w", err)
	}

	gen := question.NewGenerator(newLLMClient(v), l, v.GetInt("similarity-threshold"), v.GetBool("fallback-questions"))

	var types []model.QuestionType
	for _, t := range v.GetStringSlice("types") {
		types = append(types, model.QuestionType(t))
	}

	file := v.GetString("file")
	generated, err := gen.Generate(context.Background(), file, v.GetInt("count"), types...)
	if err != nil {
		return fmt.Errorf("generate from %s: %w", file, err)
	}
	bank, err := gen.SaveBank(file, generated)
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "generated %d questions into %s.json\n", len(generated), bank)
	return nil
}

func runMerge(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	l, err := loader.New(v.GetString("data-dir"))
	if err != nil {
		return fmt.Errorf("init data dir: %w", err)
	}

	into, from := v.GetString("into"), v.GetString("from")
	target, err := l.LoadBank(into)
	if err != nil {
		return err
	}
	source, err := l.LoadBank(from)
	if err != nil {
		return err
	}

	merged := loader.Merge(target, source)
	if err := l.SaveBank(into, merged); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "merged %s into %s: %d questions (%d added)\n",
		from, into, len(merged), len(merged)-len(target))
	return nil
}
