// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the answer-engine CLI. It wires
// configuration, secrets, and the pipeline, and exposes two surfaces:
// a one-shot "answer" command and the "serve" HTTP service.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/internal/pipeline"
	"github.com/pdiddy/answer-engine/internal/prompts"
	"github.com/pdiddy/answer-engine/internal/pubmed"
	"github.com/pdiddy/answer-engine/internal/secrets"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the answer-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "answer-engine",
	Short: "Clinical question answering over PubMed literature",
	Long: `answer-engine answers free-text clinical questions by generating PubMed
queries, retrieving and filtering the literature, and synthesizing a cited
answer with a language model.

Use "answer" for a one-shot question on the command line, or "serve" to run
the HTTP service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./answer-engine.yaml or ~/.config/answer-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("answer-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "answer-engine"))
		}
	}

	viper.SetEnvPrefix("ANSWER_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.5)
	viper.SetDefault("llm.timeout", "90s")
	viper.SetDefault("pubmed.timeout", "30s")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.return_articles", true)
	viper.SetDefault("prompt_path", "configs/prompts.yaml")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the full configuration from viper and secrets.
func loadConfig() types.Config {
	cfg := types.Config{
		LLM: types.LLMConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("llm.timeout"),
				UserAgent: "answer-engine/" + version,
			},
			Model:       viper.GetString("llm.model"),
			APIKey:      secretDefault("openai-api-key", viper.GetString("llm.api_key")),
			Temperature: viper.GetFloat64("llm.temperature"),
		},
		PubMed: types.PubMedConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("pubmed.timeout"),
				UserAgent: "answer-engine/" + version,
			},
			Email:     secretDefault("entrez-email", viper.GetString("pubmed.email")),
			APIKey:    secretDefault("ncbi-api-key", viper.GetString("pubmed.api_key")),
			CachePath: viper.GetString("pubmed.cache_path"),
		},
		Pipeline: types.PipelineConfig{
			NumResults:       viper.GetInt("pipeline.num_results"),
			QueryAttempts:    viper.GetInt("pipeline.query_attempts"),
			Concurrency:      viper.GetInt("pipeline.concurrency"),
			RetryCooldown:    viper.GetDuration("pipeline.retry_cooldown"),
			RestrictionYears: viper.GetInt("pipeline.restriction_years"),
			RerankThreshold:  viper.GetInt("pipeline.rerank_threshold"),
			RerankTopN:       viper.GetInt("pipeline.rerank_top_n"),
		},
		Server: types.ServerConfig{
			Addr:           viper.GetString("server.addr"),
			ReturnArticles: viper.GetBool("server.return_articles"),
		},
		PromptPath: viper.GetString("prompt_path"),
	}
	return cfg
}

func newLogger() (*zap.Logger, error) {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildEngine wires the pipeline from config. The returned closer
// releases the record cache when one is configured.
func buildEngine(cfg types.Config, log *zap.Logger) (*pipeline.Engine, func() error, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil, fmt.Errorf("no OpenAI API key: set .secrets/openai-api-key or llm.api_key")
	}

	catalog, err := prompts.Load(cfg.PromptPath)
	if err != nil {
		return nil, nil, err
	}

	var store *cache.Store
	closer := func() error { return nil }
	if cfg.PubMed.CachePath != "" {
		store, err = cache.Open(cfg.PubMed.CachePath)
		if err != nil {
			return nil, nil, err
		}
		closer = store.Close
	}

	client := llm.NewOpenAIBackend(cfg.LLM)
	search := pubmed.NewClient(cfg.PubMed, log)

	return pipeline.New(client, search, store, catalog, cfg, log), closer, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseRestrictionDate converts the CLI's YYYY-MM-DD form to the
// pipeline's query grammar, or returns an error for anything else.
func parseRestrictionDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("restriction date must be YYYY-MM-DD: %w", err)
	}
	return date.Format("2006/01/02"), nil
}
