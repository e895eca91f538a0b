// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/pipeline"
)

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer a clinical question from the literature",
	Long: `Answer generates PubMed queries for the question, retrieves and filters
matching articles with a language model, and prints a synthesized, cited
answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnswer,
}

func runAnswer(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	restrictionFlag, _ := cmd.Flags().GetString("restriction-date")
	restriction, err := parseRestrictionDate(restrictionFlag)
	if err != nil {
		return err
	}

	bm25, _ := cmd.Flags().GetBool("bm25")
	showArticles, _ := cmd.Flags().GetBool("articles")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, closer, err := buildEngine(loadConfig(), log)
	if err != nil {
		return err
	}
	defer closer()

	result, err := engine.Answer(context.Background(), question, pipeline.AnswerOptions{
		BM25:            bm25,
		RestrictionDate: restriction,
		IncludeArticles: showArticles || jsonOutput,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Synthesis == "" {
		fmt.Println("No answer could be produced from the literature.")
		if len(result.Queries) > 0 {
			fmt.Printf("Queries tried: %v\n", result.Queries)
		}
		return nil
	}

	fmt.Println(result.Synthesis)

	if showArticles {
		fmt.Printf("\n%d relevant article(s):\n", len(result.ArticleSummaries))
		for i, a := range result.ArticleSummaries {
			fmt.Printf("[%d] %s\n    %s\n", i+1, a.Title, a.URL)
		}
		if len(result.IrrelevantArticles) > 0 {
			fmt.Printf("\n%d article(s) judged not relevant.\n", len(result.IrrelevantArticles))
		}
	}
	return nil
}

func init() {
	answerCmd.Flags().Bool("bm25", false, "rerank summaries with BM25 when the candidate set is large")
	answerCmd.Flags().String("restriction-date", "", "restrict publication dates up to this day (YYYY-MM-DD)")
	answerCmd.Flags().Bool("articles", false, "list the relevant and irrelevant articles after the answer")
	answerCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(answerCmd)
}
