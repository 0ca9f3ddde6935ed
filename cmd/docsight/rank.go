package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dghofer/docsight/internal/answer"
	"github.com/dghofer/docsight/internal/persona"
	"github.com/dghofer/docsight/internal/pipeline"
	"github.com/dghofer/docsight/internal/rank"
)

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <file> [file...]",
		Short: "Rank document sections for a persona and job to be done",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRank,
	}

	cmd.Flags().String("persona", "", "persona description, e.g. \"Investment Analyst\"")
	cmd.Flags().String("job", "", "job to be done, e.g. \"Analyze revenue trends\"")
	cmd.Flags().String("question", "", "optional free-text question beyond the job")
	cmd.Flags().Int("limit", 0, "cap extracted sections (0 = all)")
	cmd.Flags().Float64("cosine-weight", 0.7, "weight of textual similarity")
	cmd.Flags().Float64("persona-weight", 0.3, "weight of persona alignment")
	cmd.Flags().Int("top-sections", 5, "sections to refine into passages")
	cmd.Flags().Int("top-sentences", 3, "sentences per refined passage")
	cmd.Flags().Duration("deadline", 60*time.Second, "soft deadline for ranking")
	cmd.MarkFlagRequired("job")

	viper.BindPFlag("persona", cmd.Flags().Lookup("persona"))
	viper.BindPFlag("job", cmd.Flags().Lookup("job"))
	viper.BindPFlag("question", cmd.Flags().Lookup("question"))
	viper.BindPFlag("limit", cmd.Flags().Lookup("limit"))
	viper.BindPFlag("cosine-weight", cmd.Flags().Lookup("cosine-weight"))
	viper.BindPFlag("persona-weight", cmd.Flags().Lookup("persona-weight"))
	viper.BindPFlag("top-sections", cmd.Flags().Lookup("top-sections"))
	viper.BindPFlag("top-sentences", cmd.Flags().Lookup("top-sentences"))
	viper.BindPFlag("deadline", cmd.Flags().Lookup("deadline"))

	return cmd
}

func runRank(cmd *cobra.Command, args []string) error {
	vocabs, err := loadVocab(viper.GetString("vocab"))
	if err != nil {
		return err
	}

	docs, err := parseFiles(args)
	if err != nil {
		return err
	}

	_, ix, err := pipeline.BuildIndex(cmd.Context(), docs, 4, nil)
	if err != nil {
		return err
	}

	weights := rank.DefaultWeights()
	weights.Cosine = viper.GetFloat64("cosine-weight")
	weights.Persona = viper.GetFloat64("persona-weight")
	if sum := weights.Cosine + weights.Persona; sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("cosine-weight and persona-weight must sum to 1, got %v", sum)
	}

	acfg := answer.DefaultConfig()
	acfg.TopSections = viper.GetInt("top-sections")
	acfg.TopSentences = viper.GetInt("top-sentences")

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("deadline"))
	defer cancel()

	result := pipeline.RunQuery(ctx, ix, args, pipeline.QueryParams{
		Persona:  viper.GetString("persona"),
		Job:      viper.GetString("job"),
		Question: viper.GetString("question"),
		Limit:    viper.GetInt("limit"),
	}, vocabs, weights, acfg, nil)
	return writeJSON(os.Stdout, result)
}

func loadVocab(path string) (persona.Vocabularies, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return persona.LoadVocabularies(f)
}
