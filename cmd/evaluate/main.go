package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/application/services"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/evaluation"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/clients/openai"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/infrastructure/observability"
	"github.com/svasikarla/USInsuranceDetails-sub001/pkg/config"
)

func main() {
	var goldenPath string
	var useAI bool

	flag.StringVar(&goldenPath, "golden", "config/golden_policies.json", "Path to the golden policy cases")
	flag.BoolVar(&useAI, "ai", false, "Use the AI extractor when an OpenAI key is configured")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("insurance-details-evaluate", cfg.Server.Env)

	cases, err := evaluation.LoadGoldenCases(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load golden cases")
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		log.Fatal().Err(err).Msg("Golden cases are invalid")
	}

	var provider providers.PolicyExtractionProvider
	if useAI && cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create OpenAI client")
		}
		provider = client
	}

	extractor := services.NewPolicyDataExtractor(provider, services.PolicyExtractorConfig{
		AIEnabled: provider != nil,
		AITimeout: cfg.Workflow.AITimeout,
	})
	detector := services.NewRedFlagDetector().
		WithDedup(cfg.Workflow.RedFlagDedup).
		WithConfidence(cfg.Workflow.RedFlagConfidence)

	summary, err := evaluation.NewRunner(extractor, detector).Run(context.Background(), cases)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
