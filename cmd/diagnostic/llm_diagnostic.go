// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/iyunix/go-planner/internal/config"
	"github.com/iyunix/go-planner/internal/services/ai"
	"github.com/iyunix/go-planner/internal/services/chat"
)

func main() {
	prompt := flag.String("prompt", "Plan a 3-day trip to Lisbon starting 2025-06-01.", "message sent to the assistant")
	listModels := flag.Bool("models", false, "list the models the endpoint serves")
	timeout := flag.Duration("timeout", 90*time.Second, "request timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.LLMAPIKey
	aiConfig.BaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.LLMModel
	aiConfig.MaxTokens = cfg.LLMMaxTokens
	if err := aiConfig.Validate(); err != nil {
		log.Fatalf("LLM configuration error: %v", err)
	}

	fmt.Printf("Endpoint: %s\nModel:    %s\n\n", aiConfig.BaseURL, aiConfig.Model)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *listModels {
		clientConfig := openai.DefaultConfig(aiConfig.APIKey)
		clientConfig.BaseURL = aiConfig.BaseURL
		models, err := openai.NewClientWithConfig(clientConfig).ListModels(ctx)
		if err != nil {
			log.Fatalf("Listing models failed: %v", err)
		}
		for _, m := range models.Models {
			fmt.Println(" -", m.ID)
		}
		fmt.Println()
	}

	provider := ai.NewOpenAIProvider(aiConfig)
	started := time.Now()
	reply, err := provider.Complete(ctx, ai.PlannerSystemPrompt, []ai.Turn{{Role: "user", Content: *prompt}})
	if err != nil {
		log.Fatalf("Chat completion failed: %v", err)
	}

	fmt.Printf("Reply (%s):\n%s\n\n", time.Since(started).Round(time.Millisecond), reply)

	proposal, ok := chat.ExtractProposal(reply)
	if !ok {
		fmt.Println("No plan proposal found in the reply.")
		os.Exit(0)
	}
	fmt.Printf("Plan proposal: %q, %s to %s, %d tasks\n",
		proposal.Title, proposal.StartDate, proposal.EndDate, len(proposal.Tasks))
}
