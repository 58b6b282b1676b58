package agents

import (
	"context"
	"fmt"

	"ai-research-be/internal/entity"
	"ai-research-be/pkg/arxiv"
	"ai-research-be/pkg/pipeline"
)

const (
	searchConfidence      = 0.9
	searchEmptyConfidence = 0.3
)

// SearchAgent queries the literature API with the keywords the thesis step
// merged into shared memory.
type SearchAgent struct {
	client     *arxiv.Client
	maxResults int
}

func NewSearchAgent(client *arxiv.Client, maxResults int) *SearchAgent {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchAgent{client: client, maxResults: maxResults}
}

func (a *SearchAgent) StepType() entity.StepType { return entity.StepSearch }

func (a *SearchAgent) Run(ctx context.Context, in Input) (*Output, error) {
	keywords := in.Session.Memory.Keywords
	warnings := []string{}
	if len(keywords) == 0 {
		// Thesis produced no keywords; fall back to the raw question.
		keywords = []string{in.Session.Question}
		warnings = append(warnings, "no keywords in shared memory; searched with the raw research question")
	}

	results, err := a.client.Search(ctx, keywords, a.maxResults)
	if err != nil {
		return nil, fmt.Errorf("literature search: %w", err)
	}

	papers := make([]pipeline.Paper, 0, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		papers = append(papers, pipeline.Paper{
			ID:        r.ID,
			Title:     r.Title,
			Authors:   r.Authors,
			Abstract:  r.Abstract,
			Published: r.Published,
			URL:       r.URL,
		})
		sources = append(sources, r.URL)
	}

	confidence := searchConfidence
	summary := fmt.Sprintf("Found %d papers for %s.", len(papers), arxiv.BuildQuery(keywords))
	if len(papers) == 0 {
		confidence = searchEmptyConfidence
		summary = "No papers found for the current keywords."
		warnings = append(warnings, "No papers found")
	}

	return &Output{
		Summary:    summary,
		Confidence: confidence,
		Sources:    sources,
		Warnings:   warnings,
		Metadata: pipeline.SearchMetadata{
			Query:  arxiv.BuildQuery(keywords),
			Papers: papers,
		},
	}, nil
}
