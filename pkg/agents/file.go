package agents

import (
	"context"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/entity"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/pipeline"
	"ai-research-be/pkg/utils"
)

const (
	fileConfidence       = 0.95
	fileNoTextConfidence = 0.1

	// filePromptChunkSize bounds how much document text goes into the
	// prompt.
	filePromptChunkSize = 4000
)

// FileAgent extracts keywords and topics from an uploaded document's text.
// It never runs through ExecuteStep; the upload flow invokes it directly.
type FileAgent struct {
	provider llm.LLMProvider
}

func NewFileAgent(provider llm.LLMProvider) *FileAgent {
	return &FileAgent{provider: provider}
}

func (a *FileAgent) StepType() entity.StepType { return entity.StepFile }

func (a *FileAgent) Run(ctx context.Context, in Input) (*Output, error) {
	if in.FileText == "" {
		return &Output{
			Summary:    fmt.Sprintf("Stored %s; no text could be extracted for analysis.", in.FileName),
			Confidence: fileNoTextConfidence,
			Sources:    []string{in.FileName},
			Warnings:   []string{"no extractable text in the uploaded file"},
			Metadata: pipeline.FileMetadata{
				Filename:    in.FileName,
				ContentType: in.FileContentType,
			},
		}, nil
	}

	prompt := fmt.Sprintf(constant.FilePromptV1, utils.FirstChunk(in.FileText, filePromptChunkSize))
	raw, err := a.provider.Generate(ctx, prompt,
		llm.WithJSONOutput(),
		llm.WithTemperature(0.2),
	)
	if err != nil {
		return nil, fmt.Errorf("file analysis: %w", err)
	}

	var parsed struct {
		Summary  string   `json:"summary"`
		Keywords []string `json:"keywords"`
		Topics   []string `json:"topics"`
	}
	if err := decodeModelJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("file analysis output: %w", err)
	}

	return &Output{
		Summary:    parsed.Summary,
		Confidence: fileConfidence,
		Sources:    []string{in.FileName},
		Metadata: pipeline.FileMetadata{
			Filename:    in.FileName,
			ContentType: in.FileContentType,
			Keywords:    parsed.Keywords,
			Topics:      parsed.Topics,
		},
	}, nil
}
