package llm

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/logger"
	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

//go:embed templates/system_prompt.txt
var systemPrompt string

// sampleRows is how many leading rows are quoted in the prompt
const sampleRows = 5

// InsightsClient asks an OpenAI model to describe a dataset and its charts
type InsightsClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// NewInsightsClient creates a client for the public OpenAI API
func NewInsightsClient(apiKey, model string) *InsightsClient {
	return NewInsightsClientWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewInsightsClientWithConfig creates a client from an explicit go-openai
// config, e.g. one pointing at a different base URL
func NewInsightsClientWithConfig(cfg openai.ClientConfig, model string) *InsightsClient {
	return &InsightsClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: 60 * time.Second,
		log:     logger.Component("llm"),
	}
}

// Describe returns a markdown report about the dataset and figures
func (c *InsightsClient) Describe(ctx context.Context, ds *dataset.Dataset, figures []resolver.Figure) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("no dataset to describe")
	}

	prompt, err := BuildPrompt(ds, figures)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   1200,
			Temperature: 0.3,
		},
	)
	if err != nil {
		c.log.Error("OpenAI API error", err, logger.Fields{"model": c.model})
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	report := resp.Choices[0].Message.Content
	c.log.Info("Generated insights", logger.Fields{
		"model":    c.model,
		"chars":    len(report),
		"duration": time.Since(start).String(),
	})
	return report, nil
}

// SystemPrompt returns the instructions sent with every request
func SystemPrompt() string {
	return systemPrompt
}

type columnSummary struct {
	Name  string       `json:"name"`
	Kind  dataset.Kind `json:"kind"`
	Nulls int          `json:"nulls"`
	Min   *float64     `json:"min,omitempty"`
	Max   *float64     `json:"max,omitempty"`
}

type figureSummary struct {
	Title       string                `json:"title"`
	Kind        resolver.PlotKind     `json:"kind"`
	Series      []string              `json:"series"`
	Annotations []resolver.Annotation `json:"annotations,omitempty"`
}

// BuildPrompt summarizes the dataset and the charted figures
func BuildPrompt(ds *dataset.Dataset, figures []resolver.Figure) (string, error) {
	var columns []columnSummary
	for _, info := range ds.Schema() {
		values, err := ds.Values(info.Name)
		if err != nil {
			return "", err
		}
		summary := columnSummary{Name: info.Name, Kind: info.Kind}
		for _, v := range values {
			if v == nil {
				summary.Nulls++
			}
		}
		if info.Kind == dataset.KindNumeric {
			if lo, hi, err := ds.Bounds(info.Name); err == nil {
				summary.Min, summary.Max = &lo, &hi
			}
		}
		columns = append(columns, summary)
	}

	var sample bytes.Buffer
	if err := ds.Head(sampleRows).WriteCSV(&sample); err != nil {
		return "", fmt.Errorf("failed to sample rows: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Dataset (%d rows, %d columns)\n\n", ds.Len(), len(columns))

	b.WriteString("### Columns:\n```json\n")
	if jsonData, err := json.MarshalIndent(columns, "", "  "); err == nil {
		b.Write(jsonData)
	}
	b.WriteString("\n```\n\n")

	fmt.Fprintf(&b, "### First %d rows:\n```csv\n", sampleRows)
	b.WriteString(strings.TrimRight(sample.String(), "\n"))
	b.WriteString("\n```\n\n")

	if len(figures) == 0 {
		b.WriteString("### Charts:\nNo chart is selected yet.\n")
		return b.String(), nil
	}

	summaries := make([]figureSummary, 0, len(figures))
	for _, fig := range figures {
		s := figureSummary{Title: fig.Title, Kind: fig.Kind, Annotations: fig.Annotations}
		for _, series := range fig.Series {
			s.Series = append(s.Series, series.Name)
		}
		summaries = append(summaries, s)
	}
	b.WriteString("### Charts:\n```json\n")
	if jsonData, err := json.MarshalIndent(summaries, "", "  "); err == nil {
		b.Write(jsonData)
	}
	b.WriteString("\n```\n")

	return b.String(), nil
}
