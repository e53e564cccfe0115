package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"sqladvisor-go/internal/model"
)

// OpenRouterClient is the generative-text augmentation client.
type OpenRouterClient struct {
	apiKey     string
	httpClient *http.Client
	model      string
}

// NewOpenRouterClient creates a client. The caller only constructs one when a
// key is configured; an unconfigured deployment never loads this path.
func NewOpenRouterClient(apiKey, model string) *OpenRouterClient {
	if model == "" {
		model = "google/gemini-3-flash-preview"
	}
	return &OpenRouterClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		model: model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenRouterClient) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://openrouter.ai/api/v1/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("X-Title", "SQL Advisor")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// extractJSON pulls a JSON object out of an LLM response, tolerating markdown
// code fences around it.
func extractJSON(response string) string {
	re := regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")
	matches := re.FindStringSubmatch(response)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end > start {
		return response[start : end+1]
	}

	return response
}

const advisorySystemPrompt = `You are a senior database performance engineer reviewing a single SQL query.

Return ONLY a JSON object with exactly these fields and no others:
{
  "summary": "2-3 sentence assessment of the query",
  "findings": ["specific anti-patterns or concerns, one per entry"],
  "rewrite_sql": "an improved version of the query, or an empty string when no rewrite helps",
  "index_recommendations": ["concrete CREATE INDEX statements"],
  "risks": ["operational risks of the query or of applying the suggested changes"],
  "test_steps": ["ordered steps to validate any change before rollout"]
}

Do not invent schema details that contradict the provided context.
Do not return markdown, commentary, or extra fields.`

// GenerateAdvisory issues the single augmentation call and parses the
// strictly-typed response. Any failure (transport, status, malformed JSON)
// surfaces as an error; the caller degrades to the static-only result.
func (o *OpenRouterClient) GenerateAdvisory(ctx context.Context, req *model.AnalysisRequest, normalizedSQL, planFragment string) (*model.AdvisoryResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "DBMS: %s\n", req.Dialect())
	if req.Version != "" {
		fmt.Fprintf(&b, "Engine version: %s\n", req.Version)
	}
	fmt.Fprintf(&b, "\nQuery:\n%s\n", normalizedSQL)
	if req.Context != "" {
		fmt.Fprintf(&b, "\nContext (known indexes, row counts, symptoms):\n%s\n", req.Context)
	}
	if planFragment != "" {
		fmt.Fprintf(&b, "\nExecution plan (may be truncated):\n%s\n", planFragment)
	}
	b.WriteString("\nAnalyze the query and return JSON.")

	response, err := o.chat(ctx, advisorySystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	jsonStr := extractJSON(response)
	var result model.AdvisoryResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("malformed advisory response: %w", err)
	}

	return &result, nil
}
