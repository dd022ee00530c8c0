// Package agent runs a turn-bounded conversation loop against an LLM,
// exposing read-only repository tools, and adapts the result to the
// analysis port of the skill orchestrator.
package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bkyoung/diffscope/internal/adapter/llm/anthropic"
	"github.com/bkyoung/diffscope/internal/usecase/skill"
)

// DefaultMaxTurns bounds the number of model calls per hunk when the
// request does not specify a budget.
const DefaultMaxTurns = 10

// Completer is the outbound port to the model API.
type Completer interface {
	Complete(ctx context.Context, req anthropic.Request) (*anthropic.Completion, error)
}

// Agent implements skill.AnalysisClient with a tool-use loop.
type Agent struct {
	llm     Completer
	tools   []Tool
	toolMap map[string]Tool
}

// New wires an agent over a model client and a repository.
func New(llm Completer, repo Repository) *Agent {
	tools := NewToolRegistry(repo)
	toolMap := make(map[string]Tool, len(tools))
	for _, t := range tools {
		toolMap[t.Name()] = t
	}
	return &Agent{llm: llm, tools: tools, toolMap: toolMap}
}

// Analyze runs the conversation loop for one hunk. The loop ends when
// the model answers without requesting a tool, the turn budget runs
// out, or the context is cancelled.
func (a *Agent) Analyze(ctx context.Context, req skill.AnalysisRequest) (skill.AnalysisResult, error) {
	maxTurns := req.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	system := SystemPrompt(a.tools)
	if req.Instructions != "" {
		system += "\n## Skill Instructions\n" + req.Instructions
	}

	messages := []anthropic.Message{{Role: "user", Content: req.Content}}
	result := skill.AnalysisResult{}

	for turn := 0; turn < maxTurns; turn++ {
		if ctx.Err() != nil {
			result.Status = skill.StatusAborted
			return result, nil
		}

		completion, err := a.llm.Complete(ctx, anthropic.Request{
			Model:    req.Model,
			System:   system,
			Messages: messages,
		})
		if err != nil {
			if ctx.Err() != nil {
				result.Status = skill.StatusAborted
				return result, nil
			}
			result.Status = skill.StatusError
			return result, fmt.Errorf("analysis call: %w", err)
		}

		result.Usage.Add(completion.Usage)
		result.Text = completion.Text

		toolName, toolInput, ok := parseToolCall(completion.Text)
		if !ok {
			result.Status = skill.StatusOK
			return result, nil
		}

		messages = append(messages, anthropic.Message{Role: "assistant", Content: completion.Text})

		tool, exists := a.toolMap[toolName]
		if !exists {
			messages = append(messages, anthropic.Message{
				Role:    "user",
				Content: fmt.Sprintf("Unknown tool: %s. Available tools: %s", toolName, strings.Join(a.toolNames(), ", ")),
			})
			continue
		}

		output, err := tool.Execute(ctx, toolInput)
		if err != nil {
			output = fmt.Sprintf("Error: %v", err)
		}

		messages = append(messages, anthropic.Message{
			Role:    "user",
			Content: ToolResultPrompt(toolName, toolInput, output),
		})
	}

	result.Status = skill.StatusMaxTurns
	return result, nil
}

// toolCallPattern matches tool invocations like "TOOL: read_file\nINPUT: main.go".
var toolCallPattern = regexp.MustCompile(`(?s)TOOL:\s*(\w+)\s*\nINPUT:\s*(.+?)(?:\n|$)`)

// parseToolCall extracts a tool request from a model response.
func parseToolCall(response string) (toolName, input string, ok bool) {
	matches := toolCallPattern.FindStringSubmatch(response)
	if len(matches) >= 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2]), true
	}
	return "", "", false
}

func (a *Agent) toolNames() []string {
	names := make([]string, len(a.tools))
	for i, t := range a.tools {
		names[i] = t.Name()
	}
	return names
}

// Compile-time interface check
var _ skill.AnalysisClient = (*Agent)(nil)
