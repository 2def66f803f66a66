// Package ai is the admin assistant. It answers questions about invoices
// and production progress by letting Gemini call read-only tools.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-print-erp/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const (
	DefaultModel = "gemini-2.0-flash-001"

	// maxToolRounds bounds how many times the model may call tools before
	// it has to answer.
	maxToolRounds = 5
)

var ErrNotConfigured = errors.New("assistant is not configured")

const systemPrompt = `Today is %s. You are the assistant of a printing business.

RULES:
1. For totals, revenue, outstanding dues or counts of invoices use 'get_invoice_stats',
   or 'get_sales_report' when the user names a period.
2. When the user mentions an invoice number, call 'find_invoice' before answering.
3. For the progress of a job, find the invoice first if you only have its number,
   then call 'get_item_progress' with the item id.
4. Amounts are in Indian rupees. Never invent numbers that no tool returned.`

type Agent struct {
	apiKey string
	model  string
	tools  *Toolbox
	now    func() time.Time
	log    zerolog.Logger
}

func NewAgent(apiKey string, tools *Toolbox) *Agent {
	return &Agent{
		apiKey: apiKey,
		model:  DefaultModel,
		tools:  tools,
		now:    time.Now,
		log:    logger.WithComponent("assistant"),
	}
}

// Ask sends the question to Gemini and resolves its tool calls until it
// answers in text.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	if a.apiKey == "" {
		return "", ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(fmt.Sprintf(systemPrompt, a.now().Format(toolDateLayout))))
	model.Tools = a.tools.Declarations()

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return answer(resp), nil
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result, err := a.tools.Call(ctx, call)
			if err != nil {
				return "", fmt.Errorf("tool %s: %w", call.Name, err)
			}
			a.log.Debug().Str("tool", call.Name).Msg("Assistant tool called")
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}

		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return "", err
		}
	}

	a.log.Warn().Int("rounds", maxToolRounds).Msg("Assistant kept calling tools")
	return answer(resp), nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, part := range parts(resp) {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func answer(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, part := range parts(resp) {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "I could not find an answer to that."
	}
	return b.String()
}

func parts(resp *genai.GenerateContentResponse) []genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
