// Package ai wraps the hosted language model behind the museum chat
// assistant.  It streams completions, exposes a single book_ticket
// tool the model may invoke mid-conversation, and feeds tool results
// back so the model can confirm the booking in its reply.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zeno-labs/museum-companion/internal/model"
)

// systemPrompt is the fixed instruction for every conversation.
const systemPrompt = `You are a museum assistant. Answer questions about the museum the ` +
	`visitor is viewing and offer to book tickets for them. When the visitor agrees to ` +
	`book, call the book_ticket tool with the museum id and the attendees' names and ` +
	`age groups (child, adult or senior). After a booking succeeds, tell the visitor ` +
	`their ticket is booked and share the receipt download link.`

// maxToolRounds caps how many times a single request may loop through
// tool execution before the conversation is cut off.
const maxToolRounds = 3

// Message is one entry of the conversation as exchanged with clients.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolOutcome is what the book_ticket tool hands back to the model.
type ToolOutcome struct {
	Message  string `json:"message"`
	PDFURL   string `json:"pdfUrl,omitempty"`
	MuseumID uint64 `json:"museumId,omitempty"`
}

// BookFunc executes a booking on behalf of the assistant.  It is
// injected by the chat handler so this package never touches storage
// directly.
type BookFunc func(ctx context.Context, museumID uint64, attendees []model.Attendee) (ToolOutcome, error)

// Assistant orchestrates streaming completions with tool calling.
// The BookFunc is supplied per call because it closes over the
// caller's identity.
type Assistant struct {
	client *openai.Client
	model  string
}

// NewAssistant builds an Assistant.  model may be empty, in which case
// gpt-4o-mini is used.
func NewAssistant(apiKey, modelName string) *Assistant {
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &Assistant{client: openai.NewClient(apiKey), model: modelName}
}

// bookTicketTool declares the single callable tool.
var bookTicketTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        "book_ticket",
		Description: "Book a ticket for a museum",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"museumId": {"type": "string", "description": "Identifier of the museum to book"},
				"attendees": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"name": {"type": "string"},
							"ageGroup": {"type": "string", "enum": ["child", "adult", "senior"]}
						},
						"required": ["name", "ageGroup"]
					}
				}
			},
			"required": ["museumId", "attendees"]
		}`),
	},
}

type bookTicketArgs struct {
	MuseumID  string `json:"museumId"`
	Attendees []struct {
		Name     string `json:"name"`
		AgeGroup string `json:"ageGroup"`
	} `json:"attendees"`
}

// ParseBookTicketArgs decodes and validates the tool-call arguments
// produced by the model.  Model output is untrusted input: ids must
// parse, names must be non-empty, and age groups must be known.
func ParseBookTicketArgs(raw string) (uint64, []model.Attendee, error) {
	var args bookTicketArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return 0, nil, fmt.Errorf("bad tool arguments: %w", err)
	}
	museumID, err := strconv.ParseUint(strings.TrimSpace(args.MuseumID), 10, 64)
	if err != nil || museumID == 0 {
		return 0, nil, errors.New("bad tool arguments: invalid museum id")
	}
	if len(args.Attendees) == 0 {
		return 0, nil, errors.New("bad tool arguments: no attendees")
	}
	attendees := make([]model.Attendee, 0, len(args.Attendees))
	for _, a := range args.Attendees {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return 0, nil, errors.New("bad tool arguments: attendee name is empty")
		}
		if !model.ValidAgeGroup(a.AgeGroup) {
			return 0, nil, fmt.Errorf("bad tool arguments: unknown age group %q", a.AgeGroup)
		}
		attendees = append(attendees, model.Attendee{Name: name, AgeGroup: a.AgeGroup})
	}
	return museumID, attendees, nil
}

// StreamReply runs the conversation against the model, forwarding text
// deltas to emit as they arrive.  When the model requests the
// book_ticket tool, book is executed, the outcome is appended to the
// conversation, and a follow-up stream produces the confirmation
// text.  It returns the assistant's full reply and whether a tool ran.
func (a *Assistant) StreamReply(ctx context.Context, history []Message, book BookFunc, emit func(string) error) (string, bool, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, m := range history {
		role := m.Role
		if role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	var reply strings.Builder
	toolRan := false

	for round := 0; round < maxToolRounds; round++ {
		stream, err := a.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: msgs,
			Tools:    []openai.Tool{bookTicketTool},
			Stream:   true,
		})
		if err != nil {
			return reply.String(), toolRan, err
		}

		var content strings.Builder
		toolCalls := map[int]*openai.ToolCall{}
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				stream.Close()
				return reply.String(), toolRan, err
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta
			if delta.Content != "" {
				content.WriteString(delta.Content)
				reply.WriteString(delta.Content)
				if err := emit(delta.Content); err != nil {
					stream.Close()
					return reply.String(), toolRan, err
				}
			}
			for _, tc := range delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				call, ok := toolCalls[idx]
				if !ok {
					call = &openai.ToolCall{Type: openai.ToolTypeFunction}
					toolCalls[idx] = call
				}
				if tc.ID != "" {
					call.ID = tc.ID
				}
				if tc.Function.Name != "" {
					call.Function.Name = tc.Function.Name
				}
				call.Function.Arguments += tc.Function.Arguments
			}
		}
		stream.Close()

		if len(toolCalls) == 0 {
			return reply.String(), toolRan, nil
		}

		// The model asked for tools: record its request, execute each
		// call, feed the outcomes back, and stream another round.
		assistantMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content.String()}
		for idx := 0; idx < len(toolCalls); idx++ {
			if call, ok := toolCalls[idx]; ok {
				assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, *call)
			}
		}
		msgs = append(msgs, assistantMsg)

		for _, call := range assistantMsg.ToolCalls {
			outcome := runTool(ctx, call, book)
			payload, err := json.Marshal(outcome)
			if err != nil {
				return reply.String(), toolRan, err
			}
			toolRan = true
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    string(payload),
			})
		}
	}
	return reply.String(), toolRan, nil
}

// runTool executes one tool call.  Failures become outcomes the model
// can explain to the visitor instead of surfacing as request errors.
func runTool(ctx context.Context, call openai.ToolCall, book BookFunc) ToolOutcome {
	if call.Function.Name != "book_ticket" {
		return ToolOutcome{Message: "Unknown tool: " + call.Function.Name}
	}
	museumID, attendees, err := ParseBookTicketArgs(call.Function.Arguments)
	if err != nil {
		return ToolOutcome{Message: err.Error()}
	}
	outcome, err := book(ctx, museumID, attendees)
	if err != nil {
		return ToolOutcome{Message: "Booking failed: " + err.Error()}
	}
	return outcome
}
