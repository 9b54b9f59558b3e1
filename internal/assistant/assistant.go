// Package assistant talks to the Gemini booking assistant. It only turns
// model output into replies; acting on booking intents is the caller's job.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const systemInstruction = `You are the Digital Chief of Staff and Booking Agent for DJ Black Beauty.
Your primary goal is to assist the manager in organizing tours, handling logistics, and managing bookings.
Default to Sri Lankan Rupee (LKR) for local bookings unless specified otherwise.
You have the authority to create new bookings. If a user provides venue, city, date, fee, and timing information, use the 'create_booking' tool.
Always ask for clarification if critical details like fee or date are missing.
Be professional, efficient, and deeply knowledgeable about the global and Sri Lankan electronic music scene.`

type Config struct {
	APIKey string
	Model  string
}

type Client struct {
	models *genai.Models
	model  string
	tools  []*genai.Tool
}

// New returns ErrNotConfigured when no API key is set.
func New(ctx context.Context, cfg Config) (*Client, error) {
	const op = "assistant.New"

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrNotConfigured)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Client{
		models: gc.Models,
		model:  model,
		tools:  []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{createBookingDeclaration()}}},
	}, nil
}

func createBookingDeclaration() *genai.FunctionDeclaration {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}

	return &genai.FunctionDeclaration{
		Name:        createBookingFn,
		Description: "Set up a new performance booking for DJ Black Beauty.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"venue":     str("The name of the venue or festival."),
				"city":      str("The city where the event is located."),
				"date":      str("The date of the event in YYYY-MM-DD format."),
				"startTime": str("Start time of the set (e.g., 22:00)."),
				"endTime":   str("End time of the set (e.g., 00:00)."),
				"fee":       {Type: genai.TypeNumber, Description: "The performance fee amount."},
				"currency":  str("The currency code (e.g., LKR, USD, EUR, GBP)."),
				"notes":     str("Any special requirements, technical notes, or rider details."),
			},
			Required: []string{"venue", "city", "date", "fee", "currency"},
		},
	}
}

// Send forwards one user message and returns the model's replies in order.
// A failed model call is ErrAssistant; an unreadable booking call comes back
// as a reply with Err set.
func (c *Client) Send(ctx context.Context, message string) ([]Reply, error) {
	const op = "assistant.Client.Send"

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Tools:             c.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w: %w", op, ErrAssistant, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return []Reply{{Kind: KindText, Content: "No response generated."}}, nil
	}

	replies := repliesFromParts(resp.Candidates[0].Content.Parts)

	if len(replies) == 0 {
		replies = append(replies, Reply{Kind: KindText, Content: "No response generated."})
	}

	return replies, nil
}

// Bio drafts a press bio from free-form details.
func (c *Client) Bio(ctx context.Context, details string) (string, error) {
	const op = "assistant.Client.Bio"

	prompt := "Generate a professional, high-energy electronic music DJ bio for DJ Black Beauty based on these details: " +
		details + ". Style: Sophisticated yet edgy."

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%s:%w: %w", op, ErrAssistant, err)
	}

	return resp.Text(), nil
}
