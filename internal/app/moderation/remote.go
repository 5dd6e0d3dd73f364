package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// systemPrompt instructs the model to return only a structured verdict.
const systemPrompt = `You are a chat content moderator. Analyze the following message and determine if it contains:
- Profanity, slang, or abusive language
- Hate speech or discrimination
- Threats or harassment
- Sexually explicit content
- Spam or gibberish meant to bypass filters

Respond with ONLY a JSON object in this exact format:
{"isInappropriate": true/false, "reason": "brief reason or null"}

Be strict but fair. Normal conversations, friendly banter, and mild expressions are OK. Only flag genuinely harmful or abusive content.`

// jsonObjectPattern extracts the first JSON object from a model reply that may
// be wrapped in prose or code fences.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// GenAIClassifier submits messages to a Google GenAI model for moderation.
type GenAIClassifier struct {
	client *genai.Client
	model  string
}

// NewGenAIClassifier creates a classifier using the given API key and model.
func NewGenAIClassifier(apiKey, model string) (*GenAIClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClassifier{client: client, model: model}, nil
}

// Classify asks the model for a verdict on text. The boolean result reports
// whether the reply was confidently interpreted; callers fall back to the
// denylist when it is false or an error occurred.
func (c *GenAIClassifier) Classify(ctx context.Context, text string) (Verdict, bool, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents,
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(0.1)),
			MaxOutputTokens:   100,
		},
	)
	if err != nil {
		return Verdict{}, false, fmt.Errorf("GenAI moderation call failed: %w", err)
	}

	return parseReply(result.Text())
}

// parseReply interprets a raw model reply. A well-formed JSON verdict is
// authoritative in either direction. An explicit inappropriate marker in an
// otherwise malformed reply is treated as a flag. Anything else is unclear.
func parseReply(reply string) (Verdict, bool, error) {
	reply = strings.TrimSpace(reply)

	if match := jsonObjectPattern.FindString(reply); match != "" {
		var parsed struct {
			IsInappropriate bool    `json:"isInappropriate"`
			Reason          *string `json:"reason"`
		}
		if err := json.Unmarshal([]byte(match), &parsed); err == nil {
			v := Verdict{Inappropriate: parsed.IsInappropriate}
			if parsed.Reason != nil {
				v.Reason = *parsed.Reason
			}
			return v, true, nil
		}
	}

	lower := strings.ToLower(reply)
	if strings.Contains(lower, `"isinappropriate": true`) ||
		strings.Contains(lower, `"isinappropriate":true`) {
		return Verdict{Inappropriate: true, Reason: "Content flagged by AI moderator"}, true, nil
	}

	return Verdict{}, false, nil
}
