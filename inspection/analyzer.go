package inspection

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
)

// systemPrompt fixes the evaluation criteria and the required output
// shape. Both providers receive it unchanged.
const systemPrompt = `You are the 'Master Inspector' for a Building Management System.
Your job is to evaluate the cleanliness of a facility based on an image.

Evaluate based on these 4 criteria:
1. Spills (Liquids on floor/surfaces)
2. Dust (Accumulation on vents, surfaces)
3. Trash (Debris, paper, cups)
4. Stains (Discoloration on carpets/walls)

You will be provided with:
1. An image (or a grid of images).
2. Context from similar past images (RAG).

Return STRICT JSON matching this schema:
{
    "status": "Clean" or "Dirty",
    "confidence": 0.0 to 1.0,
    "reasoning": "string explanation",
    "issues_detected": ["list", "of", "issues"]
}
`

// FailoverAnalyzer sends the composite image and retrieved context to the
// primary provider and, on any failure, retries the identical payload once
// against the secondary. There is no retry against the same provider: one
// degraded provider must not block the pipeline, and unbounded retries
// would unbound latency.
type FailoverAnalyzer struct {
	primary   model.ToolCallingChatModel
	secondary model.ToolCallingChatModel
	log       *logrus.Entry
}

// NewFailoverAnalyzer builds an analyzer over the two providers.
func NewFailoverAnalyzer(primary, secondary model.ToolCallingChatModel) *FailoverAnalyzer {
	return &FailoverAnalyzer{
		primary:   primary,
		secondary: secondary,
		log:       logrus.WithField("component", "analyzer"),
	}
}

// Analyze produces a validated inspection result for the composite image
// at imagePath. If both providers fail, the secondary's error is the one
// reported: the caller sees a single failure, not a chain.
func (a *FailoverAnalyzer) Analyze(ctx context.Context, imagePath, contextText string) (*Result, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read composite image: %w", err)
	}
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)

	messages := buildMessages(imageURL, contextText)

	result, err := a.tryProvider(ctx, "primary", a.primary, messages)
	if err == nil {
		return result, nil
	}
	a.log.WithError(err).Warn("primary provider failed, switching to secondary")

	result, err = a.tryProvider(ctx, "secondary", a.secondary, messages)
	if err != nil {
		a.log.WithError(err).Error("secondary provider failed")
		return nil, fmt.Errorf("secondary provider failed: %w", err)
	}
	return result, nil
}

// tryProvider makes exactly one attempt against one provider and parses
// its response into a validated Result.
func (a *FailoverAnalyzer) tryProvider(ctx context.Context, name string, m model.ToolCallingChatModel, messages []*schema.Message) (*Result, error) {
	a.log.WithField("provider", name).Info("attempting analysis")

	msg, err := m.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%s provider call failed: %w", name, err)
	}

	result, err := ParseResult(stripFences(msg.Content))
	if err != nil {
		return nil, fmt.Errorf("%s provider returned malformed output: %w", name, err)
	}
	return result, nil
}

// buildMessages assembles the request payload: the fixed system
// instruction plus one user message combining the serialized reference
// context and the encoded image.
func buildMessages(imageURL, contextText string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeText,
					Text: fmt.Sprintf("Context from database:\n%s\n\nAnalyze this image:", contextText),
				},
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL:    imageURL,
						Detail: schema.ImageURLDetailAuto,
					},
				},
			},
		},
	}
}

// stripFences removes a markdown code fence some models wrap around JSON
// even when asked not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
