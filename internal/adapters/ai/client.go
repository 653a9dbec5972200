package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"herald/pkg/errors"
	"herald/pkg/logger"
)

const summarySystemPrompt = `You generate short, relevant world-news digests.
- Provide concise, relevant summaries based on user interests.
- Avoid sensationalism. Prioritize signal over noise.
- Keep summaries short and sharp without fluff.
- Provide a 5-bullet digest of what matters IN THE LAST FEW DAYS.`

const challengeSystemPrompt = `You are a technical challenge generator for full-stack engineers.
Generate ONE coding challenge that helps keep programming skills sharp.
Rotate between algorithm problems, data structure implementations, system
design questions, code optimization, real-world scenarios and web fundamentals.

OUTPUT FORMAT (strict):
**Challenge of the Day: [Title]**

[2-3 sentence problem description]

**Difficulty:** [Easy/Medium/Hard]

**Skills:** [2-3 relevant skills]

**Example:**
` + "```" + `
Input: [example input]
Output: [example output]
` + "```" + `

**Bonus:** [Optional 1-sentence extension]

Do not provide solutions. Difficulty should be doable in 15-30 minutes.`

// Client generates digest text via the OpenAI API using the official
// SDK. Both operations are optional pipeline steps; callers treat any
// error as "no contribution this run".
type Client struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
	log     *logger.Logger
}

// NewClient creates an OpenAI-backed text generator.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key is required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   openai.ChatModel(model),
		timeout: timeout,
		log:     logger.Get().With("component", "ai_client", "model", model),
	}, nil
}

// SummarizeWorldNews asks the model for a personalized 5-bullet digest
// based on the user's stated interests.
func (c *Client) SummarizeWorldNews(ctx context.Context, userProfile string) (string, error) {
	prompt := `Use the model's current global knowledge and general world understanding.
Generate a customized, personal digest for a user with these interests:
` + userProfile + `

Output in clean Markdown with bullet points.`

	return c.complete(ctx, summarySystemPrompt, prompt)
}

// DailyChallenge generates one coding challenge for the given date.
// The date keys the challenge so every run on the same day produces a
// comparable prompt.
func (c *Client) DailyChallenge(ctx context.Context, date string) (string, error) {
	prompt := "Generate a unique coding challenge for " + date + `.
Make it interesting, practical, and appropriate for a full-stack engineer looking to stay sharp.`

	return c.complete(ctx, challengeSystemPrompt, prompt)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "openai API call failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(errors.ErrInternal, "no completion choices returned")
	}

	c.log.Debugw("Completion generated",
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}
