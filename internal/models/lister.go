package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/transquery/internal/translation"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister using the OpenAI settings of config
func NewLister(config *translation.Config) *Lister {
	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	return &Lister{
		apiKey: config.OpenAIKey,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// ChatModels returns the sorted IDs of all chat capable models
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .transquery.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chatModels []string
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			chatModels = append(chatModels, model.ID)
		}
	}
	sort.Strings(chatModels)

	return chatModels, nil
}

// PrintChatModels writes the chat models to w, marking current
func (l *Lister) PrintChatModels(ctx context.Context, w io.Writer, current string) error {
	chatModels, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Chat models usable with --provider openai:")
	if len(chatModels) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}

	for _, model := range chatModels {
		marker := " "
		if model == current {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, model)
	}

	return nil
}

// Audio, realtime and search variants do not accept plain chat prompts
func isChatModel(id string) bool {
	reasoning := len(id) > 1 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9'
	if !strings.Contains(id, "gpt") && !reasoning {
		return false
	}
	for _, skip := range []string{"tts", "audio", "realtime", "transcribe", "search", "image"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return true
}
