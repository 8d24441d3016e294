package oracle

import (
	"fmt"
	"strings"

	"github.com/insuragent/claimcheck/internal/model"
)

// New creates an oracle from configuration. An empty provider yields the
// scripted rule engine so the tool stays usable offline.
func New(config Config) (Oracle, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIOracle(config)

	case "ollama":
		return NewOllamaOracle(config)

	case "scripted", "":
		return NewScriptedOracle(), nil

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, ollama, scripted)", config.Provider)
	}
}

// ConfigFromModel converts model.OracleConfig to oracle.Config
func ConfigFromModel(mc model.OracleConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   int(mc.Timeout.Seconds()),
		MaxTokens: mc.MaxTokens,
	}
}
