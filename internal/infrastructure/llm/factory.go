package llm

import (
	"context"
	"fmt"

	"study-agent/internal/application/port/output"
	"study-agent/internal/infrastructure/env"
	"study-agent/internal/infrastructure/llm/anthropicllm"
	"study-agent/internal/infrastructure/llm/gemini"
	"study-agent/internal/infrastructure/llm/openaicompat"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Role selects which side of the dialogue a model serves. Each role can
// run on its own provider and model.
type Role string

const (
	RolePageOp Role = "PAGEOP"
	RoleSolver Role = "SOLVER"
)

type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Logger   output.LoggerPort
}

// ResolveRoleConfig reads the provider settings for a role from the
// environment. Role-specific variables (PAGEOP_MODEL, SOLVER_PROVIDER, ...)
// win over the DEFAULT_* fallbacks; the API key comes from the provider's
// conventional variable and is required.
func ResolveRoleConfig(envs *env.EnvService, role Role) Config {
	provider := roleValue(envs, role, "PROVIDER")
	if provider == "" {
		provider = ProviderOpenAI
	}

	cfg := Config{
		Provider: provider,
		Model:    roleValue(envs, role, "MODEL"),
	}

	switch provider {
	case ProviderAnthropic:
		cfg.APIKey = envs.MustGet("ANTHROPIC_API_KEY")
	case ProviderGemini:
		cfg.APIKey = envs.MustGet("GEMINI_API_KEY")
	default:
		cfg.APIKey = envs.MustGet("OPENAI_API_KEY")
		cfg.BaseURL = envs.Get("OPENAI_BASE_URL")
	}

	return cfg
}

func roleValue(envs *env.EnvService, role Role, suffix string) string {
	if v := envs.Get(string(role) + "_" + suffix); v != "" {
		return v
	}
	return envs.Get("DEFAULT_" + suffix)
}

// New builds an LLMPort for the given provider config.
func New(ctx context.Context, cfg Config) (output.LLMPort, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model is not set for provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		return anthropicllm.New(anthropicllm.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: cfg.Logger,
		})
	case ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: cfg.Logger,
		})
	case ProviderOpenAI:
		return openaicompat.New(openaicompat.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Logger:  cfg.Logger,
		}), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
