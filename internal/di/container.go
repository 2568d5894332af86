package di

import (
	"context"
	"fmt"

	"study-agent/internal/adapter/tool"
	"study-agent/internal/application/port/input"
	"study-agent/internal/application/port/output"
	"study-agent/internal/application/service"
	"study-agent/internal/infrastructure/browser/rod"
	"study-agent/internal/infrastructure/console"
	"study-agent/internal/infrastructure/env"
	"study-agent/internal/infrastructure/llm"
	"study-agent/internal/infrastructure/logger"
	"study-agent/internal/usecase/agents/pageop"
	"study-agent/internal/usecase/judge"
	"study-agent/internal/usecase/orchestrator"
	"study-agent/internal/usecase/session"
	"study-agent/internal/usecase/solver"
)

type Container struct {
	Browser  output.BrowserPort
	PageLLM  output.LLMPort
	SolveLLM output.LLMPort
	Logger   output.LoggerPort
	Tools    output.ToolRegistry
	Runner   input.Runner
}

type Config struct {
	Task          string
	MaxIterations int
	UseJudge      bool
	Browser       rod.BrowserConfig
	PageOpLLM     llm.Config
	SolverLLM     llm.Config
	SolverConfig  solver.Config
}

// ConfigFromEnv собирает конфигурацию прогона из окружения.
func ConfigFromEnv(envs *env.EnvService, task string) Config {
	browserCfg := rod.DefaultConfig()
	browserCfg.ControlURL = envs.Get("CDP_URL")
	browserCfg.Headless = envs.GetBool("BROWSER_HEADLESS", false)
	browserCfg.SlowMotion = envs.GetDuration("BROWSER_SLOW_MOTION", browserCfg.SlowMotion)

	solverCfg := solver.DefaultConfig()
	solverCfg.MaxTransportRetries = envs.GetInt("SOLVER_MAX_RETRIES", solverCfg.MaxTransportRetries)

	return Config{
		Task:          task,
		MaxIterations: envs.GetInt("MAX_ITERATIONS", 60),
		UseJudge:      envs.GetBool("USE_JUDGE", false),
		Browser:       browserCfg,
		PageOpLLM:     llm.ResolveRoleConfig(envs, llm.RolePageOp),
		SolverLLM:     llm.ResolveRoleConfig(envs, llm.RoleSolver),
		SolverConfig:  solverCfg,
	}
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewZapAdapter(cfg.Task)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browser, err := rod.NewBrowserAdapter(ctx, cfg.Browser)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	pageLLMCfg := cfg.PageOpLLM
	pageLLMCfg.Logger = log.WithField("role", "pageop")
	pageLLM, err := llm.New(ctx, pageLLMCfg)
	if err != nil {
		browser.Close()
		log.Close()
		return nil, fmt.Errorf("failed to create page-op llm: %w", err)
	}

	solveLLMCfg := cfg.SolverLLM
	solveLLMCfg.Logger = log.WithField("role", "solver")
	solveLLM, err := llm.New(ctx, solveLLMCfg)
	if err != nil {
		closeLLM(pageLLM)
		browser.Close()
		log.Close()
		return nil, fmt.Errorf("failed to create solver llm: %w", err)
	}

	tools := service.NewToolRegistry()
	registerBrowserTools(tools, browser, log)
	for _, t := range tools.All() {
		log.Debug("Tool registered", "name", t.Name())
	}

	solveUC := solver.New(solveLLM, log.WithField("component", "solver"), cfg.SolverConfig)
	pageAgent := pageop.New(pageLLM, tools, solveUC, log.WithField("component", "pageop"), cfg.Task)

	var judgePort output.JudgePort
	if cfg.UseJudge {
		judgePort = judge.New(solveLLM, log.WithField("component", "judge"))
	}

	machine := session.NewMachine(cfg.MaxIterations)
	runner := orchestrator.New(
		pageAgent,
		machine,
		log.WithField("component", "orchestrator"),
		console.NewProgressReporter(),
		judgePort,
	)

	return &Container{
		Browser:  browser,
		PageLLM:  pageLLM,
		SolveLLM: solveLLM,
		Logger:   log,
		Tools:    tools,
		Runner:   runner,
	}, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	closeLLM(c.PageLLM)
	closeLLM(c.SolveLLM)
	if c.Logger != nil {
		c.Logger.Close()
	}
}

// closeLLM освобождает провайдеры, которые держат собственное соединение
// (например, genai-клиент).
func closeLLM(port output.LLMPort) {
	if closer, ok := port.(interface{ Close() error }); ok {
		closer.Close()
	}
}

func registerBrowserTools(registry *service.ToolRegistryImpl, browser output.BrowserPort, log output.LoggerPort) {
	registry.Register(tool.NewObserveTool(browser, log))
	registry.Register(tool.NewUISummaryTool(browser, log))
	registry.Register(tool.NewClickTool(browser, log))
	registry.Register(tool.NewFillTool(browser, log))
	registry.Register(tool.NewPressEnterTool(browser, log))
	registry.Register(tool.NewScrollTool(browser, log))
	registry.Register(tool.NewScreenshotTool(browser, log))
}
