package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"study-agent/internal/di"
	"study-agent/internal/domain/entity"
	"study-agent/internal/infrastructure/env"
	"study-agent/internal/infrastructure/prompts"
)

func main() {
	envService := env.NewEnvService()

	task := readTask()
	if task == "" {
		task = strings.TrimSpace(prompts.DefaultTaskDirective)
	}

	timeout := envService.GetDuration("RUN_TIMEOUT", 30*time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	container, err := di.NewContainer(ctx, di.ConfigFromEnv(envService, task))
	if err != nil {
		log.Fatalf("Ошибка инициализации: %v", err)
	}
	defer container.Close()

	result, err := container.Runner.Run(ctx, task)
	if err != nil {
		container.Logger.Error("Run failed", "error", err)
		fmt.Printf("\nОшибка выполнения: %v\n", err)
		os.Exit(1)
	}

	if result.FinalState != entity.PhaseSubmitted {
		os.Exit(1)
	}
}

// readTask берёт директиву из аргументов командной строки, а если их нет —
// спрашивает в консоли. Пустой ввод означает директиву по умолчанию.
func readTask() string {
	if len(os.Args) > 1 {
		return strings.TrimSpace(strings.Join(os.Args[1:], " "))
	}

	fmt.Println("\nВведите задачу (Enter — пройти тест целиком):")
	reader := bufio.NewReader(os.Stdin)
	task, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(task)
}
