package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"GoForgeAI/app/clients"
	"GoForgeAI/app/configs"
	"GoForgeAI/app/loop"
	"GoForgeAI/app/models"
	"GoForgeAI/app/storage"
	"GoForgeAI/app/toolchain"
	"GoForgeAI/app/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configs file")
	flag.Parse()

	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	apiKey, err := cfg.APIKey()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	promptBytes, err := os.ReadFile(cfg.PromptFile)
	if err != nil {
		log.Fatalf("❌ Error reading prompt file %s: %v", cfg.PromptFile, err)
	}

	language := strings.TrimPrefix(filepath.Ext(cfg.SourceFile), ".")
	prompt := loop.PromptSuffix(string(promptBytes), language)
	fmt.Println("prompt:\n" + prompt)
	fmt.Println("model: " + cfg.Model)

	runDir := filepath.Join(cfg.Workspace, time.Now().Format("20060102_150405"))
	tc, err := toolchain.New(cfg.Compiler, cfg.CompilerOptions, runDir, cfg.SourceFile)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	db := storage.NewSQLiteStorage()
	defer db.Close()

	registry := clients.NewRegistry()
	defer registry.CloseAll()
	for _, clientCfg := range cfg.Clients {
		if !clientCfg.Enabled {
			continue
		}
		client, err := clients.CreateClient(clientCfg)
		if err != nil {
			log.Fatalf("❌ Failed to create %s client: %v", clientCfg.Type, err)
		}
		registry.Register(client)
		log.Printf("🔌 %s client initialized", clientCfg.Type)
	}

	model := models.NewLLMClient(cfg.BaseURL, apiKey, cfg.Model)
	l, err := loop.New(model, tc, db, cfg.MaxAttempts, cfg.MaxTime(), cfg.PrintDiagnostic)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()
	task := loop.NewTask(prompt, cfg.PromptFile, cfg.Model, language)
	result, err := l.Run(ctx, task)
	if err != nil {
		var backendErr *models.BackendError
		if errors.As(err, &backendErr) {
			log.Fatalf("🚨 Backend failure, aborting run: %v", err)
		}
		log.Fatalf("❌ %v", err)
	}

	registry.NotifyAll(result)

	if cfg.PrintCode {
		if result.State == loop.StateSuccess {
			fmt.Println("Final version:\n\n" + result.LastSource)
		} else {
			fmt.Println("Last code:\n\n" + result.LastSource)
		}
	}

	if result.State == loop.StateExhausted {
		if cfg.PrintDiagnostic && result.LastDiagnostic != "" {
			fmt.Println("Last error:\n" + result.LastDiagnostic)
		}
		printSummary(result, runDir)
		os.Exit(1)
	}

	if cfg.RunExecutable {
		runBinary(ctx, tc, cfg.ExecutableInput)
	} else {
		fmt.Println("Skipping execution as per config (run_executable: false)")
	}

	printSummary(result, runDir)
}

func runBinary(ctx context.Context, tc *toolchain.Toolchain, input string) {
	fmt.Printf("Running executable: %s\n", tc.BinaryPath())
	out, err := tc.RunBinary(ctx, input)
	if err != nil {
		var execErr *toolchain.ExecError
		if errors.As(err, &execErr) {
			log.Printf("❌ Execution failed with exit code %d: %s", execErr.ExitCode, execErr.Output)
			return
		}
		log.Printf("❌ Execution failed: %v", err)
		return
	}
	fmt.Println("\nOutput:\n" + out)
}

func printSummary(result *loop.Result, runDir string) {
	fmt.Printf("\nTotal generation time: %.3f seconds across %d %s\n",
		result.GenerateTime.Seconds(), result.Attempts, pluralAttempts(result.Attempts))
	fmt.Printf("Total compile time: %.3f seconds\n", result.CompileTime.Seconds())
	fmt.Println("Compilation command: " + result.Command)

	tree, err := utils.BuildTree(runDir, nil, nil)
	if err != nil {
		log.Printf("⚠️ Error rendering workspace tree: %v", err)
		return
	}
	fmt.Println("Workspace:\n" + tree)
}

func pluralAttempts(n int) string {
	if n == 1 {
		return "attempt"
	}
	return "attempts"
}
