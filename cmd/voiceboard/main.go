// voiceboard runs spoken-instruction mutations against a whiteboard
// scene: it sends one instruction through the configured LLM provider,
// validates the structured response, and prints the merged scene.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voiceboard/internal/config"
	"voiceboard/internal/llm"
	"voiceboard/internal/logging"
	"voiceboard/internal/notify"
	"voiceboard/internal/prompt"
	"voiceboard/internal/scene"
	"voiceboard/internal/session"
)

var (
	configPath  string
	scenePath   string
	instruction string
	savePath    string
)

func main() {
	root := &cobra.Command{
		Use:          "voiceboard",
		Short:        "Speech-to-whiteboard mutation pipeline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&scenePath, "scene", "", "path to a JSON file holding the current scene (defaults to an empty board)")
	root.PersistentFlags().StringVarP(&instruction, "instruction", "i", "", "spoken instruction text")

	apply := &cobra.Command{
		Use:   "apply",
		Short: "Run one instruction through the full pipeline and print the merged scene",
		RunE:  runApply,
	}
	apply.Flags().StringVar(&savePath, "save", "", "also write the merged scene JSON to this file")

	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the exact prompt that would be sent to the model",
		RunE:  runPrompt,
	}

	root.AddCommand(apply, promptCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	if instruction == "" {
		return fmt.Errorf("--instruction is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	current, err := loadScene(scenePath)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("configure provider: %w", err)
	}
	dispatcher := llm.NewDispatcher(provider,
		llm.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		llm.WithQueueSize(cfg.LLM.QueueSize),
		llm.WithLogger(logger))
	defer dispatcher.Close() //nolint:errcheck

	pipe := session.NewPipeline(dispatcher, nil, logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
	defer cancel()

	merged, action, err := pipe.Instruct(ctx, current, instruction)
	if err != nil {
		return fmt.Errorf("could not apply the requested change: %w", err)
	}
	if action != nil && action.Type == scene.ActionError {
		return fmt.Errorf("model rejected the instruction: %s", action.Message)
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if savePath != "" {
		notifier := notify.NewNotifier(notify.SinkFunc(func(elements scene.Scene, appState map[string]any) {
			data, err := json.MarshalIndent(elements, "", "  ")
			if err != nil {
				logger.Error("encode scene", zap.Error(err))
				return
			}
			if err := os.WriteFile(savePath, data, 0o644); err != nil {
				logger.Error("write scene", zap.Error(err))
			}
		}), time.Duration(cfg.Notify.DebounceMs)*time.Millisecond)
		notifier.Notify(merged, nil)
		// One-shot run: the session ends here, so deliver immediately.
		notifier.Flush()
	}
	return nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	if instruction == "" {
		return fmt.Errorf("--instruction is required")
	}

	current, err := loadScene(scenePath)
	if err != nil {
		return err
	}
	boardState, err := current.JSON()
	if err != nil {
		return err
	}

	fmt.Println("=== SYSTEM ===")
	fmt.Println(prompt.SystemPrompt)
	fmt.Println("=== USER ===")
	fmt.Println(prompt.Build(instruction, boardState))
	return nil
}

func loadScene(path string) (scene.Scene, error) {
	if path == "" {
		return scene.Scene{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	var s scene.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return s, nil
}
