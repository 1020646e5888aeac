package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/entrhq/omni/pkg/config"
	"github.com/entrhq/omni/pkg/llm"
	"github.com/entrhq/omni/pkg/llm/cliproc"
	"github.com/entrhq/omni/pkg/llm/openai"
)

// runSetup reports which backends are usable on this machine and writes an
// initial config file from the answers.
func runSetup(cfg *Config) error {
	store, err := config.NewStore(cfg.ConfigPath)
	if err != nil {
		return err
	}
	settings := store.Settings()

	fmt.Printf("Omni v%s setup\n\n", version)
	fmt.Println("Detected backends:")
	providers := []llm.Provider{
		cliproc.NewClaude(),
		cliproc.NewCodex(),
		cliproc.NewGemini(),
		openai.New("", openai.WithModel(settings.OpenAIModel)),
	}
	var installed []string
	for _, p := range providers {
		mark := "✗"
		if p.Installed() {
			mark = "✓"
			installed = append(installed, p.Name())
		}
		fmt.Printf("  %s %s\n", mark, p.Name())
	}
	if len(installed) == 0 {
		fmt.Println("\nNo backends found. Install the claude, codex or gemini CLI,")
		fmt.Println("or set OPENAI_API_KEY, then re-run omni -setup.")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	provider := ask(reader, fmt.Sprintf("Default backend [%s]", installed[0]))
	if provider == "" {
		provider = installed[0]
	}
	storage := ask(reader, fmt.Sprintf("Storage directory [%s]", settings.StoragePath))

	err = store.Update(func(s *config.Settings) {
		s.DefaultProvider = provider
		if storage != "" {
			s.StoragePath = storage
		}
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nwrote %s\n", store.Path())
	return nil
}

func ask(reader *bufio.Reader, prompt string) string {
	fmt.Printf("%s: ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
