package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/omni/pkg/chat"
	"github.com/entrhq/omni/pkg/config"
	"github.com/entrhq/omni/pkg/hierarchy"
	"github.com/entrhq/omni/pkg/llm"
	"github.com/entrhq/omni/pkg/llm/cliproc"
	"github.com/entrhq/omni/pkg/llm/openai"
	"github.com/entrhq/omni/pkg/logging"
	"github.com/entrhq/omni/pkg/namespace"
	"github.com/entrhq/omni/pkg/organizer"
	"github.com/entrhq/omni/pkg/picker"
	"github.com/entrhq/omni/pkg/project"
	"github.com/entrhq/omni/pkg/summary"
	"github.com/entrhq/omni/pkg/types"
)

// app wires the managers, the backend registry and the REPL together.
type app struct {
	settings   config.Settings
	store      *config.Store
	log        *logging.Logger
	chats      *chat.Manager
	projects   *project.Manager
	namespaces *namespace.Manager
	summaries  *summary.Manager
	organizer  *organizer.Organizer
	backends   *llm.Manager
	renderer   *renderer

	current   *chat.Chat
	lastReply string
}

// run builds the application and enters the REPL.
func run(ctx context.Context, cfg *Config) error {
	store, err := config.NewStore(cfg.ConfigPath)
	if err != nil {
		return err
	}
	settings := store.Settings()
	if cfg.StoragePath != "" {
		settings.StoragePath = cfg.StoragePath
	}
	if cfg.OpenAIModel != "" {
		settings.OpenAIModel = cfg.OpenAIModel
	}

	logger, err := logging.NewLogger("omni")
	if err != nil {
		logger = logging.Discard()
	}
	defer logger.Close()

	chats, err := chat.NewManager(settings.StoragePath,
		chat.WithLogger(logger),
		chat.WithDefaultProvider(settings.DefaultProvider))
	if err != nil {
		return err
	}
	projects, err := project.NewManager(settings.StoragePath, project.WithLogger(logger))
	if err != nil {
		return err
	}
	namespaces, err := namespace.NewManager(settings.StoragePath, namespace.WithLogger(logger))
	if err != nil {
		return err
	}
	summaries, err := summary.NewManager(settings.StoragePath, summary.WithLogger(logger))
	if err != nil {
		return err
	}

	backends, err := llm.NewManager([]llm.Provider{
		cliproc.NewClaude(),
		cliproc.NewCodex(),
		cliproc.NewGemini(),
		openai.New("", openai.WithModel(settings.OpenAIModel)),
	},
		llm.WithLogger(logger),
		llm.WithContextTrimmer(llm.NewContextTrimmer(settings.ContextTokens)))
	if err != nil {
		return err
	}
	if cfg.Provider != "" {
		if err := backends.Switch(cfg.Provider); err != nil {
			return err
		}
	}

	a := &app{
		settings:   settings,
		store:      store,
		log:        logger,
		chats:      chats,
		projects:   projects,
		namespaces: namespaces,
		summaries:  summaries,
		organizer: organizer.New(chats, projects, namespaces, summaries,
			organizer.WithLogger(logger)),
		backends: backends,
		renderer: newRenderer(!cfg.Plain && renderEnabled(settings)),
	}

	fmt.Printf("Omni v%s · backend: %s · storage: %s\n", version, backends.Active(), settings.StoragePath)
	fmt.Println("Type /help for commands.")
	fmt.Println()

	return a.repl(ctx)
}

func renderEnabled(s config.Settings) bool {
	if s.RenderMarkdown == nil {
		return true
	}
	return *s.RenderMarkdown
}

// repl reads lines until EOF or an exit command, dispatching slash commands
// and treating everything else as a chat message.
func (a *app) repl(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(a.prompt())
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := a.dispatch(ctx, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
			}
			if done {
				return nil
			}
			continue
		}

		if err := a.sendMessage(ctx, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func (a *app) prompt() string {
	if a.current != nil {
		return fmt.Sprintf("[%s] > ", a.current.Name)
	}
	return "> "
}

// sendMessage appends the user turn, asks the active backend, and appends
// the response. The first message of a session creates the conversation and
// derives its name.
func (a *app) sendMessage(ctx context.Context, text string) error {
	if a.current == nil {
		c, err := a.chats.Create("", text, "")
		if err != nil {
			return err
		}
		a.current = c
		fmt.Printf("started chat %q (%s)\n", c.Name, c.ID)
	}

	history := a.current.Context()
	if _, err := a.chats.AppendMessage(a.current, types.RoleUser, text, ""); err != nil {
		return err
	}

	reply, err := a.backends.Send(ctx, text, history)
	if err != nil {
		return err
	}
	if _, err := a.chats.AppendMessage(a.current, types.RoleAssistant, reply, a.backends.Active()); err != nil {
		return err
	}
	a.lastReply = reply

	fmt.Println(a.renderer.render(reply))
	return nil
}

// browse runs the interactive picker over the composed hierarchy and
// executes the emitted results until a terminal one. Non-terminal results
// re-enter the picker against refreshed state.
func (a *app) browse(ctx context.Context) error {
	return a.browseFiltered(ctx, "")
}

// browseFiltered narrows the conversation listing by keyword before
// composing the hierarchy; an empty keyword browses everything.
func (a *app) browseFiltered(ctx context.Context, keyword string) error {
	for {
		chats := a.chats.List()
		if keyword != "" {
			chats = chat.FilterRecords(chats, keyword)
		}
		nodes := hierarchy.ComposeRecords(a.namespaces.List(), a.projects.List(), chats, a.summaries.List(""))
		model := picker.New(nodes, picker.WithSummaryLoader(func(id string) (string, error) {
			return a.summaries.LoadBody(id)
		}))

		prog := tea.NewProgram(model, tea.WithContext(ctx))
		final, err := prog.Run()
		if err != nil {
			return err
		}
		m, ok := final.(picker.Model)
		if !ok {
			return nil
		}
		result, emitted := m.Result()
		if !emitted || result.Kind == picker.ResultCancel {
			return nil
		}

		switch result.Kind {
		case picker.ResultResume:
			c, err := a.chats.Load(result.Node.ID)
			if err != nil {
				return err
			}
			a.current = c
			fmt.Printf("resumed chat %q (%d messages)\n", c.Name, c.MessageCount)
			return nil
		case picker.ResultView:
			body, err := a.summaries.LoadBody(result.Node.ID)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(a.renderer.render(body))
		case picker.ResultDelete:
			if err := a.deleteNode(result.Node); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		case picker.ResultRename:
			if err := a.renameNode(result.Node, result.NewName); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		}
	}
}

// deleteNode requires the typed entity name as confirmation before any
// destructive action, then routes the deletion by node kind.
func (a *app) deleteNode(n hierarchy.Node) error {
	fmt.Printf("Type the %s name (%q) to confirm deletion: ", n.Kind, n.Name)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) != n.Name {
		fmt.Println("aborted")
		return nil
	}

	switch n.Kind {
	case hierarchy.KindNamespace:
		_, err = a.organizer.DeleteNamespace(n.ID)
	case hierarchy.KindProject:
		_, err = a.organizer.DeleteProject(n.ID)
	case hierarchy.KindConversation:
		if a.current != nil && a.current.ID == n.ID {
			a.current = nil
		}
		_, err = a.chats.Delete(n.ID)
	case hierarchy.KindSummary:
		_, err = a.summaries.Delete(n.ID)
	}
	if err == nil {
		fmt.Printf("deleted %s %q\n", n.Kind, n.Name)
	}
	return err
}

func (a *app) renameNode(n hierarchy.Node, newName string) error {
	var err error
	switch n.Kind {
	case hierarchy.KindNamespace:
		_, err = a.namespaces.Rename(n.ID, newName)
	case hierarchy.KindProject:
		_, err = a.projects.Rename(n.ID, newName)
	case hierarchy.KindConversation:
		_, err = a.chats.Rename(n.ID, newName)
		if err == nil && a.current != nil && a.current.ID == n.ID {
			a.current.Name = newName
		}
	default:
		return fmt.Errorf("summaries cannot be renamed")
	}
	if err == nil {
		fmt.Printf("renamed %s to %q\n", n.Kind, newName)
	}
	return err
}
