package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/entrhq/omni/pkg/chat"
	"github.com/entrhq/omni/pkg/hierarchy"
	"github.com/entrhq/omni/pkg/summary"
	"github.com/entrhq/omni/pkg/types"
)

// dispatch executes one slash command. It returns true when the REPL
// should exit.
func (a *app) dispatch(ctx context.Context, line string) (bool, error) {
	cmd, rest := splitCommand(line)

	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help":
		a.printHelp()
	case "new":
		return false, a.cmdNew(rest)
	case "list":
		a.cmdList(rest)
	case "resume":
		return false, a.cmdResume(ctx, rest)
	case "browse":
		return false, a.browse(ctx)
	case "delete":
		return false, a.cmdDelete(rest)
	case "find", "search":
		return false, a.cmdFind(rest)
	case "summary":
		return false, a.cmdSummary(ctx, rest)
	case "summaries":
		a.cmdSummaries(rest)
	case "project":
		return false, a.cmdProject(rest)
	case "namespace":
		return false, a.cmdNamespace(rest)
	case "provider", "providers", "use":
		return false, a.cmdProvider(rest)
	case "consult":
		return false, a.cmdConsult(ctx, rest)
	case "copy":
		return false, a.cmdCopy()
	default:
		return false, fmt.Errorf("unknown command /%s (try /help)", cmd)
	}
	return false, nil
}

func splitCommand(line string) (string, string) {
	line = strings.TrimPrefix(line, "/")
	cmd, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func (a *app) printHelp() {
	fmt.Print(`Commands:
  /new [name]                 start a new chat
  /list [keyword]             list chats, optionally filtered (globs ok)
  /resume [keyword]           resume a chat by keyword, or browse when omitted
  /browse                     interactive browser over namespaces/projects/chats
  /delete [chat]              delete a chat (name typed back to confirm)
  /find <term>                full-text search across transcripts (alias: /search)
  /summary [short|long]       archive the current chat as a summary
  /summaries [project]        list summaries
  /project <subcommand>       create|list|add|remove|assign|rename|delete
  /namespace <subcommand>     create|list|rename|delete
  /provider [name]            show or switch the backend (alias: /use)
  /consult <backend> <text>   ask a second backend and merge the answers
  /copy                       copy the last response to the clipboard
  /exit                       quit
`)
}

func (a *app) cmdNew(name string) error {
	c, err := a.chats.Create(name, "", "")
	if err != nil {
		return err
	}
	a.current = c
	fmt.Printf("started chat %q (%s)\n", c.Name, c.ID)
	return nil
}

func (a *app) cmdList(keyword string) {
	records := a.chats.List()
	if keyword != "" {
		records = chat.FilterRecords(records, keyword)
	}
	if len(records) == 0 {
		fmt.Println("no chats")
		return
	}
	for _, rec := range records {
		project := ""
		if rec.Project != "" {
			project = " · " + rec.Project
		}
		fmt.Printf("  %s  %-30s %3d msgs · %s%s\n",
			rec.ChatID, rec.Name, rec.MessageCount, rec.Provider, project)
	}
}

// cmdResume resolves by keyword when given, otherwise opens the browser. A
// keyword matching exactly one chat resumes it directly.
func (a *app) cmdResume(ctx context.Context, keyword string) error {
	if keyword == "" {
		return a.browse(ctx)
	}
	if c, err := a.chats.Load(keyword); err == nil {
		a.current = c
		fmt.Printf("resumed chat %q (%d messages)\n", c.Name, c.MessageCount)
		return nil
	}
	matches := chat.FilterRecords(a.chats.List(), keyword)
	switch len(matches) {
	case 0:
		return fmt.Errorf("no chat matches %q", keyword)
	case 1:
		c, err := a.chats.Load(matches[0].ChatID)
		if err != nil {
			return err
		}
		a.current = c
		fmt.Printf("resumed chat %q (%d messages)\n", c.Name, c.MessageCount)
		return nil
	default:
		fmt.Printf("%d chats match %q\n", len(matches), keyword)
		return a.browseFiltered(ctx, keyword)
	}
}

// cmdDelete removes a chat by id or name, defaulting to the active one.
// The name must be typed back before anything is removed.
func (a *app) cmdDelete(ref string) error {
	if ref == "" {
		if a.current == nil {
			return fmt.Errorf("usage: /delete <chat>")
		}
		ref = a.current.ID
	}
	c, err := a.chats.Load(ref)
	if err != nil {
		return err
	}
	return a.deleteNode(hierarchy.Node{
		Kind: hierarchy.KindConversation,
		ID:   c.ID,
		Name: c.Name,
	})
}

func (a *app) cmdFind(term string) error {
	if term == "" {
		return fmt.Errorf("usage: /find <term>")
	}
	results := a.chats.Find(term)
	if len(results) == 0 {
		fmt.Printf("no transcripts mention %q\n", term)
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s  %s\n", r.Record.ChatID, r.Record.Name)
		for _, line := range r.Matches {
			fmt.Printf("    %s\n", line)
		}
	}
	return nil
}

// cmdSummary archives the current conversation: the active backend writes
// the summary text, then the organizer replaces the chat with the summary.
func (a *app) cmdSummary(ctx context.Context, kindArg string) error {
	if a.current == nil {
		return fmt.Errorf("no active chat to summarize")
	}
	kind := a.settings.DefaultSummaryKind
	if kind != summary.KindShort && kind != summary.KindLong {
		kind = summary.KindShort
	}
	if kindArg != "" {
		switch kindArg {
		case summary.KindShort, summary.KindLong:
			kind = kindArg
		default:
			return fmt.Errorf("summary kind must be %q or %q", summary.KindShort, summary.KindLong)
		}
	}

	c, err := a.chats.Load(a.current.ID)
	if err != nil {
		return err
	}
	if len(c.Messages) == 0 {
		return fmt.Errorf("chat %q has no messages to summarize", c.Name)
	}

	fmt.Printf("summarizing %q with %s...\n", c.Name, a.backends.Active())
	content, err := a.backends.Send(ctx, summaryPrompt(kind, conversationText(c)), nil)
	if err != nil {
		return err
	}

	rec, err := a.organizer.Archive(c.ID, content, kind)
	if err != nil {
		return err
	}
	a.current = nil
	fmt.Printf("archived chat %q as %s summary %s (%d words)\n", c.Name, rec.Kind, rec.SummaryID, rec.WordCount)
	fmt.Println(a.renderer.render(content))
	return nil
}

func (a *app) cmdSummaries(project string) {
	records := a.summaries.List(project)
	if len(records) == 0 {
		fmt.Println("no summaries")
		return
	}
	for _, rec := range records {
		fmt.Printf("  %s  %-30s %s · %d words\n", rec.SummaryID, rec.Name, rec.Kind, rec.WordCount)
	}
}

func (a *app) cmdProject(rest string) error {
	sub, args := splitCommand("/" + rest)
	switch sub {
	case "create":
		name, desc, _ := strings.Cut(args, " -- ")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("usage: /project create <name> [-- description]")
		}
		rec, err := a.projects.Create(strings.TrimSpace(name), strings.TrimSpace(desc), "")
		if err != nil {
			return err
		}
		fmt.Printf("created project %q (%s)\n", rec.Name, rec.ID)
		return nil
	case "list", "":
		for _, rec := range a.projects.List() {
			ns := ""
			if rec.Namespace != "" {
				ns = " · ns:" + rec.Namespace
			}
			fmt.Printf("  %s  %-30s %d chats%s\n", rec.ID, rec.Name, rec.ChatCount(), ns)
		}
		return nil
	case "add":
		chatRef, projectRef, ok := strings.Cut(args, " ")
		if !ok {
			return fmt.Errorf("usage: /project add <chat> <project>")
		}
		return a.organizer.AssignChat(strings.TrimSpace(chatRef), strings.TrimSpace(projectRef))
	case "remove":
		if args == "" {
			return fmt.Errorf("usage: /project remove <chat>")
		}
		return a.organizer.UnassignChat(args)
	case "assign":
		projectRef, nsRef, ok := strings.Cut(args, " ")
		if !ok {
			return fmt.Errorf("usage: /project assign <project> <namespace>")
		}
		return a.organizer.AssignProject(strings.TrimSpace(projectRef), strings.TrimSpace(nsRef))
	case "rename":
		oldName, newName, ok := strings.Cut(args, " ")
		if !ok {
			return fmt.Errorf("usage: /project rename <project> <new name>")
		}
		found, err := a.projects.Rename(strings.TrimSpace(oldName), strings.TrimSpace(newName))
		if err == nil && !found {
			return fmt.Errorf("no project matches %q", oldName)
		}
		return err
	case "delete":
		if args == "" {
			return fmt.Errorf("usage: /project delete <project>")
		}
		found, err := a.organizer.DeleteProject(args)
		if err == nil && !found {
			return fmt.Errorf("no project matches %q", args)
		}
		return err
	default:
		return fmt.Errorf("unknown subcommand /project %s", sub)
	}
}

func (a *app) cmdNamespace(rest string) error {
	sub, args := splitCommand("/" + rest)
	switch sub {
	case "create":
		name, desc, _ := strings.Cut(args, " -- ")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("usage: /namespace create <name> [-- description]")
		}
		rec, err := a.namespaces.Create(strings.TrimSpace(name), strings.TrimSpace(desc))
		if err != nil {
			return err
		}
		fmt.Printf("created namespace %q (%s)\n", rec.Name, rec.ID)
		return nil
	case "list", "":
		for _, rec := range a.namespaces.List() {
			fmt.Printf("  %s  %-30s %d projects\n", rec.ID, rec.Name, rec.ProjectCount())
		}
		return nil
	case "rename":
		oldName, newName, ok := strings.Cut(args, " ")
		if !ok {
			return fmt.Errorf("usage: /namespace rename <namespace> <new name>")
		}
		found, err := a.namespaces.Rename(strings.TrimSpace(oldName), strings.TrimSpace(newName))
		if err == nil && !found {
			return fmt.Errorf("no namespace matches %q", oldName)
		}
		return err
	case "delete":
		if args == "" {
			return fmt.Errorf("usage: /namespace delete <namespace>")
		}
		found, err := a.organizer.DeleteNamespace(args)
		if err == nil && !found {
			return fmt.Errorf("no namespace matches %q", args)
		}
		return err
	default:
		return fmt.Errorf("unknown subcommand /namespace %s", sub)
	}
}

func (a *app) cmdProvider(name string) error {
	if name == "" {
		fmt.Printf("active: %s\n", a.backends.Active())
		fmt.Printf("available: %s\n", strings.Join(a.backends.Available(), ", "))
		return nil
	}
	if err := a.backends.Switch(name); err != nil {
		return err
	}
	fmt.Printf("switched to %s\n", name)
	return nil
}

// cmdConsult asks the active backend and a second one, shows both answers
// and the merged result, and records the merged text in the chat.
func (a *app) cmdConsult(ctx context.Context, rest string) error {
	other, question, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(question) == "" {
		return fmt.Errorf("usage: /consult <backend> <question>")
	}
	question = strings.TrimSpace(question)

	result, err := a.backends.Consult(ctx, question, other, a.currentHistory())
	if err != nil {
		return err
	}

	fmt.Printf("\n── %s ──\n%s\n", a.backends.Active(), a.renderer.render(result.Primary))
	fmt.Printf("\n── %s ──\n%s\n", other, a.renderer.render(result.Secondary))
	fmt.Printf("\n── merged ──\n%s\n", a.renderer.render(result.Merged))
	a.lastReply = result.Merged

	if a.current != nil {
		if _, err := a.chats.AppendMessage(a.current, types.RoleUser, question, ""); err != nil {
			return err
		}
		if _, err := a.chats.AppendMessage(a.current, types.RoleAssistant, result.Merged, a.backends.Active()); err != nil {
			return err
		}
	}
	return nil
}

// currentHistory returns the active chat's messages, or nil when no chat
// is open.
func (a *app) currentHistory() []types.Message {
	if a.current == nil {
		return nil
	}
	return a.current.Context()
}

func (a *app) cmdCopy() error {
	if a.lastReply == "" {
		return fmt.Errorf("nothing to copy yet")
	}
	if err := clipboard.WriteAll(a.lastReply); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	fmt.Println("copied last response to clipboard")
	return nil
}
