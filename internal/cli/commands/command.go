package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"FindIt/internal/config"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command is a ficli subcommand.
type Command interface {
	// Name is what the user types, e.g. "verify".
	Name() string
	Description() string
	// Usage is the exact usage line, e.g. "verify <claim-id> <code>".
	Usage() string
	// Run gets args without the command name.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Section группирует команды в справке по участнику протокола.
type Section int

const (
	SectionAccount Section = iota
	SectionFinder
	SectionClaimant
	SectionThread
	SectionOther
)

var sectionTitles = map[Section]string{
	SectionAccount:  "Аккаунт",
	SectionFinder:   "Нашедший",
	SectionClaimant: "Заявитель",
	SectionThread:   "Переписка по заявке",
	SectionOther:    "Прочее",
}

// sectioned реализуют команды, у которых есть место в справке.
// Остальные попадают в «Прочее».
type sectioned interface {
	Section() Section
}

func sectionOf(c Command) Section {
	if s, ok := c.(sectioned); ok {
		return s.Section()
	}
	return SectionOther
}

var registry = map[string]Command{}

// Out: общий writer для вывода CLI, в тестах переназначается.
var Out io.Writer = os.Stdout

// RegisterCmd вызывается из init() файла команды.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns registered commands ordered by section, then by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		si, sj := sectionOf(list[i]), sectionOf(list[j])
		if si != sj {
			return si < sj
		}
		return list[i].Name() < list[j].Name()
	})
	return list
}

// FormatGlobalUsage builds the help text, one block per section.
func FormatGlobalUsage() string {
	lines := []string{
		"FindIt CLI: заявки на найденные вещи и их передача владельцу",
		"",
		"Usage:",
		"  ficli [--base-url <host:port>] <command> [args]",
	}
	current := Section(-1)
	for _, c := range List() {
		if s := sectionOf(c); s != current {
			current = s
			lines = append(lines, "", sectionTitles[s]+":")
		}
		lines = append(lines, fmt.Sprintf("  %-44s %s", c.Usage(), c.Description()))
	}
	return strings.Join(lines, "\n") + "\n"
}
