package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"FindIt/internal/cli/bootstrap"
	"FindIt/internal/cli/model"
	"FindIt/internal/cli/service"
	"FindIt/internal/core/claim"
	"FindIt/internal/config"
)

var statusColors = map[claim.Status]*color.Color{
	claim.StatusActive:            color.New(color.FgYellow),
	claim.StatusIdentityRequested: color.New(color.FgYellow),
	claim.StatusIdentitySubmitted: color.New(color.FgYellow),
	claim.StatusHandoverInitiated: color.New(color.FgCyan),
	claim.StatusReturned:          color.New(color.FgGreen, color.Bold),
	claim.StatusRejected:          color.New(color.FgRed),
}

// paint раскрашивает статус заявки (без цвета, если вывод не терминал).
func paint(st claim.Status) string {
	if c, ok := statusColors[st]; ok {
		return c.Sprint(string(st))
	}
	return string(st)
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	hintMark = color.New(color.FgMagenta).Sprint("→")
)

func printClaim(c *model.Claim) {
	fmt.Fprintf(Out, "%s claim %s: %s (%s)\n", okMark, c.ID, paint(c.Status), c.Status.Legacy())
}

// newFlags: FlagSet подкоманды, ошибки разбора превращаются в ErrUsage.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// withSync открывает локальную копию лент текущего пользователя.
func withSync(cfg *config.Config, fn func(s *service.ThreadSync) error) error {
	r, done, err := bootstrap.OpenThreadRepo(cfg)
	if err != nil {
		return err
	}
	defer done()
	return fn(service.NewThreadSync(bootstrap.APIClient(cfg), r))
}

// afterAction подтягивает ленту заявки после действия, чтобы локальная
// копия не отставала. Ошибки только печатаются.
func afterAction(ctx context.Context, cfg *config.Config, claimID string) {
	err := withSync(cfg, func(s *service.ThreadSync) error {
		_, err := s.Pull(ctx, claimID)
		return err
	})
	if err != nil {
		fmt.Fprintf(Out, "• лента не обновлена: %v\n", err)
	}
}

func shortTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}
