package commands

import (
	"context"
	"fmt"
	"strings"

	"FindIt/internal/cli/bootstrap"
	"FindIt/internal/cli/model"
	"FindIt/internal/cli/service"
	"FindIt/internal/core/thread"
	"FindIt/internal/config"
)

type threadCmd struct{}

func (threadCmd) Name() string        { return "thread" }
func (threadCmd) Description() string { return "Показать ленту заявки (догружает новые сообщения)" }
func (threadCmd) Usage() string       { return "thread [--offline] <claim-id>" }
func (threadCmd) Section() Section    { return SectionThread }

func (threadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("thread")
	offline := fs.Bool("offline", false, "не обращаться к серверу")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	claimID := fs.Arg(0)
	return withSync(cfg, func(s *service.ThreadSync) error {
		if !*offline {
			n, err := s.Pull(ctx, claimID)
			if err != nil {
				return err
			}
			if n > 0 {
				fmt.Fprintf(Out, "• новых сообщений: %d\n", n)
			}
		}
		lt, err := s.Local(claimID)
		if err != nil {
			return err
		}
		printThread(lt)
		return nil
	})
}

func printThread(lt *service.LocalThread) {
	c := lt.Claim
	fmt.Fprintf(Out, "Claim %s  %s  you are %s  status %s (%s)\n", c.ID, c.ItemTitle, c.Role, paint(c.Status), c.LegacyStatus)
	for _, v := range lt.Views {
		line := describe(&c, v.Entry)
		if v.Stale {
			line += " (read-only)"
		}
		fmt.Fprintf(Out, "[%3d] %s %s\n", v.Seq, shortTime(v.CreatedAt), line)
		if v.Interactive {
			fmt.Fprintf(Out, "      %s %s\n", hintMark, actionHint(c.ID, v.Action))
		}
	}
	if lt.State.CodeOutstanding && lt.State.CodeExpiresAt != nil {
		fmt.Fprintf(Out, "Код передачи действует до %s\n", shortTime(*lt.State.CodeExpiresAt))
	}
}

func sender(c *model.Claim, id int64) string {
	switch id {
	case thread.SystemSenderID:
		return "system"
	case c.FinderID:
		return "finder"
	case c.ClaimantID:
		return "claimant"
	}
	return fmt.Sprintf("user %d", id)
}

func describe(c *model.Claim, e thread.Entry) string {
	who := sender(c, e.SenderID)
	switch p := e.Payload.(type) {
	case thread.TextPayload:
		return fmt.Sprintf("%s: %s", who, p.Text)
	case thread.SystemPayload:
		return "· " + e.Content
	case thread.IdentityFormPayload:
		s := fmt.Sprintf("%s requested identity details (%s)", who, p.Schema)
		for i, q := range p.Prompts {
			s += fmt.Sprintf("\n        %d. %s", i+1, q)
		}
		return s
	case thread.IdentityResponsePayload:
		if p.Details != nil {
			d := p.Details
			return fmt.Sprintf("%s answered: %s, lost %s at %s; found at %s; unlock: %s",
				who, d.FullName, d.DateOfLoss, d.LocationOfLoss, d.PlaceFound, d.UnlockDescription)
		}
		return fmt.Sprintf("%s answered: %s", who, strings.Join(p.Answers, " | "))
	case thread.HandoverInitPayload:
		if p.Stage == thread.StageCodeIssued {
			if p.ExpiresAt != nil {
				return fmt.Sprintf("%s issued a handover code, valid until %s", who, shortTime(*p.ExpiresAt))
			}
			return who + " issued a handover code"
		}
		return who + " started the handover"
	case thread.HandoverConfirmPayload:
		return "item handed over"
	}
	return e.Content
}

func actionHint(claimID string, h thread.Hint) string {
	switch h {
	case thread.HintSubmitIdentity:
		return "ficli submit-identity " + claimID + " ..."
	case thread.HintReviewIdentity:
		return "ficli handover " + claimID + "  или  ficli request-identity " + claimID
	case thread.HintIssueCode:
		return "ficli code " + claimID
	case thread.HintEnterCode:
		return "ficli verify " + claimID + " <code>"
	}
	return string(h)
}

type sendCmd struct{}

func (sendCmd) Name() string        { return "send" }
func (sendCmd) Description() string { return "Написать сообщение в ленту заявки" }
func (sendCmd) Usage() string       { return "send <claim-id> <text...>" }
func (sendCmd) Section() Section    { return SectionThread }

func (sendCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	if err := bootstrap.APIClient(cfg).PostMessage(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s sent\n", okMark)
	afterAction(ctx, cfg, args[0])
	return nil
}

func init() {
	RegisterCmd(threadCmd{})
	RegisterCmd(sendCmd{})
}
