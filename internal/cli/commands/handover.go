package commands

import (
	"context"
	"fmt"

	"FindIt/internal/cli/bootstrap"
	"FindIt/internal/config"
)

type handoverCmd struct{}

func (handoverCmd) Name() string        { return "handover" }
func (handoverCmd) Description() string { return "Начать передачу вещи (нашедший)" }
func (handoverCmd) Usage() string       { return "handover <claim-id>" }
func (handoverCmd) Section() Section    { return SectionFinder }

func (handoverCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := bootstrap.APIClient(cfg).InitiateHandover(ctx, args[0])
	if err != nil {
		return err
	}
	printClaim(c)
	afterAction(ctx, cfg, c.ID)
	return nil
}

type codeCmd struct{}

func (codeCmd) Name() string        { return "code" }
func (codeCmd) Description() string { return "Получить код передачи (нашедший)" }
func (codeCmd) Usage() string       { return "code <claim-id>" }
func (codeCmd) Section() Section    { return SectionFinder }

func (codeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	g, err := bootstrap.APIClient(cfg).StartHandoverCode(ctx, args[0])
	if err != nil {
		return err
	}
	note := ""
	if g.Reused {
		note = " (ранее выданный)"
	}
	fmt.Fprintf(Out, "Код передачи: %s%s, действует до %s\n", g.Code, note, shortTime(g.ExpiresAt))
	fmt.Fprintln(Out, "Сообщите код владельцу при встрече.")
	if !g.Reused {
		afterAction(ctx, cfg, args[0])
	}
	return nil
}

type verifyCmd struct{}

func (verifyCmd) Name() string        { return "verify" }
func (verifyCmd) Description() string { return "Ввести код и подтвердить получение (заявитель)" }
func (verifyCmd) Usage() string       { return "verify <claim-id> <code>" }
func (verifyCmd) Section() Section    { return SectionClaimant }

func (verifyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	c, err := bootstrap.APIClient(cfg).VerifyHandoverCode(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	printClaim(c)
	afterAction(ctx, cfg, c.ID)
	return nil
}

func init() {
	RegisterCmd(handoverCmd{})
	RegisterCmd(codeCmd{})
	RegisterCmd(verifyCmd{})
}
