package commands

import (
	"context"
	"strings"

	"FindIt/internal/cli/bootstrap"
	"FindIt/internal/core/thread"
	"FindIt/internal/config"
)

type requestIdentityCmd struct{}

func (requestIdentityCmd) Name() string        { return "request-identity" }
func (requestIdentityCmd) Description() string { return "Запросить подтверждение владения" }
func (requestIdentityCmd) Usage() string {
	return "request-identity [--schema details|questions] <claim-id>"
}
func (requestIdentityCmd) Section() Section { return SectionFinder }

func (requestIdentityCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("request-identity")
	schema := fs.String("schema", string(thread.SchemaDetails), "форма: details или questions")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	s, err := thread.ParseSchema(*schema)
	if err != nil {
		return err
	}
	c, err := bootstrap.APIClient(cfg).RequestIdentity(ctx, fs.Arg(0), s)
	if err != nil {
		return err
	}
	printClaim(c)
	afterAction(ctx, cfg, c.ID)
	return nil
}

type submitIdentityCmd struct{}

func (submitIdentityCmd) Name() string        { return "submit-identity" }
func (submitIdentityCmd) Description() string { return "Ответить на запрос подтверждения" }
func (submitIdentityCmd) Usage() string {
	return "submit-identity <claim-id> (--answers \"a|b|c|d\" | --name N --place P --date YYYY-MM-DD --location L --unlock U)"
}
func (submitIdentityCmd) Section() Section { return SectionClaimant }

func (submitIdentityCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	claimID := args[0]
	fs := newFlags("submit-identity")
	answers := fs.String("answers", "", "ответы на четыре вопроса через |")
	name := fs.String("name", "", "полное имя")
	place := fs.String("place", "", "где вещь была найдена")
	date := fs.String("date", "", "дата потери, YYYY-MM-DD")
	location := fs.String("location", "", "где вещь была потеряна")
	unlock := fs.String("unlock", "", "как разблокировать / отличительные признаки")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	var resp thread.IdentityResponsePayload
	if *answers != "" {
		resp.Schema = thread.SchemaQuestions
		for _, a := range strings.Split(*answers, "|") {
			resp.Answers = append(resp.Answers, strings.TrimSpace(a))
		}
	} else {
		if *name == "" {
			return ErrUsage
		}
		resp.Schema = thread.SchemaDetails
		resp.Details = &thread.IdentityDetails{
			FullName:          *name,
			PlaceFound:        *place,
			DateOfLoss:        *date,
			LocationOfLoss:    *location,
			UnlockDescription: *unlock,
		}
	}

	c, err := bootstrap.APIClient(cfg).SubmitIdentity(ctx, claimID, resp)
	if err != nil {
		return err
	}
	printClaim(c)
	afterAction(ctx, cfg, c.ID)
	return nil
}

func init() {
	RegisterCmd(requestIdentityCmd{})
	RegisterCmd(submitIdentityCmd{})
}
