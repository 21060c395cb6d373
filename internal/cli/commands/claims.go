package commands

import (
	"context"
	"fmt"
	"strings"

	"FindIt/internal/cli/bootstrap"
	"FindIt/internal/cli/service"
	"FindIt/internal/config"
)

type reportCmd struct{}

func (reportCmd) Name() string        { return "report" }
func (reportCmd) Description() string { return "Опубликовать найденную вещь" }
func (reportCmd) Usage() string {
	return "report [--location <where>] [--description <text>] <title>"
}

func (reportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("report")
	location := fs.String("location", "", "где найдена")
	description := fs.String("description", "", "описание")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return ErrUsage
	}
	it, err := bootstrap.APIClient(cfg).ReportItem(ctx, strings.Join(fs.Args(), " "), *description, *location)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s Item %s reported: %s\n", okMark, it.ID, it.Title)
	return nil
}

type claimCmd struct{}

func (claimCmd) Name() string        { return "claim" }
func (claimCmd) Description() string { return "Подать заявку на вещь" }
func (claimCmd) Usage() string       { return "claim <item-id> [proof...]" }
func (claimCmd) Section() Section    { return SectionClaimant }

func (claimCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	c, err := bootstrap.APIClient(cfg).CreateClaim(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	printClaim(c)
	afterAction(ctx, cfg, c.ID)
	return nil
}

type claimsCmd struct{}

func (claimsCmd) Name() string        { return "claims" }
func (claimsCmd) Description() string { return "Список заявок (как нашедший и как заявитель)" }
func (claimsCmd) Usage() string       { return "claims [--offline]" }
func (claimsCmd) Section() Section    { return SectionThread }

func (claimsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("claims")
	offline := fs.Bool("offline", false, "показать локальную копию без запроса к серверу")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	return withSync(cfg, func(s *service.ThreadSync) error {
		if !*offline {
			if _, err := s.RefreshClaims(ctx); err != nil {
				return err
			}
		}
		list, err := s.Repo.ListClaims()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(Out, "Нет заявок")
			return nil
		}
		for _, c := range list {
			fmt.Fprintf(Out, "- %s  %-9s %-20s %s  with %s  [%s]\n",
				c.ID, c.Role, oneLine(c.ItemTitle, 20), paint(c.Status), c.OtherPartyName, shortTime(c.UpdatedAt))
			if c.LastMessage != "" {
				fmt.Fprintf(Out, "    %s\n", oneLine(c.LastMessage, 70))
			}
		}
		fmt.Fprintf(Out, "Всего: %d\n", len(list))
		return nil
	})
}

type rejectCmd struct{}

func (rejectCmd) Name() string        { return "reject" }
func (rejectCmd) Description() string { return "Отклонить заявку (нашедший)" }
func (rejectCmd) Usage() string       { return "reject <claim-id> [reason...]" }
func (rejectCmd) Section() Section    { return SectionFinder }

func (rejectCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	c, err := bootstrap.APIClient(cfg).RejectClaim(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	printClaim(c)
	afterAction(ctx, cfg, c.ID)
	return nil
}

func init() {
	RegisterCmd(reportCmd{})
	RegisterCmd(claimCmd{})
	RegisterCmd(claimsCmd{})
	RegisterCmd(rejectCmd{})
}
