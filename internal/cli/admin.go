package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/models"
)

// Users prints the account directory. Admins only.
func (a *App) Users(ctx context.Context) error {
	actor, err := a.currentAccount(ctx)
	if err != nil {
		return a.report(ctx, "users", err)
	}

	list, err := a.accounts.ListAccounts(ctx, actor)
	if err != nil {
		return a.report(ctx, "users", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tNAME\tEMAIL\tMATRICULE\tLEVEL")
	for _, acc := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			acc.ID, acc.Username, acc.Role, acc.Name, acc.Email, acc.Matricule, acc.Level)
	}
	return tw.Flush()
}

// Stats prints the number of accounts per role, known roles first.
func (a *App) Stats(ctx context.Context) error {
	actor, err := a.currentAccount(ctx)
	if err != nil {
		return a.report(ctx, "stats", err)
	}

	counts, err := a.accounts.RoleCounts(ctx, actor)
	if err != nil {
		return a.report(ctx, "stats", err)
	}

	total := 0
	for _, r := range models.AllRoles {
		fmt.Fprintf(a.out, "%-10s %d\n", r, counts[r])
		total += counts[r]
	}
	for _, r := range slices.Sorted(maps.Keys(counts)) {
		if slices.Contains(models.AllRoles, r) {
			continue
		}
		fmt.Fprintf(a.out, "%-10s %d\n", r, counts[r])
		total += counts[r]
	}
	fmt.Fprintf(a.out, "%-10s %d\n", "TOTAL", total)
	return nil
}

// ChangeRole expects "role <username> <role>".
func (a *App) ChangeRole(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: role <username> <role>")
		return common.ErrorValidation
	}

	actor, err := a.currentAccount(ctx)
	if err != nil {
		return a.report(ctx, "role", err)
	}

	acc, err := a.accounts.ChangeRole(ctx, actor, args[0], args[1])
	if err != nil {
		return a.report(ctx, "role", err)
	}

	fmt.Fprintf(a.out, "%s is now %s\n", acc.Username, acc.Role)
	return nil
}

// Backup uploads a directory snapshot. Admins only.
func (a *App) Backup(ctx context.Context) error {
	actor, err := a.currentAccount(ctx)
	if err != nil {
		return a.report(ctx, "backup", err)
	}

	if a.backups == nil {
		fmt.Fprintln(a.out, "backups are not configured")
		return nil
	}

	res, err := a.backups.Backup(ctx, actor)
	if err != nil {
		return a.report(ctx, "backup", err)
	}

	fmt.Fprintf(a.out, "Backup uploaded to %s (%d accounts)\n", res.Key, res.Accounts)
	return nil
}
