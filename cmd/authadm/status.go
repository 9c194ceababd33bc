package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of platforms and users",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	if !a.Session.Authenticated() {
		return fmt.Errorf("not signed in, run 'authadm login' first")
	}

	if err := a.Platforms.Fetch(ctx); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	if err := a.Users.Fetch(ctx, nil); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	platforms := a.Platforms.Items()

	active := 0
	for _, p := range platforms {
		if p.IsActive {
			active++
		}
	}

	fmt.Printf("Platforms: %d (%d active)\n", len(platforms), active)
	fmt.Printf("Users:     %d\n\n", a.Users.Total())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tCODE\tACTIVE\tUSERS")

	for _, p := range platforms {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\n",
			p.Name, p.Code, p.IsActive, p.UserCount())
	}

	return w.Flush()
}
