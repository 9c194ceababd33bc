package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tgoo/authadm/pkg/audit"
	"github.com/tgoo/authadm/pkg/service"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Manage platforms (tenants)",
}

var platformListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all platforms",
	RunE:  runPlatformList,
}

var platformGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one platform",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlatformGet,
}

var (
	platformCode        string
	platformName        string
	platformDomain      string
	platformDescription string
	platformInactive    bool
	platformActive      bool
)

var platformCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a platform",
	RunE:  runPlatformCreate,
}

var platformUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a platform",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlatformUpdate,
}

var platformDeleteYes bool

var platformDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a platform",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlatformDelete,
}

func init() {
	platformCreateCmd.Flags().StringVar(&platformCode, "code", "",
		"platform code (immutable natural key)")
	platformCreateCmd.Flags().StringVar(&platformName, "name", "", "display name")
	platformCreateCmd.Flags().StringVar(&platformDomain, "domain", "", "platform domain")
	platformCreateCmd.Flags().StringVar(&platformDescription, "description", "", "description")
	platformCreateCmd.Flags().BoolVar(&platformInactive, "inactive", false,
		"create the platform deactivated")
	_ = platformCreateCmd.MarkFlagRequired("code")
	_ = platformCreateCmd.MarkFlagRequired("name")

	platformUpdateCmd.Flags().StringVar(&platformName, "name", "", "display name")
	platformUpdateCmd.Flags().StringVar(&platformDomain, "domain", "", "platform domain")
	platformUpdateCmd.Flags().StringVar(&platformDescription, "description", "", "description")
	platformUpdateCmd.Flags().BoolVar(&platformActive, "active", true, "active flag")

	platformDeleteCmd.Flags().BoolVar(&platformDeleteYes, "yes", false,
		"skip the confirmation prompt")

	platformCmd.AddCommand(platformListCmd)
	platformCmd.AddCommand(platformGetCmd)
	platformCmd.AddCommand(platformCreateCmd)
	platformCmd.AddCommand(platformUpdateCmd)
	platformCmd.AddCommand(platformDeleteCmd)

	rootCmd.AddCommand(platformCmd)
}

func runPlatformList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	if err := a.Platforms.Fetch(ctx); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tDOMAIN\tACTIVE\tMASTER\tUSERS")

	for _, p := range a.Platforms.Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%t\t%d\n",
			p.ID, p.Code, p.Name, stringOrDash(p.Domain),
			p.IsActive, p.IsMaster, p.UserCount(),
		)
	}

	return w.Flush()
}

func runPlatformGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	p, err := a.PlatformSvc.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	fmt.Printf("ID:           %d\n", p.ID)
	fmt.Printf("Code:         %s\n", p.Code)
	fmt.Printf("Name:         %s\n", p.Name)
	fmt.Printf("Domain:       %s\n", stringOrDash(p.Domain))
	fmt.Printf("Description:  %s\n", stringOrDash(p.Description))
	fmt.Printf("Active:       %t\n", p.IsActive)
	fmt.Printf("Master:       %t\n", p.IsMaster)
	fmt.Printf("Users:        %d\n", p.UserCount())

	return nil
}

func runPlatformCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	input := service.CreatePlatformInput{
		Code: platformCode,
		Name: platformName,
	}

	if platformDomain != "" {
		input.Domain = &platformDomain
	}

	if platformDescription != "" {
		input.Description = &platformDescription
	}

	if platformInactive {
		active := false
		input.IsActive = &active
	}

	created, err := a.Platforms.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	a.RecordAudit(ctx, audit.ActionCreate, audit.ResourcePlatform,
		strconv.FormatInt(created.ID, 10), created.Code)

	log.WithField("id", created.ID).
		WithField("code", created.Code).
		Info("Platform created")

	return nil
}

func runPlatformUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	var input service.UpdatePlatformInput

	// Only flags the caller actually set become part of the PATCH body.
	if cmd.Flags().Changed("name") {
		input.Name = &platformName
	}

	if cmd.Flags().Changed("domain") {
		input.Domain = &platformDomain
	}

	if cmd.Flags().Changed("description") {
		input.Description = &platformDescription
	}

	if cmd.Flags().Changed("active") {
		input.IsActive = &platformActive
	}

	updated, err := a.Platforms.Update(ctx, id, input)
	if err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	a.RecordAudit(ctx, audit.ActionUpdate, audit.ResourcePlatform,
		strconv.FormatInt(updated.ID, 10), updated.Code)

	log.WithField("id", updated.ID).Info("Platform updated")

	return nil
}

func runPlatformDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if !platformDeleteYes {
		if !confirm(fmt.Sprintf("Delete platform %d?", id)) {
			return nil
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	if err := a.Platforms.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	a.RecordAudit(ctx, audit.ActionDelete, audit.ResourcePlatform,
		strconv.FormatInt(id, 10), "")

	log.WithField("id", id).Info("Platform deleted")

	return nil
}

// parseID parses a numeric resource id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", arg, err)
	}

	return id, nil
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	answer, err := promptLine(question + " [y/N] ")
	if err != nil {
		return false
	}

	return answer == "y" || answer == "Y" || answer == "yes"
}
