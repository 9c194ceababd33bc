package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tgoo/authadm/pkg/audit"
	"github.com/tgoo/authadm/pkg/filter"
	"github.com/tgoo/authadm/pkg/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users across platforms",
}

var (
	listSearch   string
	listPlatform string
	listRole     string
	listStatus   string
)

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, optionally filtered",
	RunE:  runUserList,
}

var (
	createEmail    string
	createPassword string
	createName     string
	createPlatform string
	createRole     string
	createStatus   string
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user on a platform",
	RunE:  runUserCreate,
}

var (
	updateName   string
	updateRole   string
	updateStatus string
)

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserUpdate,
}

var userApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending user (set status ACTIVE)",
	Args:  cobra.ExactArgs(1),
	RunE:  statusShortcut(service.StatusActive),
}

var userBlockCmd = &cobra.Command{
	Use:   "block <id>",
	Short: "Block a user (set status BLOCKED)",
	Args:  cobra.ExactArgs(1),
	RunE:  statusShortcut(service.StatusBlocked),
}

var resetPassword string

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <id>",
	Short: "Set a new password for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserResetPassword,
}

var userDeleteYes bool

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

func init() {
	userListCmd.Flags().StringVar(&listSearch, "search", "",
		"free-text search on email or name")
	userListCmd.Flags().StringVar(&listPlatform, "platform", filter.All,
		"platform code, or 'all'")
	userListCmd.Flags().StringVar(&listRole, "role", filter.All,
		"role (USER, ADMIN, SUPER_ADMIN), or 'all'")
	userListCmd.Flags().StringVar(&listStatus, "status", filter.All,
		"status (PENDING, ACTIVE, BLOCKED), or 'all'")

	userCreateCmd.Flags().StringVar(&createEmail, "email", "", "account email")
	userCreateCmd.Flags().StringVar(&createPassword, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&createName, "name", "", "full name")
	userCreateCmd.Flags().StringVar(&createPlatform, "platform", "",
		"owning platform code")
	userCreateCmd.Flags().StringVar(&createRole, "role",
		string(service.RoleUser), "role")
	userCreateCmd.Flags().StringVar(&createStatus, "status",
		string(service.StatusPending), "initial status")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	_ = userCreateCmd.MarkFlagRequired("platform")

	userUpdateCmd.Flags().StringVar(&updateName, "name", "", "full name")
	userUpdateCmd.Flags().StringVar(&updateRole, "role", "", "role")
	userUpdateCmd.Flags().StringVar(&updateStatus, "status", "", "status")

	userResetPasswordCmd.Flags().StringVar(&resetPassword, "password", "",
		"new password (prompted when omitted)")

	userDeleteCmd.Flags().BoolVar(&userDeleteYes, "yes", false,
		"skip the confirmation prompt")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userUpdateCmd)
	userCmd.AddCommand(userApproveCmd)
	userCmd.AddCommand(userBlockCmd)
	userCmd.AddCommand(userResetPasswordCmd)
	userCmd.AddCommand(userDeleteCmd)

	rootCmd.AddCommand(userCmd)
}

func runUserList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	// Compose the filter dimensions so 'all' sentinels and empty search
	// stay out of the query entirely.
	comp := filter.NewComposer(filter.DefaultDebounce, nil)
	comp.SetSearch(listSearch)
	comp.SetPlatform(listPlatform)
	comp.SetRole(listRole)
	comp.SetStatus(listStatus)
	comp.Flush()

	composed := comp.Compose()

	filters := service.UserFilters{
		Search:   composed[filter.KeySearch],
		Platform: composed[filter.KeyPlatform],
		Role:     composed[filter.KeyRole],
		Status:   composed[filter.KeyStatus],
	}

	a.Users.SetFilters(filters)

	if err := a.Users.Fetch(ctx, nil); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tPLATFORM\tROLE\tSTATUS")

	for _, u := range a.Users.Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Email, stringOrDash(u.FullName),
			u.Platform.Code, u.Role, u.Status,
		)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d of %d users", len(a.Users.Items()), a.Users.Total())

	if comp.HasActiveFilters() {
		fmt.Print(" (filtered)")
	}

	fmt.Println()

	return nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	input := service.CreateUserInput{
		Email:    createEmail,
		Password: createPassword,
		Platform: createPlatform,
		Role:     service.Role(createRole),
		Status:   service.Status(createStatus),
	}

	if createName != "" {
		input.FullName = &createName
	}

	created, err := a.Users.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	a.RecordAudit(ctx, audit.ActionCreate, audit.ResourceUser,
		strconv.FormatInt(created.ID, 10), created.Email)

	log.WithField("id", created.ID).
		WithField("email", created.Email).
		Info("User created")

	return nil
}

func runUserUpdate(cmd *cobra.Command, args []string) error {
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

	var input service.UpdateUserInput

	// Only flags the caller actually set become part of the PATCH body.
	if cmd.Flags().Changed("name") {
		input.FullName = &updateName
	}

	if cmd.Flags().Changed("role") {
		role := service.Role(updateRole)
		input.Role = &role
	}

	if cmd.Flags().Changed("status") {
		status := service.Status(updateStatus)
		input.Status = &status
	}

	updated, err := a.Users.Update(ctx, id, input)
	if err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	a.RecordAudit(ctx, audit.ActionUpdate, audit.ResourceUser,
		strconv.FormatInt(updated.ID, 10), updated.Email)

	log.WithField("id", updated.ID).Info("User updated")

	return nil
}

// statusShortcut builds a RunE that PATCHes a user to the given status.
func statusShortcut(status service.Status) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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

		input := service.UpdateUserInput{Status: &status}

		updated, err := a.Users.Update(ctx, id, input)
		if err != nil {
			return fmt.Errorf("%s", friendlyError(err))
		}

		a.RecordAudit(ctx, audit.ActionUpdate, audit.ResourceUser,
			strconv.FormatInt(updated.ID, 10),
			"status="+string(status))

		log.WithField("id", updated.ID).
			WithField("status", string(status)).
			Info("User status changed")

		return nil
	}
}

func runUserResetPassword(cmd *cobra.Command, args []string) error {
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

	password := resetPassword
	if password == "" {
		password, err = promptLine("New password: ")
		if err != nil {
			return err
		}
	}

	if err := a.Users.ResetPassword(ctx, id, password); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	a.RecordAudit(ctx, audit.ActionResetPassword, audit.ResourceUser,
		strconv.FormatInt(id, 10), "")

	log.WithField("id", id).Info("Password reset")

	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if !userDeleteYes {
		if !confirm(fmt.Sprintf("Delete user %d?", id)) {
			return nil
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	if err := a.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	a.RecordAudit(ctx, audit.ActionDelete, audit.ResourceUser,
		strconv.FormatInt(id, 10), "")

	log.WithField("id", id).Info("User deleted")

	return nil
}
