package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/qualitasnexus/nexctl/internal/identity"
	"github.com/qualitasnexus/nexctl/internal/tui"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage tenant users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, optionally filtered and paged",
	RunE:  run(runUsersList),
}

var usersGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runUsersGet),
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new user account",
	RunE:  run(runUsersCreate),
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Update a user's profile fields",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runUsersUpdate),
}

var usersActivateCmd = &cobra.Command{
	Use:   "activate <user-id>",
	Short: "Activate a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runUsersActivate),
}

var usersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <user-id>",
	Short: "Deactivate a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runUsersDeactivate),
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runUsersDelete),
}

var usersRolesCmd = &cobra.Command{
	Use:   "roles <user-id>",
	Short: "Show a user's role assignments",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runUsersRoles),
}

var usersAssignRolesCmd = &cobra.Command{
	Use:   "assign-roles <user-id>",
	Short: "Replace a user's role assignments",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runUsersAssignRoles),
}

var usersBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse users interactively",
	RunE:  run(runUsersBrowse),
}

func init() {
	usersListCmd.Flags().Int("page", 1, "page number")
	usersListCmd.Flags().Int("page-size", 20, "page size")
	usersListCmd.Flags().String("sort", "", "sort expression")
	usersListCmd.Flags().String("search", "", "search by name or email")
	usersListCmd.Flags().String("active", "", "filter by active state (true/false)")
	usersListCmd.Flags().String("role", "", "filter by role id")

	usersCreateCmd.Flags().String("email", "", "email address")
	usersCreateCmd.Flags().String("username", "", "login name")
	usersCreateCmd.Flags().String("first-name", "", "first name")
	usersCreateCmd.Flags().String("last-name", "", "last name")
	usersCreateCmd.Flags().String("password", "", "initial password")
	usersCreateCmd.Flags().String("phone", "", "phone number")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("username")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersUpdateCmd.Flags().String("email", "", "email address")
	usersUpdateCmd.Flags().String("first-name", "", "first name")
	usersUpdateCmd.Flags().String("last-name", "", "last name")
	usersUpdateCmd.Flags().String("phone", "", "phone number")
	usersUpdateCmd.Flags().Bool("delete-image", false, "remove the profile image")

	usersDeleteCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	usersAssignRolesCmd.Flags().StringSlice("role", nil, "role id to assign (repeatable)")
	_ = usersAssignRolesCmd.MarkFlagRequired("role")

	usersBrowseCmd.Flags().Int("page-size", 20, "page size")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersActivateCmd)
	usersCmd.AddCommand(usersDeactivateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersRolesCmd)
	usersCmd.AddCommand(usersAssignRolesCmd)
	usersCmd.AddCommand(usersBrowseCmd)
	rootCmd.AddCommand(usersCmd)
}

// userList renders a user slice as a table
type userList []identity.User

func (l userList) TableHeaders() []string {
	return []string{"ID", "USERNAME", "EMAIL", "NAME", "STATUS"}
}

func (l userList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, u := range l {
		status := "inactive"
		if u.IsActive {
			status = "active"
		}
		rows = append(rows, []string{
			u.ID,
			u.UserName,
			u.Email,
			strings.TrimSpace(u.FirstName + " " + u.LastName),
			status,
		})
	}
	return rows
}

func runUsersList(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUsersView); err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	sort, _ := cmd.Flags().GetString("sort")
	search, _ := cmd.Flags().GetString("search")
	active, _ := cmd.Flags().GetString("active")
	roleID, _ := cmd.Flags().GetString("role")

	filter := identity.UserSearchFilter{
		PageNumber: page,
		PageSize:   pageSize,
		Sort:       sort,
		Search:     search,
		RoleID:     roleID,
	}
	switch active {
	case "true":
		v := true
		filter.IsActive = &v
	case "false":
		v := false
		filter.IsActive = &v
	}

	result, err := app.client.SearchUsers(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		if err := app.print(userList(result.Items)); err != nil {
			return err
		}
		fmt.Fprintf(app.out, "page %d of %d (%d users)\n",
			result.PageNumber, result.TotalPages, result.TotalCount)
		return nil
	}
	return app.print(result)
}

func runUsersGet(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUsersView); err != nil {
		return err
	}

	user, err := app.client.GetUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		return app.print(userList{*user})
	}
	return app.print(user)
}

func runUsersCreate(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUsersCreate); err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	username, _ := cmd.Flags().GetString("username")
	firstName, _ := cmd.Flags().GetString("first-name")
	lastName, _ := cmd.Flags().GetString("last-name")
	password, _ := cmd.Flags().GetString("password")
	phone, _ := cmd.Flags().GetString("phone")

	result, err := app.client.RegisterUser(cmd.Context(), identity.RegisterUserRequest{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		UserName:        username,
		Password:        password,
		ConfirmPassword: password,
		PhoneNumber:     phone,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Created user %s (%s)\n", username, result.UserID)
	return nil
}

func runUsersUpdate(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUsersUpdate); err != nil {
		return err
	}

	current, err := app.client.GetUser(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	update := identity.UpdateUserRequest{
		ID:          current.ID,
		FirstName:   current.FirstName,
		LastName:    current.LastName,
		PhoneNumber: current.PhoneNumber,
		Email:       current.Email,
	}
	if cmd.Flags().Changed("email") {
		update.Email, _ = cmd.Flags().GetString("email")
	}
	if cmd.Flags().Changed("first-name") {
		update.FirstName, _ = cmd.Flags().GetString("first-name")
	}
	if cmd.Flags().Changed("last-name") {
		update.LastName, _ = cmd.Flags().GetString("last-name")
	}
	if cmd.Flags().Changed("phone") {
		update.PhoneNumber, _ = cmd.Flags().GetString("phone")
	}
	update.DeleteCurrentImage, _ = cmd.Flags().GetBool("delete-image")

	if _, err := app.client.UpdateUser(cmd.Context(), args[0], update); err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Updated user %s\n", args[0])
	return nil
}

func runUsersActivate(cmd *cobra.Command, app *app, args []string) error {
	return toggleUser(cmd, app, args[0], true)
}

func runUsersDeactivate(cmd *cobra.Command, app *app, args []string) error {
	return toggleUser(cmd, app, args[0], false)
}

func toggleUser(cmd *cobra.Command, app *app, userID string, activate bool) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUsersUpdate); err != nil {
		return err
	}
	if err := app.client.ToggleUserStatus(cmd.Context(), userID, activate); err != nil {
		return err
	}
	verb := "Deactivated"
	if activate {
		verb = "Activated"
	}
	fmt.Fprintf(app.out, "%s user %s\n", verb, userID)
	return nil
}

func runUsersDelete(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUsersDelete); err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("refusing to delete without confirmation; pass --yes")
		}
		confirmed, err := tui.PromptForConfirmation(
			fmt.Sprintf("Delete user %s? This cannot be undone.", args[0]), false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(app.out, "Cancelled.")
			return nil
		}
	}

	if err := app.client.DeleteUser(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Deleted user %s\n", args[0])
	return nil
}

// userRoleList renders a user's role assignments
type userRoleList []identity.UserRole

func (l userRoleList) TableHeaders() []string {
	return []string{"ROLE ID", "NAME", "ASSIGNED"}
}

func (l userRoleList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		assigned := "no"
		if r.Enabled {
			assigned = "yes"
		}
		rows = append(rows, []string{r.RoleID, r.RoleName, assigned})
	}
	return rows
}

func runUsersRoles(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUserRolesView); err != nil {
		return err
	}

	roles, err := app.client.GetUserRoles(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		return app.print(userRoleList(roles))
	}
	return app.print(roles)
}

func runUsersAssignRoles(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUserRolesUpdate); err != nil {
		return err
	}

	wanted, _ := cmd.Flags().GetStringSlice("role")
	wantedSet := make(map[string]bool, len(wanted))
	for _, id := range wanted {
		wantedSet[id] = true
	}

	// The backend expects the full assignment list with enabled flags, so
	// start from what it currently knows.
	current, err := app.client.GetUserRoles(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	assignments := make([]identity.UserRole, 0, len(current))
	for _, role := range current {
		role.Enabled = wantedSet[role.RoleID]
		delete(wantedSet, role.RoleID)
		assignments = append(assignments, role)
	}
	for id := range wantedSet {
		assignments = append(assignments, identity.UserRole{RoleID: id, Enabled: true})
	}

	err = app.client.AssignUserRoles(cmd.Context(), args[0], identity.AssignUserRolesRequest{
		UserID:    args[0],
		UserRoles: assignments,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Updated role assignments for user %s\n", args[0])
	return nil
}

func runUsersBrowse(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermUsersView); err != nil {
		return err
	}

	pageSize, _ := cmd.Flags().GetInt("page-size")
	fetch := func(pageNumber int, search string) (*identity.UserPage, error) {
		return app.client.SearchUsers(cmd.Context(), identity.UserSearchFilter{
			PageNumber: pageNumber,
			PageSize:   pageSize,
			Search:     search,
		})
	}

	model := tui.NewBrowseModel(fetch, pageSize)
	_, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
	return err
}
