package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qualitasnexus/nexctl/internal/identity"
	"github.com/qualitasnexus/nexctl/internal/tui"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage tenant roles and their permissions",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	RunE:  run(runRolesList),
}

var rolesGetCmd = &cobra.Command{
	Use:   "get <role-id>",
	Short: "Show one role",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runRolesGet),
}

var rolesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a role",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runRolesCreate),
}

var rolesUpdateCmd = &cobra.Command{
	Use:   "update <role-id>",
	Short: "Rename a role or change its description",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runRolesUpdate),
}

var rolesDeleteCmd = &cobra.Command{
	Use:   "delete <role-id>",
	Short: "Delete a role",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runRolesDelete),
}

var rolesPermissionsCmd = &cobra.Command{
	Use:   "permissions <role-id>",
	Short: "Show the permissions granted to a role",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runRolesPermissions),
}

var rolesGrantCmd = &cobra.Command{
	Use:   "grant <role-id>",
	Short: "Replace the permissions granted to a role",
	Long: `Replace the permission set of a role. Pass --permission flags for a
non-interactive update, or run without them to pick permissions from a
checklist preloaded with the role's current grants.`,
	Args: cobra.ExactArgs(1),
	RunE: run(runRolesGrant),
}

func init() {
	rolesCreateCmd.Flags().String("description", "", "role description")
	rolesUpdateCmd.Flags().String("name", "", "new role name")
	rolesUpdateCmd.Flags().String("description", "", "new role description")
	rolesDeleteCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	rolesGrantCmd.Flags().StringSlice("permission", nil, "permission to grant (repeatable)")

	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesGetCmd)
	rolesCmd.AddCommand(rolesCreateCmd)
	rolesCmd.AddCommand(rolesUpdateCmd)
	rolesCmd.AddCommand(rolesDeleteCmd)
	rolesCmd.AddCommand(rolesPermissionsCmd)
	rolesCmd.AddCommand(rolesGrantCmd)
	rootCmd.AddCommand(rolesCmd)
}

// knownPermissions is the checklist offered by the interactive grant flow
var knownPermissions = []string{
	identity.PermDashboardView,
	identity.PermUsersView,
	identity.PermUsersSearch,
	identity.PermUsersCreate,
	identity.PermUsersUpdate,
	identity.PermUsersDelete,
	identity.PermUsersExport,
	identity.PermRolesView,
	identity.PermRolesCreate,
	identity.PermRolesUpdate,
	identity.PermRolesDelete,
	identity.PermRoleClaimsView,
	identity.PermRoleClaimsUpdate,
	identity.PermUserRolesView,
	identity.PermUserRolesUpdate,
	identity.PermGroupsView,
	identity.PermGroupsCreate,
	identity.PermGroupsUpdate,
	identity.PermGroupsDelete,
}

// roleList renders a role slice as a table
type roleList []identity.Role

func (l roleList) TableHeaders() []string {
	return []string{"ID", "NAME", "DESCRIPTION"}
}

func (l roleList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{r.ID, r.Name, r.Description})
	}
	return rows
}

func runRolesList(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermRolesView); err != nil {
		return err
	}

	roles, err := app.client.GetRoles(cmd.Context())
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		return app.print(roleList(roles))
	}
	return app.print(roles)
}

func runRolesGet(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermRolesView); err != nil {
		return err
	}

	role, err := app.client.GetRole(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		return app.print(roleList{*role})
	}
	return app.print(role)
}

func runRolesCreate(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermRolesCreate); err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	role, err := app.client.UpsertRole(cmd.Context(), identity.UpsertRoleRequest{
		Name:        args[0],
		Description: description,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Created role %s (%s)\n", role.Name, role.ID)
	return nil
}

func runRolesUpdate(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermRolesUpdate); err != nil {
		return err
	}

	current, err := app.client.GetRole(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	upsert := identity.UpsertRoleRequest{
		ID:          current.ID,
		Name:        current.Name,
		Description: current.Description,
	}
	if cmd.Flags().Changed("name") {
		upsert.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("description") {
		upsert.Description, _ = cmd.Flags().GetString("description")
	}

	if _, err := app.client.UpsertRole(cmd.Context(), upsert); err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Updated role %s\n", args[0])
	return nil
}

func runRolesDelete(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermRolesDelete); err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("refusing to delete without confirmation; pass --yes")
		}
		confirmed, err := tui.PromptForConfirmation(
			fmt.Sprintf("Delete role %s? Users lose its permissions immediately.", args[0]), false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(app.out, "Cancelled.")
			return nil
		}
	}

	if err := app.client.DeleteRole(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Deleted role %s\n", args[0])
	return nil
}

func runRolesPermissions(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermRoleClaimsView); err != nil {
		return err
	}

	role, err := app.client.GetRolePermissions(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		fmt.Fprintf(app.out, "Role %s grants %s permissions:\n", role.Name,
			strconv.Itoa(len(role.Permissions)))
		return app.print(permissionList(role.Permissions))
	}
	return app.print(role)
}

func runRolesGrant(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermRoleClaimsUpdate); err != nil {
		return err
	}

	permissions, _ := cmd.Flags().GetStringSlice("permission")
	if len(permissions) == 0 {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("pass --permission flags when no terminal is attached")
		}
		current, err := app.client.GetRolePermissions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		permissions, err = tui.PromptForMultiSelect(
			fmt.Sprintf("Permissions for role %s", current.Name),
			knownPermissions, current.Permissions)
		if err != nil {
			return err
		}
	}

	err := app.client.UpdateRolePermissions(cmd.Context(), args[0], identity.UpdateRolePermissionsRequest{
		RoleID:      args[0],
		Permissions: permissions,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Role %s now grants %d permissions\n", args[0], len(permissions))
	return nil
}
