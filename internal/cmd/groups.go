package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qualitasnexus/nexctl/internal/identity"
	"github.com/qualitasnexus/nexctl/internal/tui"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage user groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE:  run(runGroupsList),
}

var groupsGetCmd = &cobra.Command{
	Use:   "get <group-id>",
	Short: "Show one group",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runGroupsGet),
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runGroupsCreate),
}

var groupsUpdateCmd = &cobra.Command{
	Use:   "update <group-id>",
	Short: "Update a group",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runGroupsUpdate),
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <group-id>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE:  run(runGroupsDelete),
}

func init() {
	groupsListCmd.Flags().String("search", "", "filter groups by name")

	groupsCreateCmd.Flags().String("description", "", "group description")
	groupsCreateCmd.Flags().Bool("default", false, "assign new users to this group automatically")
	groupsCreateCmd.Flags().StringSlice("role", nil, "role id carried by the group (repeatable)")

	groupsUpdateCmd.Flags().String("name", "", "new group name")
	groupsUpdateCmd.Flags().String("description", "", "new group description")
	groupsUpdateCmd.Flags().Bool("default", false, "assign new users to this group automatically")
	groupsUpdateCmd.Flags().StringSlice("role", nil, "role id carried by the group (repeatable)")

	groupsDeleteCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsGetCmd)
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsUpdateCmd)
	groupsCmd.AddCommand(groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}

// groupList renders a group slice as a table
type groupList []identity.Group

func (l groupList) TableHeaders() []string {
	return []string{"ID", "NAME", "MEMBERS", "ROLES", "DEFAULT"}
}

func (l groupList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, g := range l {
		isDefault := ""
		if g.IsDefault {
			isDefault = "yes"
		}
		rows = append(rows, []string{
			g.ID,
			g.Name,
			strconv.Itoa(g.MemberCount),
			strings.Join(g.RoleNames, ", "),
			isDefault,
		})
	}
	return rows
}

func runGroupsList(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermGroupsView); err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	groups, err := app.client.GetGroups(cmd.Context(), search)
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		return app.print(groupList(groups))
	}
	return app.print(groups)
}

func runGroupsGet(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermGroupsView); err != nil {
		return err
	}

	group, err := app.client.GetGroup(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if app.cmdCtx.Format == "text" || app.cmdCtx.Format == "" {
		return app.print(groupList{*group})
	}
	return app.print(group)
}

func runGroupsCreate(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermGroupsCreate); err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	isDefault, _ := cmd.Flags().GetBool("default")
	roleIDs, _ := cmd.Flags().GetStringSlice("role")

	group, err := app.client.CreateGroup(cmd.Context(), identity.GroupRequest{
		Name:        args[0],
		Description: description,
		IsDefault:   isDefault,
		RoleIDs:     roleIDs,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Created group %s (%s)\n", group.Name, group.ID)
	return nil
}

func runGroupsUpdate(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermGroupsUpdate); err != nil {
		return err
	}

	current, err := app.client.GetGroup(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	update := identity.GroupRequest{
		Name:        current.Name,
		Description: current.Description,
		IsDefault:   current.IsDefault,
		RoleIDs:     current.RoleIDs,
	}
	if cmd.Flags().Changed("name") {
		update.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("description") {
		update.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("default") {
		update.IsDefault, _ = cmd.Flags().GetBool("default")
	}
	if cmd.Flags().Changed("role") {
		update.RoleIDs, _ = cmd.Flags().GetStringSlice("role")
	}

	if _, err := app.client.UpdateGroup(cmd.Context(), args[0], update); err != nil {
		return err
	}

	fmt.Fprintf(app.out, "Updated group %s\n", args[0])
	return nil
}

func runGroupsDelete(cmd *cobra.Command, app *app, args []string) error {
	if err := app.requirePermission(cmd.Context(), identity.PermGroupsDelete); err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("refusing to delete without confirmation; pass --yes")
		}
		confirmed, err := tui.PromptForConfirmation(
			fmt.Sprintf("Delete group %s?", args[0]), false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(app.out, "Cancelled.")
			return nil
		}
	}

	if err := app.client.DeleteGroup(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Deleted group %s\n", args[0])
	return nil
}
