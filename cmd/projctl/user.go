package main

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/project"
)

var userOutputJSON bool

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userResolveCmd)
	userCmd.AddCommand(userGetCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userSetEmailCmd)
	userCmd.AddCommand(userRenameCmd)
	userCmd.AddCommand(userDeriveCmd)

	userCmd.PersistentFlags().BoolVar(&userOutputJSON, "json", false, "Output results as JSON")
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the user registry",
	Long: `Manage the registry that maps people to 3-character user IDs.

User IDs are derived from initials (Charles Robert Darwin -> CRD). When that
ID is held by someone else, the first two letters are numbered 1 to 9
(CD1, CD2, ...).

Examples:
  # Register a person, or look up their existing ID
  projctl user resolve "Charles Robert Darwin"

  # Show the ID a name would get, without touching the registry
  projctl user derive "Ada Lovelace"`,
}

var userResolveCmd = &cobra.Command{
	Use:   "resolve <full name>",
	Short: "Print a person's user ID, registering them if new",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUserResolve,
}

var userGetCmd = &cobra.Command{
	Use:   "get <user id>",
	Short: "Show a registered user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserGet,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

var userSetEmailCmd = &cobra.Command{
	Use:   "set-email <user id> <email>",
	Short: "Set or replace a user's email address",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserSetEmail,
}

var userRenameCmd = &cobra.Command{
	Use:   "rename <user id> <full name>",
	Short: "Change the name stored for a user ID",
	Long: `Change the name stored for a user ID. The ID itself never changes, so
existing project IDs stay valid.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUserRename,
}

var userDeriveCmd = &cobra.Command{
	Use:   "derive <full name>",
	Short: "Print the initials-derived ID for a name without registering it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := project.DeriveUserID(strings.Join(args, " "))
		if err != nil {
			return err
		}
		printf(cmd, "%s\n", id)
		return nil
	},
}

func runUserResolve(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	id, err := reg.Resolve(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", id)
	return nil
}

func runUserGet(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	u, err := reg.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if userOutputJSON {
		return outputJSON(cmd.OutOrStdout(), u)
	}
	printf(cmd, "User ID:  %s\nName:     %s\nEmail:    %s\nCreated:  %s\n",
		u.UserID, u.UserName, u.Email, u.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	users := reg.List(cmd.Context())
	if userOutputJSON {
		return outputJSON(cmd.OutOrStdout(), users)
	}
	if len(users) == 0 {
		printf(cmd, "No users registered in %s\n", reg.Path())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	printfTo(w, "ID\tNAME\tEMAIL\n")
	for _, u := range users {
		printfTo(w, "%s\t%s\t%s\n", u.UserID, u.UserName, u.Email)
	}
	return w.Flush()
}

func runUserSetEmail(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	ctx := logging.WithUserID(cmd.Context(), args[0])
	u, err := reg.UpsertEmail(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	printf(cmd, "%s <%s>\n", u.UserID, u.Email)
	return nil
}

func runUserRename(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	ctx := logging.WithUserID(cmd.Context(), args[0])
	u, err := reg.Rename(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	printf(cmd, "%s %s\n", u.UserID, u.UserName)
	return nil
}
