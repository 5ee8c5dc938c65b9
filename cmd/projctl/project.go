package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/project"
	"github.com/fyrsmithlabs/projctl/internal/registry"
	"github.com/fyrsmithlabs/projctl/internal/services"
)

var (
	// project new flags
	pnUserID    string
	pnUserName  string
	pnID        string
	pnName      string
	pnGrantCode string
	pnUUID      string
	pnYear      int
	pnPublish   bool

	// project suffix / scan flags
	psCount int
	pscUser bool
)

// ErrNoServices is returned by --publish when no service has credentials.
var ErrNoServices = errors.New("no services configured; set toggl, asana or notion api_token")

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectParseCmd)
	projectCmd.AddCommand(projectCheckCmd)
	projectCmd.AddCommand(projectSuffixCmd)
	projectCmd.AddCommand(projectScanCmd)
	projectCmd.AddCommand(projectDecomposeCmd)

	f := projectNewCmd.Flags()
	f.StringVar(&pnUserID, "user-id", "", "Generate a new ID for this user ID")
	f.StringVar(&pnUserName, "user-name", "", "Generate a new ID for this person, registering them if needed")
	f.StringVar(&pnID, "id", "", "Use an existing project ID")
	f.StringVar(&pnName, "name", "", "Short project name")
	f.StringVar(&pnGrantCode, "grant", "", "Grant code, e.g. R12345")
	f.StringVar(&pnUUID, "uuid", "", "Version 4 UUID (generated if omitted)")
	f.IntVar(&pnYear, "year", 0, "Year for a generated ID (default current year)")
	f.BoolVar(&pnPublish, "publish", false, "Create the project on every configured service")
	projectNewCmd.MarkFlagsMutuallyExclusive("user-id", "user-name", "id")
	projectNewCmd.MarkFlagsOneRequired("user-id", "user-name", "id")

	projectSuffixCmd.Flags().IntVarP(&psCount, "count", "n", 1, "Number of suffixes to print")
	projectScanCmd.Flags().BoolVar(&pscUser, "users", false, "Print the user IDs of the found projects instead")
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create and inspect project IDs",
	Long: `Create and inspect project IDs of the form P<year>-<user id>-<suffix>,
e.g. P2024-CRD-FZLL.

Examples:
  # New project for a registered person, published to the configured services
  projctl project new --user-name "Charles Robert Darwin" --name "Finch beaks" --publish

  # Validate an ID
  projctl project check P2024-CRD-FZLL

  # Find project IDs in a list of Toggl project names
  pbpaste | projctl project scan`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a project identifier",
	Args:  cobra.NoArgs,
	RunE:  runProjectNew,
}

var projectParseCmd = &cobra.Command{
	Use:   "parse <project id>",
	Short: "Split a project ID into its parts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.ParseProjectID(args[0])
		if err != nil {
			return err
		}
		return outputJSON(cmd.OutOrStdout(), p)
	},
}

var projectCheckCmd = &cobra.Command{
	Use:   "check <project id>",
	Short: "Exit non-zero unless the argument is a well-formed project ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := project.ParseProjectID(args[0]); err != nil {
			return err
		}
		printf(cmd, "%s ok\n", args[0])
		return nil
	},
}

var projectSuffixCmd = &cobra.Command{
	Use:   "suffix",
	Short: "Print random 4-letter project suffixes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if psCount < 1 {
			return fmt.Errorf("--count must be at least 1, got %d", psCount)
		}
		for range psCount {
			printf(cmd, "%s\n", project.GenerateSuffix(nil))
		}
		return nil
	},
}

var projectScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print the project IDs found in text read from stdin",
	Args:  cobra.NoArgs,
	RunE:  runProjectScan,
}

var projectDecomposeCmd = &cobra.Command{
	Use:   "decompose <project title>",
	Short: "Split a service project title into ID, name and grant code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return outputJSON(cmd.OutOrStdout(), project.DecomposeProjectName(strings.Join(args, " ")))
	},
}

type publishOutput struct {
	Project  project.Identifier `json:"project"`
	Services []services.Result  `json:"services"`
	Errors   []string           `json:"errors,omitempty"`
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	var reg *registry.Registry
	if pnUserName != "" || pnPublish {
		r, err := openRegistry()
		if err != nil {
			return err
		}
		reg = r
	}

	userID := pnUserID
	if pnUserName != "" {
		id, err := reg.Resolve(ctx, pnUserName)
		if err != nil {
			return err
		}
		userID = id
	}

	p, err := project.NewProject(project.Options{
		UserID:    userID,
		ID:        pnID,
		Name:      pnName,
		GrantCode: pnGrantCode,
		UUID:      pnUUID,
		Year:      pnYear,
	})
	if err != nil {
		return err
	}
	ctx = logging.WithUserID(ctx, p.UserID())
	log.Info(ctx, "project identifier created", zap.String("project_id", p.ID()))

	if !pnPublish {
		return outputJSON(cmd.OutOrStdout(), p)
	}

	svc, err := services.FromConfig(ctx, appConfig)
	if err != nil {
		return err
	}
	if len(svc.Publishers()) == 0 {
		return ErrNoServices
	}

	user, err := reg.Get(ctx, p.UserID())
	if err != nil {
		if !errors.Is(err, registry.ErrUserNotFound) {
			return err
		}
		log.Warn(ctx, "user not in registry, publishing without client link")
		user = nil
	}

	results, pubErr := svc.Publish(ctx, p, user)
	out := publishOutput{Project: p, Services: results}
	if pubErr != nil {
		out.Errors = strings.Split(pubErr.Error(), "\n")
	}
	if err := outputJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	return pubErr
}

func runProjectScan(cmd *cobra.Command, args []string) error {
	var lines []string
	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	ids := project.FindProjectIDs(lines)
	if pscUser {
		ids = project.UserIDsFromProjectIDs(ids)
	}
	for _, id := range ids {
		printf(cmd, "%s\n", id)
	}
	return nil
}
