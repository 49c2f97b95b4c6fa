package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tai-edu/tai/internal/courses"
	"github.com/tai-edu/tai/internal/devserver"
	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/identity"
	"github.com/tai-edu/tai/internal/tui"
)

var errNoRole = errors.New("no role selected; run `tai select-role student|teacher` first")

func runInteractive(cmd *cobra.Command, flags *rootFlags) error {
	e, err := setup(flags)
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.New(tui.Deps{
		Backend:     e.client,
		Identity:    e.ids,
		Transcripts: e.transcripts,
		Theme:       tui.ThemeByName(e.cfg.Theme),
		Logger:      e.logger,
	})
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}

// withEnv adapts a command body that needs a ready environment.
func withEnv(flags *rootFlags, fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup(flags)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, e, args)
	}
}

// currentHome returns the course home for the stored role.
func currentHome(ctx context.Context, e *env) (*courses.Home, error) {
	session, err := e.ids.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !session.Complete() {
		return nil, errNoRole
	}
	return courses.NewHome(session.Role, e.ids, e.client, e.logger), nil
}

func newWhoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the device id and selected role",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			ctx := cmd.Context()
			deviceID, err := e.ids.DeviceID(ctx)
			if err != nil {
				return err
			}
			session, err := e.ids.Current(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "device: %s\n", deviceID)
			if !session.Complete() {
				fmt.Fprintln(out, "role:   (none)")
				return nil
			}
			fmt.Fprintf(out, "role:   %s\nuser:   %s\n", session.Role, session.UserID)
			return nil
		}),
	}
}

func newSelectRoleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "select-role <student|teacher>",
		Short:     "Register this device as a student or teacher",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.RoleStudent), string(domain.RoleTeacher)},
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			role, err := domain.ParseRole(args[0])
			if err != nil {
				return err
			}
			onboarding := identity.NewOnboarding(e.ids, e.client, e.logger)
			if _, err := onboarding.SelectRole(cmd.Context(), role); err != nil {
				return err
			}
			session, err := e.ids.Current(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (user %s)\n", session.Role, session.UserID)
			return nil
		}),
	}
}

func newSwitchRoleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "switch-role",
		Short: "Forget the selected role; the device id is kept",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.ids.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Role cleared. Run `tai select-role` to choose again.")
			return nil
		}),
	}
}

func newCoursesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List your courses",
		Args:  cobra.NoArgs,
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, _ []string) error {
			home, err := currentHome(cmd.Context(), e)
			if err != nil {
				return err
			}
			if err := home.Load(cmd.Context()); err != nil {
				return err
			}

			list := home.Courses()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses yet.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCODE")
			for _, c := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.ClassCode)
			}
			return w.Flush()
		}),
	}
}

func newJoinCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "join <class-code>",
		Short: "Join a course by its class code",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			home, err := currentHome(cmd.Context(), e)
			if err != nil {
				return err
			}
			course, err := home.Join(cmd.Context(), args[0])
			if errors.Is(err, courses.ErrCourseNotFound) {
				return errors.New("course not found; check the class code")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Joined %s (%s)\n", course.Name, course.ClassCode)
			return nil
		}),
	}
}

func newLeaveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "leave <course-id>",
		Short: "Leave a course",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			home, err := currentHome(cmd.Context(), e)
			if err != nil {
				return err
			}
			if err := home.Leave(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Left course", args[0])
			return nil
		}),
	}
}

func newCreateCourseCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create-course <name> <class-code>",
		Short: "Create a course (teachers only)",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(flags, func(cmd *cobra.Command, e *env, args []string) error {
			home, err := currentHome(cmd.Context(), e)
			if err != nil {
				return err
			}
			course, err := home.Create(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) id=%s\n", course.Name, course.ClassCode, course.ID)
			return nil
		}),
	}
}

func newDevServerCmd(flags *rootFlags) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory backend for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.DevPort = port
			}
			level, err := cfg.LogLevel()
			if err != nil {
				return err
			}
			logger := newConsoleLogger(cmd.ErrOrStderr(), level)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := devserver.New(devserver.WithLogger(logger))
			return srv.Run(ctx, cfg.DevAddr())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides TAI_DEV_PORT)")
	return cmd
}
