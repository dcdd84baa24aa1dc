// Package cli is the lecnote command line boundary
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/lecnote/internal/app"
	"github.com/YoshitsuguKoike/lecnote/internal/infra/config"
	"github.com/YoshitsuguKoike/lecnote/internal/infrastructure/di"
	"github.com/YoshitsuguKoike/lecnote/internal/interface/cli/version"
)

// session holds what one invocation resolved in PersistentPreRunE
type session struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger app.Logger
}

// withContainer builds the container for the duration of one command
func (s *session) withContainer(fn func(cmd *cobra.Command, c *di.Container, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := di.NewContainer(cmd.Context(), s.cfg, di.WithLogger(s.logger))
		if err != nil {
			return err
		}
		defer func() {
			if err := c.Close(); err != nil {
				s.logger.Warn("Failed to close store: %v", err)
			}
		}()
		return fn(cmd, c, args)
	}
}

func NewRoot() *cobra.Command {
	s := &session{}

	cmd := &cobra.Command{
		Use:   "lecnote",
		Short: "Turn lecture videos into structured block notes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Priority: environment > lecnote.yaml > defaults; --log-level beats all
			cfg, err := config.Load(s.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if s.logLevel != "" {
				cfg.LogLevel = s.logLevel
			}
			s.cfg = cfg
			s.logger = InitializeLoggers(NewLogger(LogLevelFromString(cfg.LogLevel), cmd.ErrOrStderr()))
			s.logger.Debug("Configuration loaded from %s", cfg.Source)
			return nil
		},
		SilenceUsage: true,
		RunE:         func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVar(&s.configPath, "config", "", "path to lecnote.yaml")
	cmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newProcessCmd(s))
	cmd.AddCommand(newNoteCmd(s))
	cmd.AddCommand(newBlockCmd(s))
	cmd.AddCommand(newDoctorCmd(s))
	cmd.AddCommand(version.NewCommand())
	return cmd
}
