package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/lecnote/internal/infrastructure/di"
)

// doctorCheck is one line of the doctor report
type doctorCheck struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
	Error  string `json:"error,omitempty"`
}

func (c doctorCheck) ok() bool { return c.Error == "" }

func newDoctorCmd(s *session) *cobra.Command {
	var (
		jsonOutput bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check environment & configuration",
		Long:  "Checks ffmpeg, the configured transcription and note generation providers, and the note store",
		Args:  cobra.NoArgs,
		RunE: s.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			checks := runDoctorChecks(ctx, c)

			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), checks); err != nil {
					return err
				}
			} else {
				printDoctorReport(cmd.OutOrStdout(), s.cfg.Source, checks)
			}

			failed := 0
			for _, check := range checks {
				if !check.ok() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(checks))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "overall time limit for the checks")
	return cmd
}

func runDoctorChecks(ctx context.Context, c *di.Container) []doctorCheck {
	check := func(name, detail string, err error) doctorCheck {
		dc := doctorCheck{Name: name, Detail: detail}
		if err != nil {
			dc.Error = err.Error()
		}
		return dc
	}

	transcriber := c.GetTranscriptionGateway()
	generator := c.GetNoteGenerationGateway()
	return []doctorCheck{
		check("ffmpeg", c.GetConfig().FFmpegBin, c.GetAudioExtractor().HealthCheck(ctx)),
		check("transcription", transcriber.Name(), transcriber.HealthCheck(ctx)),
		check("note generation", generator.Name(), generator.HealthCheck(ctx)),
		check("store", c.StoreLocation(), c.CheckStore(ctx)),
	}
}

func printDoctorReport(w io.Writer, source string, checks []doctorCheck) {
	fmt.Fprintf(w, "Configuration: %s\n", source)
	for _, check := range checks {
		if check.ok() {
			fmt.Fprintf(w, "OK    %-16s %s\n", check.Name, check.Detail)
		} else {
			fmt.Fprintf(w, "FAIL  %-16s %s: %s\n", check.Name, check.Detail, check.Error)
		}
	}
}
