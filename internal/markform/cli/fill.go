package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/jlevy/markform/internal/markform/agent"
	"github.com/jlevy/markform/internal/markform/config"
	"github.com/jlevy/markform/internal/markform/harness"
	"github.com/jlevy/markform/internal/markform/model"
)

// turnScript is the on-disk shape fed to a scripted MockAgent: one entry
// per turn, each a batch of patches that turn's GeneratePatches call
// returns. cmd/markform ships no real LLM provider (SPEC_FULL.md §B,
// libraries not wired); a script is the non-interactive stand-in for an agent.Agent.
type turnScript struct {
	Turns [][]model.Patch `json:"turns"`
}

func newFillCmd() *cobra.Command {
	var scriptPath, outPath, transcriptPath string
	var maxTurns, maxIssuesPerTurn, maxPatchesPerTurn int

	cmd := &cobra.Command{
		Use:   "fill <file.form.md>",
		Short: "Drive the fill harness against a scripted agent",
		Long:  heredocFillLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptPath == "" {
				return fmt.Errorf("fill: --script is required")
			}
			form, err := loadForm(args[0])
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", scriptPath, err)
			}
			var script turnScript
			if err := sonic.Unmarshal(raw, &script); err != nil {
				return fmt.Errorf("parse %s: %w", scriptPath, err)
			}
			mock := &agent.MockAgent{}
			for _, turn := range script.Turns {
				mock.Responses = append(mock.Responses, agent.MockResponse{Patches: turn})
			}

			opts := config.NewHarnessOptions()
			if maxTurns > 0 {
				opts.MaxTurns = maxTurns
			}
			if maxIssuesPerTurn > 0 {
				opts.MaxIssuesPerTurn = maxIssuesPerTurn
			}
			if maxPatchesPerTurn > 0 {
				opts.MaxPatchesPerTurn = maxPatchesPerTurn
			}

			var rec *harness.TranscriptRecorder
			if transcriptPath != "" {
				rec = harness.NewTranscriptRecorder(transcriptPath)
			}

			sr, await := harness.Run(cmd.Context(), form, mock, harness.Options{
				MaxTurns:          opts.MaxTurns,
				MaxIssuesPerTurn:  opts.MaxIssuesPerTurn,
				MaxPatchesPerTurn: opts.MaxPatchesPerTurn,
			}, rec)

			for {
				event, err := sr.Recv()
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("fill: stream error: %w", err)
				}
				if event.Turn != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "turn %d: applied=%d rejected=%d\n",
						event.Turn.TurnNumber, event.Turn.AppliedCount, event.Turn.RejectedCount)
				}
			}
			sr.Close()

			result := await()
			fmt.Fprintf(cmd.ErrOrStderr(), "status: %s (%d turns)\n", result.Status, len(result.Turns))

			return writeForm(outPath, result.NewForm)
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to a JSON file of {\"turns\": [[Patch, ...], ...]} fed to a scripted agent")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the resulting form here instead of stdout")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Write a per-turn transcript YAML here")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "Override the default max-turns budget")
	cmd.Flags().IntVar(&maxIssuesPerTurn, "max-issues-per-turn", 0, "Override the default max-issues-per-turn budget")
	cmd.Flags().IntVar(&maxPatchesPerTurn, "max-patches-per-turn", 0, "Override the default max-patches-per-turn budget")
	return cmd
}

const heredocFillLong = `Drive the fill harness (spec §4.7) against a scripted agent: each
entry in --script's "turns" array is the batch of patches the next
GeneratePatches call returns, standing in for a real LLM provider
(cmd/markform ships no provider integration, spec §1 non-goals).`
