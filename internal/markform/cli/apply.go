package cli

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/jlevy/markform/internal/markform/model"
	"github.com/jlevy/markform/internal/markform/patchapply"
)

func newApplyCmd() *cobra.Command {
	var patchesPath, outPath string

	cmd := &cobra.Command{
		Use:   "apply <file.form.md>",
		Short: "Apply a batch of patches and write the resulting form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if patchesPath == "" {
				return fmt.Errorf("apply: --patches is required")
			}
			form, err := loadForm(args[0])
			if err != nil {
				return err
			}
			patches, err := loadPatches(patchesPath)
			if err != nil {
				return err
			}

			result := patchapply.Apply(form, patches)

			if err := writeForm(outPath, result.NewForm); err != nil {
				return err
			}

			summary, err := sonic.MarshalIndent(struct {
				Status          model.ApplyStatus    `json:"status"`
				AppliedPatches  []model.Patch         `json:"appliedPatches"`
				RejectedPatches []model.RejectedPatch `json:"rejectedPatches"`
				Warnings        []model.PatchWarning  `json:"warnings"`
			}{result.Status, result.AppliedPatches, result.RejectedPatches, result.Warnings}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal apply result: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), string(summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&patchesPath, "patches", "", "Path to a JSON file containing an array of Patch objects")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the resulting form here instead of stdout")
	return cmd
}
