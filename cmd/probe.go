package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/vkcore/engine"
)

func newProbeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report physical devices and queue families, then exit",
		Long: `probe runs initialization up to queue family discovery and prints the
score of every physical device and the capabilities of each queue family of
the selected one. No logical device is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			report, err := engine.Probe(cfg, log)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout())
		},
	}
}
