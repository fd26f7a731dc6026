package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/vkcore/engine"
	"github.com/spaghettifunk/vkcore/testbed"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var frames uint64
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the window and clear it every frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			e, err := engine.New(cfg, testbed.NewClearScene(), log)
			if err != nil {
				return err
			}
			defer func() {
				if err := e.Shutdown(); err != nil {
					log.Errorf("shutdown: %v", err)
				}
			}()

			if err := e.Initialize(); err != nil {
				return err
			}
			return e.Run(cmd.Context(), frames)
		},
	}
	cmd.Flags().Uint64Var(&frames, "frames", 0, "Stop after this many frames (0 runs until the window closes)")
	return cmd
}
