package cmd

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/vkcore/engine/renderer/vulkan"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vkcore %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built: %s\n", date)
			v := vk.Version(vulkan.APIVersion)
			fmt.Fprintf(out, "  vulkan api: %d.%d\n", v.Major(), v.Minor())
		},
	}
}
