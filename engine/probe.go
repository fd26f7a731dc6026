package engine

import (
	"fmt"
	"io"
	"text/tabwriter"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/vkcore/engine/core"
	"github.com/spaghettifunk/vkcore/engine/memory"
	"github.com/spaghettifunk/vkcore/engine/platform"
	"github.com/spaghettifunk/vkcore/engine/renderer/vulkan"
)

type ProbeDevice struct {
	Name       string
	Type       string
	APIVersion string
	Score      uint64
	Selected   bool
}

// ProbeReport is what the device negotiation found, captured before the
// logical device would be created.
type ProbeReport struct {
	Devices        []ProbeDevice
	QueueFamilies  []vulkan.QueueFamily
	GraphicsFamily int
	ComputeFamily  int
	Arena          memory.ArenaMetrics
}

// Probe runs initialization up to queue family discovery, records the result
// and tears everything down again.
func Probe(cfg core.Config, log *core.Logger) (*ProbeReport, error) {
	if log == nil {
		log = core.NewNopLogger()
	}
	p, err := platform.New(cfg, log)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	arena := memory.NewArena(cfg.Renderer.ArenaSize)
	defer arena.Release()

	ctx, err := vulkan.NewDeviceContext(arena, log)
	if err != nil {
		return nil, err
	}
	defer ctx.Shutdown()

	initCfg := BuildInitConfig(cfg, p)
	initCfg.StopAfter = vulkan.StageQueueFamilies
	if err := ctx.Initialize(initCfg); err != nil {
		return nil, err
	}
	return newProbeReport(ctx, arena), nil
}

func newProbeReport(ctx *vulkan.DeviceContext, arena *memory.Arena) *ProbeReport {
	r := &ProbeReport{
		GraphicsFamily: ctx.GraphicsFamily,
		ComputeFamily:  ctx.ComputeFamily,
		Arena:          arena.Metrics(),
	}
	for i, props := range ctx.DeviceProperties.Slice() {
		r.Devices = append(r.Devices, ProbeDevice{
			Name:       props.DeviceName(),
			Type:       props.TypeName(),
			APIVersion: props.APIVersionString(),
			Score:      vulkan.ScoreDevice(props),
			Selected:   i == ctx.SelectedDevice,
		})
	}
	r.QueueFamilies = append(r.QueueFamilies, ctx.QueueFamilies.Slice()...)
	return r
}

// Write prints the report as two tables.
func (r *ProbeReport) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tTYPE\tAPI\tSCORE\tSELECTED")
	for _, d := range r.Devices {
		mark := ""
		if d.Selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.Name, d.Type, d.APIVersion, d.Score, mark)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "FAMILY\tQUEUES\tGRAPHICS\tCOMPUTE\tTRANSFER\tPRESENT\tROLE")
	for i, q := range r.QueueFamilies {
		role := ""
		switch i {
		case r.GraphicsFamily:
			role = "graphics"
			if i == r.ComputeFamily {
				role = "graphics+compute"
			}
		case r.ComputeFamily:
			role = "compute"
		}
		fmt.Fprintf(tw, "%d\t%d\t%t\t%t\t%t\t%t\t%s\n", i, q.QueueCount,
			q.Has(vk.QueueGraphicsBit), q.Has(vk.QueueComputeBit), q.Has(vk.QueueTransferBit), q.Present, role)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "arena\t%s\n", r.Arena)
	return tw.Flush()
}
