// Command cavernize upmixes a WAVE or Limitless input file into a
// height-aware target layout and writes the result in the container
// format named by the output path's extension.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/cavernize/core/cmd/cavernize/internal/cli"
	"github.com/cavernize/core/cmd/cavernize/internal/engine"
)

// CLI defines the flag surface of the spec's command line: each flag
// keeps the original tool's single-dash, multi-letter spelling
// (-br, -cav, -co, -cs, -ef, -lfe, -lfev, -mx, -sm), which main
// rewrites to kong's double-dash long-flag syntax before parsing.
type CLI struct {
	Input            string   `name:"i" required:"" help:"input WAVE or Limitless file."`
	BitRate          int      `name:"br" enum:"8,16,32" default:"16" help:"output bit depth."`
	Cavernize        string   `name:"cav" default:"0" help:"target layout: 0 (passthrough), 1 (auto), or 301/312/402/404/512."`
	ChannelCount     int      `name:"cc" default:"0" help:"override detected source channel count."`
	ChannelOverrides []string `name:"co" sep:"none" help:"channel override, repeatable: \"<index>,<x>,<y>,<lfe>\"."`
	CenterStays      string   `name:"cs" enum:"on,off" default:"on" help:"exempt the center channel from height estimation."`
	EffectScale      float64  `name:"ef" default:"100" help:"height-estimate scale, percent."`
	LFESeparation    string   `name:"lfe" enum:"on,off" default:"on" help:"treat the source's LFE channel as already separated."`
	LFEVolume        float64  `name:"lfev" default:"100" help:"gain applied to everything routed to a target LFE speaker, percent."`
	MatrixUpmix      string   `name:"mx" enum:"on,off" default:"on" help:"derive extra center/surround channels from stereo, 3.0 or quadraphonic sources."`
	Smoothness       float64  `name:"sm" default:"50" help:"height-estimate smoothing, 0..100."`

	Output string `arg:"" name:"output" help:"output file path."`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	cliArgs := &CLI{}
	parser, err := kong.New(cliArgs,
		kong.Name("cavernize"),
		kong.Description("Height-aware channel upmixer."),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, err := parser.Parse(rewriteShortFlags(args))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := ctx.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	overrides, err := parseChannelOverrides(cliArgs.ChannelOverrides)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	report := cli.NewProgressReporter(stdout)
	cfg := engine.Request{
		InputPath:          cliArgs.Input,
		OutputBitDepth:     cliArgs.BitRate,
		TargetLayout:       cliArgs.Cavernize,
		SourceChannelCount: cliArgs.ChannelCount,
		ChannelOverrides:   overrides,
		CenterStays:        cliArgs.CenterStays == "on",
		EffectScalePct:     cliArgs.EffectScale,
		LFESeparation:      cliArgs.LFESeparation == "on",
		LFEVolumePct:       cliArgs.LFEVolume,
		MatrixUpmix:        cliArgs.MatrixUpmix == "on",
		Smoothness:         cliArgs.Smoothness,
		OutputPath:         cliArgs.Output,
	}

	if err := engine.Run(cfg, report); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// rewriteShortFlags rewrites the spec's single-dash, multi-letter
// flags (e.g. "-br") into kong's double-dash long form ("--br") so
// the documented command-line surface can be parsed by a standard
// flag library without reimplementing a parser. Genuine single-letter
// flags (e.g. "-i") and the trailing positional output path pass
// through unchanged.
func rewriteShortFlags(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.HasPrefix(a, "-") && !strings.HasPrefix(a, "--") {
			name, _, _ := strings.Cut(a[1:], "=")
			if len(name) > 1 {
				out[i] = "-" + a
				continue
			}
		}
		out[i] = a
	}
	return out
}

func parseChannelOverrides(raw []string) ([]engine.ChannelOverride, error) {
	overrides := make([]engine.ChannelOverride, 0, len(raw))
	for _, spec := range raw {
		parts := strings.Split(spec, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("cavernize: -co %q: expected \"<index>,<x>,<y>,<lfe>\"", spec)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("cavernize: -co %q: bad channel index: %w", spec, err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("cavernize: -co %q: bad x: %w", spec, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("cavernize: -co %q: bad y: %w", spec, err)
		}
		lfe := strings.TrimSpace(parts[3]) == "1" || strings.EqualFold(strings.TrimSpace(parts[3]), "true")

		overrides = append(overrides, engine.ChannelOverride{Index: idx, Elevation: x, Azimuth: y, LFE: lfe})
	}
	return overrides, nil
}
