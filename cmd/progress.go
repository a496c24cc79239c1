package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
	"golang.org/x/term"

	"github.com/EricSchles/pfas-cancer-project/internal/model"
)

// fitParams returns the configured boosting parameters. When stderr is a
// terminal a progress bar tracks the stages; the returned func must be
// called once fitting ends, successfully or not.
func fitParams(cmd *cobra.Command) (model.Params, func()) {
	p := modelParams(cfg)
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p, func() {}
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		width = 80
	}
	prog := mpb.New(mpb.WithWidth(width), mpb.WithOutput(f))
	bar := prog.AddBar(int64(p.Estimators),
		mpb.PrependDecorators(decor.Name("boosting "), decor.CountersNoUnit("%d/%d")),
		mpb.AppendDecorators(decor.AverageETA(decor.ET_STYLE_HHMMSS)),
		mpb.BarRemoveOnComplete())
	start := time.Now()
	p.Progress = func(int) { bar.IncrBy(1, time.Since(start)) }
	return p, func() {
		bar.SetTotal(int64(p.Estimators), true)
		prog.Wait()
	}
}
