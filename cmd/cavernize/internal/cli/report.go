// Package cli holds the command's console-facing glue: progress
// reporting during a run, styled in the section-header idiom the
// teacher's own report writer uses, stripped to what a batch upmix
// run needs to tell a user.
package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ProgressReporter writes start/progress/finish lines to an
// io.Writer as a run proceeds.
type ProgressReporter struct {
	w           io.Writer
	totalFrames int64
}

// NewProgressReporter returns a reporter that writes to w.
func NewProgressReporter(w io.Writer) *ProgressReporter {
	return &ProgressReporter{w: w}
}

// Started prints the run's header: input/output paths and channel
// counts. A negative totalFrames means the total is not known ahead
// of time, which every container this command reads permits.
func (r *ProgressReporter) Started(inputPath, outputPath string, sourceChannels, targetChannels int, totalFrames int64) {
	r.totalFrames = totalFrames

	title := "Upmixing"
	fmt.Fprintln(r.w, title)
	fmt.Fprintln(r.w, strings.Repeat("-", len(title)))
	fmt.Fprintf(r.w, "Input:   %s (%d channels)\n", filepath.Base(inputPath), sourceChannels)
	fmt.Fprintf(r.w, "Output:  %s (%d channels)\n", filepath.Base(outputPath), targetChannels)
	fmt.Fprintln(r.w)
}

// Progress prints a single running total. A real terminal-aware
// implementation would overwrite the line in place; this command's
// output is as likely to be redirected to a file as shown live, so
// it prints one line per call instead.
func (r *ProgressReporter) Progress(framesDone, totalFrames int64) {
	if totalFrames > 0 {
		fmt.Fprintf(r.w, "  %d / %d frames\n", framesDone, totalFrames)
		return
	}
	fmt.Fprintf(r.w, "  %d frames\n", framesDone)
}

// Finished prints the run's closing summary.
func (r *ProgressReporter) Finished(framesDone int64) {
	fmt.Fprintf(r.w, "Done: %d frames written.\n", framesDone)
}
