package main

import (
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"

	"sfm/internal/sfm"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressBar reports backup copies on stderr. A nil *progressBar is valid
// and reports nothing.
type progressBar struct {
	bar *pb.ProgressBar
}

// newProgressBar starts a bar for total copies, or returns nil when there
// is nothing to copy.
func newProgressBar(total int) *progressBar {
	if total <= 0 {
		return nil
	}
	bar := pb.New(total)
	bar.SetWriter(os.Stderr)
	bar.SetTemplate(`Backing up {{counters . }} {{bar . }} {{percent . }} {{etime . }}`)
	bar.Start()
	return &progressBar{bar: bar}
}

func (p *progressBar) progressFunc() sfm.ProgressFunc {
	if p == nil {
		return nil
	}
	return func(string) { p.bar.Increment() }
}

func (p *progressBar) finish() {
	if p == nil {
		return
	}
	p.bar.Finish()
}
