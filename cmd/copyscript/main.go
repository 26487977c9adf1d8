// copyscript runs a YAML script of buffer and texture copies through a
// copyenc encoder and reports the outcome of every step.
//
// Usage:
//
//	copyscript [--backend software] [--dump out.bmp --dump-texture name] script.yaml
//
// Scripts declare buffers, textures and query sets by name, then list the
// operations to record. See testdata/ for examples.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/copyenc"
	"github.com/gogpu/copyenc/backend"
)

// errStepsFailed is returned when any step reported an error.
var errStepsFailed = errors.New("one or more steps failed")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		backendName string
		dumpPath    string
		dumpTexture string
		dumpSlice   uint32
		verbose     bool
	)

	flagSet := pflag.NewFlagSet("copyscript", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&backendName, "backend", backend.BackendSoftware, "backend to record on (empty selects the default)")
	flagSet.StringVar(&dumpPath, "dump", "", "write a texture slice read back after the script to this BMP file")
	flagSet.StringVar(&dumpTexture, "dump-texture", "", "texture to dump")
	flagSet.Uint32Var(&dumpSlice, "dump-slice", 0, "array layer or depth slice to dump")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log encoder decisions to stderr")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("expected one script path, got %d arguments", flagSet.NArg())
	}
	if (dumpPath == "") != (dumpTexture == "") {
		return fmt.Errorf("--dump and --dump-texture must be given together")
	}

	if verbose {
		copyenc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer copyenc.SetLogger(nil)
	}

	script, err := LoadScript(flagSet.Arg(0))
	if err != nil {
		return err
	}
	dev, err := backend.Open(backendName)
	if err != nil {
		return fmt.Errorf("opening backend %q: %w", backendName, err)
	}
	info := dev.AdapterInfo()
	fmt.Fprintf(out, "adapter: %s (%s, backend %s)\n", info.Name, info.Type, dev.Name())

	r, err := newRunner(dev, script)
	if err != nil {
		return err
	}
	results := r.run(script.Steps)

	var rb *readback
	if dumpPath != "" && r.enc.State() == copyenc.StateRecording {
		if rb, err = r.queueReadback(dumpTexture, dumpSlice); err != nil {
			return err
		}
	}
	finishErr := r.enc.Finish()

	failed := report(out, results, r, finishErr)
	if rb != nil && finishErr == nil {
		if err := rb.writeBMP(dumpPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", dumpPath)
	}
	if failed {
		return errStepsFailed
	}
	return nil
}

// report prints per-step results and a summary. It reports whether any step
// or the finish failed.
func report(out io.Writer, results []StepResult, r *runner, finishErr error) bool {
	p := message.NewPrinter(language.English)
	failed := finishErr != nil
	for _, res := range results {
		if res.Err != nil {
			failed = true
			p.Fprintf(out, "step %d %s: %v\n", res.Index, res.Op, res.Err)
			continue
		}
		p.Fprintf(out, "step %d %s: ok\n", res.Index, res.Op)
	}

	p.Fprintf(out, "encoder: %v (%d errors reported)\n", r.enc.State(), len(r.errs))
	if finishErr != nil {
		p.Fprintf(out, "finish: %v\n", finishErr)
	}

	var total uint64
	for _, b := range r.buffers {
		total += b.InitialSize()
	}
	p.Fprintf(out, "buffers: %d (%d bytes)\n", len(r.buffers), total)
	p.Fprintf(out, "textures: %d\n", len(r.textures))

	if sd, ok := r.dev.(*backend.SoftwareDevice); ok {
		s := sd.Stats()
		p.Fprintf(out, "blits: %d buffer-to-texture, %d texture-to-buffer, %d buffer copies, %d fills, %d texture clears\n",
			s.BufferToTexture, s.TextureToBuffer, s.BufferCopies, s.Fills, s.TextureClears)
	}
	return failed
}
