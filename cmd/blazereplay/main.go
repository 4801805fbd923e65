// Command blazereplay runs a JSON draw script against the headless backend
// and reports what each present would have sent to the GPU.
//
//	blazereplay -script frame.json [-options batch.yaml] [-v] [-dump]
//
// Texture paths in the script are resolved relative to the script file.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/phanxgames/blaze"
	"github.com/phanxgames/blaze/headless"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "blazereplay:", err)
		os.Exit(1)
	}
}

type drawCallJSON struct {
	Frame     int    `json:"frame"`
	Slot      int    `json:"slot"`
	Texture   string `json:"texture"`
	TextureID uint32 `json:"texture_id"`
	Blend     string `json:"blend"`
	Quads     int    `json:"quads"`
	Immediate bool   `json:"immediate,omitempty"`
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("blazereplay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scriptPath := fs.String("script", "", "JSON draw script to replay (required)")
	optionsPath := fs.String("options", "", "YAML batch options (default limits when empty)")
	verbose := fs.Bool("v", false, "log bucket and present details")
	dump := fs.Bool("dump", false, "print every draw call as JSON lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scriptPath == "" {
		fs.Usage()
		return errors.New("-script is required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	blaze.SetLogger(logger)
	defer blaze.SetLogger(nil)

	opts := blaze.DefaultOptions
	if *optionsPath != "" {
		var err error
		if opts, err = blaze.LoadOptions(*optionsPath); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(*scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	script, err := blaze.LoadDrawScript(data)
	if err != nil {
		return err
	}

	backend := headless.New()
	textures, names, err := loadTextures(backend, filepath.Dir(*scriptPath), script.Textures)
	if err != nil {
		return err
	}
	defer func() {
		for _, tex := range textures {
			tex.Free()
		}
	}()

	batchIndex := backend.BatchesCreated
	batch, err := blaze.NewSpriteBatch(backend, opts)
	if err != nil {
		return err
	}
	defer batch.Free()

	frames, runErr := script.Run(batch, backend, textures)

	if *dump {
		if err := dumpDrawCalls(stdout, backend.DrawCalls, frames, batchIndex, names); err != nil {
			return err
		}
	}

	total := 0
	for i, f := range frames {
		total += f.DrawCalls
		logger.Info("frame", "index", i, "buckets", f.Buckets, "draw_calls", f.DrawCalls, "quads", f.Quads)
	}
	logger.Info("replay finished", "frames", len(frames), "draw_calls", total, "pending_quads", batch.Len())
	return runErr
}

// dumpDrawCalls writes calls as JSON lines. Calls are recorded in order and
// split by frame using the per-present counts of the batch created as
// batchIndex; draws from any other handle are immediate draws and go to the
// frame being built when they ran. Calls after the last present are dropped.
func dumpDrawCalls(w io.Writer, calls []headless.DrawCall, frames []blaze.FrameStats, batchIndex int, names map[uint32]string) error {
	enc := json.NewEncoder(w)
	frame, used := 0, 0
	for _, dc := range calls {
		for frame < len(frames) && used == frames[frame].DrawCalls {
			frame++
			used = 0
		}
		if frame == len(frames) {
			break
		}
		immediate := dc.Batch != batchIndex
		if !immediate {
			used++
		}
		if err := enc.Encode(drawCallJSON{
			Frame:     frame,
			Slot:      dc.Slot,
			Texture:   names[dc.TextureID],
			TextureID: dc.TextureID,
			Blend:     dc.Blend.String(),
			Quads:     len(dc.Quads),
			Immediate: immediate,
		}); err != nil {
			return err
		}
	}
	return nil
}

// loadTextures loads every script texture in name order so ids are stable
// across runs.
func loadTextures(backend *headless.Backend, dir string, paths map[string]string) (map[string]*blaze.Texture, map[uint32]string, error) {
	keys := make([]string, 0, len(paths))
	for name := range paths {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	textures := make(map[string]*blaze.Texture, len(paths))
	names := make(map[uint32]string, len(paths))
	for _, name := range keys {
		p := paths[name]
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		tex, err := blaze.LoadTextureFromFile(backend, p, blaze.ChannelsAuto, blaze.ImageNone)
		if err != nil {
			for _, t := range textures {
				t.Free()
			}
			return nil, nil, fmt.Errorf("texture %q: %w", name, err)
		}
		textures[name] = tex
		names[tex.ID] = name
	}
	return textures, names, nil
}
