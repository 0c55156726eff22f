// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/gviegas/hybrid/app"
	"github.com/gviegas/hybrid/config"
	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/driver/trace"
	"github.com/gviegas/hybrid/editor"
	"github.com/gviegas/hybrid/importer"
	"github.com/gviegas/hybrid/internal/log"
)

// load loads the configuration named by opts, or the
// default one.
func (o *options) load() (*config.Config, error) {
	cfg := config.Default()
	if o.config != "" {
		var err error
		if cfg, err = config.Load(o.config); err != nil {
			return nil, err
		}
	}
	if o.level != "" {
		cfg.Log.Level = o.level
	}
	return cfg, nil
}

func initLog(cfg *config.Config) error {
	if err := log.Init(cfg.Log); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}

// session opens the configured driver and creates an App
// on its device.
// wrap, if not nil, replaces the device the App uses.
// The returned function releases everything.
func session(ctx context.Context, cfg *config.Config, wrap func(driver.Device) driver.Device) (*app.App, func(), error) {
	drv, dev, err := driver.Open(cfg.Render.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("opening driver %q: %w", cfg.Render.Driver, err)
	}
	log.L().Info("driver opened", log.String("driver", drv.Name()))
	if wrap != nil {
		dev = wrap(dev)
	}
	a, err := app.New(ctx, dev, cfg)
	if err != nil {
		drv.Close()
		return nil, nil, err
	}
	return a, func() {
		a.Destroy()
		drv.Close()
	}, nil
}

func runRender(ctx context.Context, opts *options, output string, frames int) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if err := initLog(cfg); err != nil {
		return err
	}
	if output == "" {
		output = cfg.Render.Output
	}
	if output == "" {
		output = "out.png"
	}
	if frames <= 0 {
		frames = max(cfg.Render.Frames, 1)
	}
	a, done, err := session(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()
	if err := a.Run(ctx, frames, nil); err != nil {
		return err
	}
	if err := a.SavePNG(output); err != nil {
		return err
	}
	log.L().Info("frame written", log.String("path", output), log.Int("frames", frames))
	return nil
}

func runTrace(ctx context.Context, opts *options, output string, frames int, stdout io.Writer) (err error) {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if err := initLog(cfg); err != nil {
		return err
	}
	var rec *trace.Recorder
	a, done, err := session(ctx, cfg, func(dev driver.Device) driver.Device {
		tdev := trace.Wrap(dev)
		rec = tdev.Recorder()
		return tdev
	})
	if err != nil {
		return err
	}
	defer done()
	if err := a.Run(ctx, max(frames, 1), nil); err != nil {
		return err
	}

	w := stdout
	if output != "" && output != "-" {
		f, cerr := os.Create(output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	n, err := rec.WriteTo(w)
	if err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	log.L().Info("trace written",
		log.Int("commands", len(rec.Commands())),
		log.Int("draws", len(rec.Draws())),
		log.Int("bytes", int(n)))
	return nil
}

func runEdit(ctx context.Context, opts *options, save string, watch bool) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	// The terminal belongs to the editor.
	if len(cfg.Log.Output) == 0 {
		cfg.Log.Output = []string{"hybrid.log"}
	}
	if err := initLog(cfg); err != nil {
		return err
	}
	a, done, err := session(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer done()

	if save == "" {
		save = opts.config
	}
	if save == "" {
		save = "scene.yaml"
	}
	ed := editor.New(a.Scene())
	ed.OnImportModel = a.ImportModel
	ed.OnRemove = a.Remove
	ed.OnSave = func() error { return a.Save(save) }

	var reloads <-chan config.Reload
	if watch && opts.config != "" {
		if reloads, err = config.Watch(ctx, opts.config); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	tui, err := editor.NewTUI(screen, ed)
	if err != nil {
		return err
	}
	defer tui.Close()
	return a.Loop(ctx, tui, tui.Done, reloads)
}

func runInspect(ctx context.Context, opts *options, paths []string, w io.Writer) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if err := initLog(cfg); err != nil {
		return err
	}
	if len(paths) == 0 {
		printConfig(w, cfg)
		for i := range cfg.Actors {
			if m := cfg.Actors[i].Model; m != "" {
				paths = append(paths, cfg.Resolve(m))
			}
		}
	}
	if len(paths) == 0 {
		return nil
	}
	models, err := importer.LoadAll(ctx, importer.NewCache(), paths)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	for i, m := range models {
		printModel(w, paths[i], m)
	}
	return nil
}
