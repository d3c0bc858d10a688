//go:build fyne && cgo

/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"yardview/internal/config"
	"yardview/internal/crash"
	"yardview/internal/domain"
	"yardview/internal/export"
	applog "yardview/internal/log"
	"yardview/internal/scene"
	"yardview/internal/telemetry"
	"yardview/internal/version"
)

// frameInterval is the UI tick; the scene core itself is frame-rate agnostic.
const frameInterval = 33 * time.Millisecond

// Run starts the Fyne desktop shell: a top-down yard view driven by the
// scene engine, a block list, and the task panel buttons.
func Run(layoutPath, dbPath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	telemetry.NewDefault(telemetry.FromApp(cfg.General))
	telemetry.Event("session_start", nil)

	eng := scene.NewEngine(scene.TunablesFrom(cfg.Camera))
	defer eng.Close()
	defer crash.Recover(eng.State())

	fyneApp := app.NewWithID("yardview")
	w := fyneApp.NewWindow("Yardview")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Loading…")

	term, entities, err := loadYard(layoutPath, dbPath, eng)
	if err != nil {
		return err
	}
	status.SetText(fmt.Sprintf("%s: %d containers in %d blocks", term.Name, len(entities), len(term.Blocks)))

	yardImage := canvas.NewImageFromImage(renderFrame(term, eng))
	yardImage.FillMode = canvas.ImageFillContain
	yardImage.SetMinSize(fyne.NewSize(600, 400))

	blockList := buildBlockList(term, eng, status)
	panelBar := buildPanelBar(eng, status)
	viewBar := buildViewBar(eng)

	w.SetContent(container.NewBorder(
		viewBar, container.NewVBox(panelBar, status), blockList, nil,
		yardImage,
	))

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				dt := now.Sub(last)
				last = now
				eng.Step(dt)
				frame := renderFrame(term, eng)
				fyne.Do(func() {
					yardImage.Image = frame
					yardImage.Refresh()
				})
			}
		}
	}()

	w.SetOnClosed(func() {
		close(stop)
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		telemetry.Event("session_end", telemetry.Counts())
	})

	w.ShowAndRun()
	return nil
}

func loadYard(layoutPath, dbPath string, eng *scene.Engine) (domain.Terminal, map[string]domain.Entity, error) {
	eng.State().SetLoading(true)
	term, entities, reserved, err := LoadYardData(layoutPath, dbPath)
	if err != nil {
		return term, nil, err
	}
	eng.Reload(term, entities)
	eng.State().SetReserved(reserved)
	eng.State().SetLoading(false)
	return term, entities, nil
}

// renderFrame rasterizes the live instance buffers top-down. Hidden and
// fully-dimmed instances are dropped before handing off to the snapshot
// renderer.
func renderFrame(term domain.Terminal, eng *scene.Engine) image.Image {
	img, err := export.RenderSnapshot(term, frameEntities(eng.Buffers()), export.SnapshotOptions{Scale: 3})
	if err != nil {
		return nil
	}
	return img
}

func buildBlockList(term domain.Terminal, eng *scene.Engine, status *widget.Label) fyne.CanvasObject {
	items := make([]string, 0, len(term.Blocks)+1)
	items = append(items, "(none)")
	for _, b := range term.Blocks {
		items = append(items, b.ID)
	}
	list := widget.NewList(
		func() int { return len(items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(items[i])
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		if i == 0 {
			eng.State().SetSelectedBlock("")
			status.SetText("Selection cleared")
			return
		}
		eng.State().SetSelectedBlock(items[i])
		status.SetText("Block " + items[i])
		telemetry.Selection("block")
	}
	return container.NewVBox(widget.NewLabel("Blocks"), list)
}

func buildPanelBar(eng *scene.Engine, status *widget.Label) fyne.CanvasObject {
	panels := []struct {
		label string
		kind  domain.PanelKind
	}{
		{"Gate In", domain.PanelGateIn},
		{"Gate Out", domain.PanelGateOut},
		{"Stuffing", domain.PanelStuffing},
		{"Destuffing", domain.PanelDestuffing},
		{"Plug In", domain.PanelPlugIn},
		{"Plug Out", domain.PanelPlugOut},
		{"CFS Task", domain.PanelCFSTask},
		{"Position", domain.PanelPositionContainer},
		{"Reserved", domain.PanelReserved},
	}
	objs := make([]fyne.CanvasObject, 0, len(panels)+1)
	for _, p := range panels {
		p := p
		objs = append(objs, widget.NewButton(p.label, func() {
			eng.State().OpenPanel(p.kind)
			status.SetText("Panel: " + p.label)
			telemetry.Selection("panel")
		}))
	}
	objs = append(objs, widget.NewButton("Close Panel", func() {
		eng.State().ClosePanel()
		status.SetText("Panel closed")
	}))
	return container.NewHBox(objs...)
}

func buildViewBar(eng *scene.Engine) fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButton("Top View", func() { eng.Signals().Publish(scene.SignalTopView) }),
		widget.NewButton("Reset View", func() { eng.Signals().Publish(scene.SignalResetView) }),
	)
}
