/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"yardview/internal/config"
	"yardview/internal/crash"
	"yardview/internal/export"
	applog "yardview/internal/log"
	"yardview/internal/scene"
	"yardview/internal/ui"
	"yardview/internal/version"
)

func usage() {
	fmt.Println("Yardview - container terminal viewer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  yardview version|-v|--version              Show version")
	fmt.Println("  yardview snapshot <layout> [db] [out.png]  Render a top-down yard snapshot")
	fmt.Println("  yardview report <layout> [db] [out.pdf]    Write the yard occupancy report")
	fmt.Println("  yardview run <layout> [db]                 Launch the viewer (build with -tags fyne for full UI)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer crash.Recover(nil)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println(version.String())
			return
		case "snapshot":
			layoutPath, dbPath, out := pathArgs(args[2:], "yard.png")
			term, entities, _, err := ui.LoadYardData(layoutPath, dbPath)
			if err != nil {
				fail(l, "snapshot", err)
			}
			if err := export.WriteSnapshotPNG(out, term, entities, export.SnapshotOptions{}); err != nil {
				fail(l, "snapshot", err)
			}
			fmt.Println("Wrote", out)
			return
		case "report":
			layoutPath, dbPath, out := pathArgs(args[2:], "yard.pdf")
			term, entities, reserved, err := ui.LoadYardData(layoutPath, dbPath)
			if err != nil {
				fail(l, "report", err)
			}
			if err := export.WriteReport(out, term, entities, reserved, export.ReportOptions{}); err != nil {
				fail(l, "report", err)
			}
			fmt.Println("Wrote", out)
			return
		case "run":
			if len(args) < 3 {
				fmt.Println("run requires <layout>")
				usage()
				os.Exit(2)
			}
			layoutPath := args[2]
			dbPath := ""
			if len(args) >= 4 {
				dbPath = args[3]
			}
			if err := ui.Run(layoutPath, dbPath); err != nil {
				l.Warn("ui unavailable, running headless", slog.Any("err", err))
				if err := runHeadless(layoutPath, dbPath); err != nil {
					fail(l, "run", err)
				}
			}
			return
		}
	}

	usage()
}

// pathArgs splits "<layout> [db] [out]" with a default output name. The last
// argument is treated as the output when it matches the default's extension.
func pathArgs(rest []string, defaultOut string) (layoutPath, dbPath, out string) {
	out = defaultOut
	if len(rest) == 0 {
		usage()
		os.Exit(2)
	}
	layoutPath = rest[0]
	switch len(rest) {
	case 1:
	case 2:
		if filepath.Ext(rest[1]) == filepath.Ext(defaultOut) {
			out = rest[1]
		} else {
			dbPath = rest[1]
		}
	default:
		dbPath = rest[1]
		out = rest[2]
	}
	return layoutPath, dbPath, out
}

// runHeadless drives the scene without a window: one camera settle cycle with
// logged poses. It exists so the build is exercisable without the fyne tag.
func runHeadless(layoutPath, dbPath string) error {
	l := applog.WithComponent("headless")
	cfg, _, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}

	eng := scene.NewEngine(scene.TunablesFrom(cfg.Camera))
	defer eng.Close()
	defer crash.Recover(eng.State())

	eng.State().SetLoading(true)
	term, entities, reserved, err := ui.LoadYardData(layoutPath, dbPath)
	if err != nil {
		return err
	}
	eng.Reload(term, entities)
	eng.State().SetReserved(reserved)
	eng.State().SetLoading(false)

	for i := 0; i < 120; i++ {
		eng.Step(16 * time.Millisecond)
	}
	pose := eng.CameraPose()
	l.Info("camera settled",
		slog.Float64("eye_x", float64(pose.Eye.X())),
		slog.Float64("eye_y", float64(pose.Eye.Y())),
		slog.Float64("eye_z", float64(pose.Eye.Z())),
	)
	fmt.Printf("Loaded %s: %d containers, %d blocks, %d reserved\n",
		term.ID, len(entities), len(term.Blocks), len(reserved))
	return nil
}

func fail(l *slog.Logger, op string, err error) {
	l.Error(op+" failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
