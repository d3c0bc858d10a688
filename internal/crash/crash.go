/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns an unhandled panic into a report file with the viewer
// state attached, so a field incident is diagnosable after the fact.
package crash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "yardview/internal/log"
	"yardview/internal/store"
	"yardview/internal/telemetry"
	"yardview/internal/version"
)

// exitFn allows testing Recover without terminating the test process.
var exitFn = os.Exit

// Recover captures a panic, logs it with a stacktrace, writes a report file
// including a dump of the viewer state, and exits non-zero.
//
// Usage: defer crash.Recover(st)
func Recover(st *store.Store) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(st, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}

		fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
		fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
		exitFn(2)
	}
}

// ReportDir returns the directory crash reports are written to.
func ReportDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "yardview", "crashes")
	}
	return os.TempDir()
}

func writeReport(st *store.Store, panicVal any, stack []byte) (string, error) {
	dir := ReportDir()
	_ = os.MkdirAll(dir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Yardview Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if st != nil {
		buf.WriteString("\nState:\n")
		buf.Write(dumpState(st))
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}

	// Optional anonymized upload, opt-in via env.
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

// dumpState serializes the selection-relevant state. Entity contents stay
// out of the report; only counts are included.
func dumpState(st *store.Store) []byte {
	snap := st.Snapshot()
	dump := map[string]any{
		"selected_container": snap.SelectedContainerID,
		"selected_block":     snap.SelectedBlockID,
		"hovered":            snap.HoveredID,
		"active_panel":       string(snap.ActivePanel),
		"reserved_count":     len(snap.Reserved),
		"loading":            snap.Loading,
		"dragging":           snap.Dragging,
		"entity_count":       len(st.Entities()),
		"terminal":           st.Terminal().ID,
	}
	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return []byte(fmt.Sprintf("{\"error\": %q}", err.Error()))
	}
	return b
}
