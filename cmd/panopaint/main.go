// Command panopaint is the interactive panorama painting editor.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/panopaint/internal/config"
	"github.com/phanxgames/panopaint/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	projectPath := flag.String("project", "", "project file to open")
	exportRange := flag.String("export", "", "export frame range (e.g. 0:24) and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting panopaint",
		zap.Int("canvas_w", cfg.Canvas.Width),
		zap.Int("canvas_h", cfg.Canvas.Height))

	ed := newEditor(cfg, *projectPath)

	if *exportRange != "" {
		if err := ed.exportAndExit(*exportRange); err != nil {
			logger.Error("export failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle("Panopaint")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)

	if err := ebiten.RunGame(ed); err != nil {
		logger.Error("editor exited with error", zap.Error(err))
		os.Exit(1)
	}
}
