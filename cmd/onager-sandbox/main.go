package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/onager2d/config"
	"github.com/milk9111/onager2d/scene"
)

func main() {
	configPath := flag.String("config", "", "physics settings file (YAML); watched for changes")
	scenePath := flag.String("scene", "", "scene file (YAML); the built-in scene is used when empty")
	debug := flag.Bool("debug", false, "enable physics debug logging")
	flag.Parse()

	settings := config.Default()
	var watcher *config.Watcher
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		settings = s

		watcher, err = config.NewWatcher(*configPath)
		if err != nil {
			log.Printf("config: hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}
	if *debug {
		settings.Physics.Debug = true
	}

	sc := scene.Default()
	if *scenePath != "" {
		s, err := scene.Load(*scenePath)
		if err != nil {
			log.Fatal(err)
		}
		sc = s
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("onager2d sandbox")

	game, err := NewGame(settings, sc, watcher)
	if err != nil {
		log.Fatal(err)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
