package main

import (
	"log"
	"os"

	"chosenoffset.com/lumen/internal/audio"
	ebitenaudio "chosenoffset.com/lumen/internal/audio/ebiten"
	"chosenoffset.com/lumen/internal/config"
	"chosenoffset.com/lumen/internal/dialogue"
	"chosenoffset.com/lumen/internal/fx"
	"chosenoffset.com/lumen/internal/game"
	"chosenoffset.com/lumen/internal/level"
	ebitenrender "chosenoffset.com/lumen/internal/render/ebiten"
	"chosenoffset.com/lumen/shaders"
)

func main() {
	configPath := os.Getenv(config.EnvConfig)
	if configPath == "" {
		configPath = "lumen.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	levelsDir := cfg.LevelsDir()
	log.Printf("Loading levels from %s...", levelsDir)
	levels, err := level.LoadDir(levelsDir, cfg.Grid.CellSize)
	if err != nil {
		log.Fatalf("Failed to load levels: %v", err)
	}

	var sink audio.Sink = audio.LogSink{}
	if cfg.Audio.Enabled {
		sink = ebitenaudio.NewToneSink()
	}

	talk := dialogue.NewManager()
	talk.CharsPerSecond = cfg.Timing.TextSpeed
	bursts := fx.NewBursts(0.5)

	manager := level.NewManager(levels, level.Deps{
		Audio:    sink,
		FX:       bursts,
		Dialogue: talk,
		Block:    cfg.BlockConfig(),
		Actor:    cfg.ActorConfig(),
		Light:    cfg.LightConfig(),
	})

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	g := game.NewGame(game.Options{
		Renderer:          renderer,
		Input:             inputMgr,
		Levels:            manager,
		Dialogue:          talk,
		Bursts:            bursts,
		Audio:             sink,
		ScreenWidth:       cfg.Window.Width,
		ScreenHeight:      cfg.Window.Height,
		LightingShaderSrc: shaders.Lighting,
	})
	if err := g.Start(cfg.StartLevel()); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	// Set up the window
	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title)
	engine.SetWindowResizable(cfg.Window.Resizable)

	log.Println("Starting game...")
	if err := engine.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
