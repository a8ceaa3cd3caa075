package main

import (
	"flag"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/portalcore/levels"
	"github.com/milk9111/portalcore/prefabs"
	log "github.com/sirupsen/logrus"
)

func main() {
	debug := flag.Bool("debug", false, "draw physics shapes and gate states")
	levelName := flag.String("level", "chamber01", "level name in levels/ (basename, .json optional)")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	tuning, err := prefabs.LoadTuning(prefabs.TuningFile)
	if err != nil {
		log.WithError(err).Fatal("load tuning")
	}
	log.SetLevel(tuning.LogLevel())

	name := *levelName
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	lvl, err := levels.LoadLevelFromFS(name)
	if err != nil {
		log.WithError(err).WithField("level", name).Fatal("load level")
	}

	sim, err := NewSimulation(tuning, lvl)
	if err != nil {
		log.WithError(err).Fatal("build simulation")
	}

	game := NewGame(sim, *debug)
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(sim.Grid.Width()*int(sim.Grid.CellSize()), sim.Grid.Height()*int(sim.Grid.CellSize()))
	ebiten.SetWindowTitle("portalcore")

	if err := ebiten.RunGame(game); err != nil {
		log.WithError(err).Fatal("run game")
	}
}
