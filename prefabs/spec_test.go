package prefabs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/portalcore/portal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadTuningEmbedded(t *testing.T) {
	tuning, err := LoadTuning(TuningFile)
	require.NoError(t, err)
	require.Equal(t, 32.0, tuning.CellSize)
	require.Equal(t, SearchModeGrid, tuning.Portal.SearchMode)
	require.Equal(t, 2, tuning.Laser.MaxSegments)
	require.Equal(t, log.InfoLevel, tuning.LogLevel())

	exit := tuning.ExitTuning()
	require.Equal(t, tuning.Teleport.MinExitVelocityUp, exit.MinExitVelocityUp)
	require.Equal(t, tuning.Physics.Gravity, tuning.Gravity().Y)
}

func validTuning() Tuning {
	return Tuning{
		CellSize: 32,
		Portal:   PortalTuning{Length: 96, SearchMode: SearchModeGrid, MaxAimDistance: 500, SensorDepth: 8},
		Teleport: TeleportTuning{OffsetMargin: 1, MinExitVelocityUp: 3},
		Laser:    LaserTuning{MaxRange: 1000, DamagePerSecond: 10, MaxSegments: 2},
		Physics:  PhysicsTuning{FixedStep: 1.0 / 60, MaxStepsPerFrame: 5, Gravity: 900, Iterations: 20},
	}
}

func TestTuningValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tuning)
		target error
	}{
		{name: "valid", mutate: func(*Tuning) {}},
		{name: "free mode ignores tile parity", mutate: func(tu *Tuning) {
			tu.Portal.SearchMode = SearchModeFree
			tu.Portal.Length = 64
		}},
		{name: "even tile count", mutate: func(tu *Tuning) { tu.Portal.Length = 64 }, target: portal.ErrEvenTileCount},
		{name: "zero cell size", mutate: func(tu *Tuning) { tu.CellSize = 0 }, target: ErrInvalidTuning},
		{name: "unknown search mode", mutate: func(tu *Tuning) { tu.Portal.SearchMode = "snap" }, target: ErrInvalidTuning},
		{name: "three laser segments", mutate: func(tu *Tuning) { tu.Laser.MaxSegments = 3 }, target: ErrInvalidTuning},
		{name: "bad log level", mutate: func(tu *Tuning) { tu.Log.Level = "loud" }, target: ErrInvalidTuning},
		{name: "no iterations", mutate: func(tu *Tuning) { tu.Physics.Iterations = 0 }, target: ErrInvalidTuning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tu := validTuning()
			tt.mutate(&tu)
			err := tu.Validate()
			if tt.target == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestTuningValidateReportsAllFields(t *testing.T) {
	tu := validTuning()
	tu.CellSize = -1
	tu.Laser.MaxRange = 0
	err := tu.Validate()
	require.ErrorContains(t, err, "cell_size")
	require.ErrorContains(t, err, "laser.max_range")
}

func TestLoadEntityBuildSpec(t *testing.T) {
	spec, err := LoadEntityBuildSpec("prefabs/target_dummy.yaml")
	require.NoError(t, err)
	require.Equal(t, "target_dummy", spec.Name)
	require.Contains(t, spec.Components, "teleport_gate")

	health, err := DecodeComponentSpec[HealthComponentSpec](spec.Components["health"])
	require.NoError(t, err)
	require.Equal(t, 100.0, health.Max)

	caps, err := DecodeComponentSpec[CapabilitiesComponentSpec](spec.Components["capabilities"])
	require.NoError(t, err)
	require.Equal(t, CapabilitiesComponentSpec{"damageable"}, caps)
}

func TestLoadScriptPaths(t *testing.T) {
	for _, name := range []string{"laser_attack.tengo", "scripts/laser_attack.tengo", "prefabs/scripts/laser_attack.tengo"} {
		data, err := LoadScript(name)
		require.NoError(t, err, name)
		require.Contains(t, string(data), "update := func")
	}
}

func TestWatchedName(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{path: filepath.Join("prefabs", "tuning.yaml"), want: "tuning.yaml", ok: true},
		{path: filepath.Join("prefabs", "scripts", "laser_attack.tengo"), want: "scripts/laser_attack.tengo", ok: true},
		{path: filepath.Join("prefabs", "notes.txt")},
	}
	for _, tt := range tests {
		got, ok := watchedName(tt.path)
		require.Equal(t, tt.ok, ok, tt.path)
		require.Equal(t, tt.want, got, tt.path)
	}
}

func TestWatcherReportsChangedTuning(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tuning.yaml"), []byte("cell_size: 16\n"), 0o644))

	var changed []string
	require.Eventually(t, func() bool {
		changed = append(changed, w.Poll()...)
		return len(changed) > 0
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "tuning.yaml", changed[0])
}
