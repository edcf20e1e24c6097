package systems

import (
	"github.com/spaghettifunk/ember/engine/audio"
	"github.com/spaghettifunk/ember/engine/nav"
	"github.com/spaghettifunk/ember/engine/physics"
	"github.com/spaghettifunk/ember/engine/renderer"
)

// SystemManager owns the fixed engine services and brings them up in
// dependency order. Gameplay subsystems discovered from the game assembly
// live elsewhere; these never change while the engine runs.
type SystemManager struct {
	jobSystem *JobSystem
	audio     *audio.Manager
	physics   *physics.Manager
	nav       *nav.Manager
	renderer  *renderer.Renderer2D
}

func NewSystemManager(width, height uint32) (*SystemManager, error) {
	js, err := NewJobSystem(2, 64)
	if err != nil {
		return nil, err
	}

	am := audio.NewManager()
	if err := am.Initialize(); err != nil {
		return nil, err
	}

	pm := physics.NewManager()
	if err := pm.Init(); err != nil {
		return nil, err
	}

	nm := nav.NewManager()
	if err := nm.Initialize(); err != nil {
		return nil, err
	}

	r2d := renderer.NewRenderer2D()
	if err := r2d.Init(width, height); err != nil {
		return nil, err
	}

	return &SystemManager{
		jobSystem: js,
		audio:     am,
		physics:   pm,
		nav:       nm,
		renderer:  r2d,
	}, nil
}

func (sm *SystemManager) Jobs() *JobSystem { return sm.jobSystem }

func (sm *SystemManager) Audio() *audio.Manager { return sm.audio }

func (sm *SystemManager) Physics() *physics.Manager { return sm.physics }

func (sm *SystemManager) Nav() *nav.Manager { return sm.nav }

func (sm *SystemManager) Renderer() *renderer.Renderer2D { return sm.renderer }

// Update runs the per-frame maintenance of every fixed service. Must be
// called from the frame thread.
func (sm *SystemManager) Update(deltaTime float64) {
	sm.jobSystem.Update()
	sm.audio.Update(deltaTime)
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.renderer.Shutdown(); err != nil {
		return err
	}
	if err := sm.nav.Shutdown(); err != nil {
		return err
	}
	if err := sm.physics.Shutdown(); err != nil {
		return err
	}
	if err := sm.audio.Shutdown(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
