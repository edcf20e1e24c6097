package engine

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine/assets"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/filesystem"
	"github.com/spaghettifunk/ember/engine/modules"
	"github.com/spaghettifunk/ember/engine/platform"
	"github.com/spaghettifunk/ember/engine/resources"
	"github.com/spaghettifunk/ember/engine/scene"
	"github.com/spaghettifunk/ember/engine/scripting"
	"github.com/spaghettifunk/ember/engine/systems"
)

const (
	// A queued scene switch that cannot resolve logs a warning after this
	// many frames and is dropped after sceneRetryMaxFrames.
	sceneRetryWarnFrames = 30
	sceneRetryMaxFrames  = 900
)

type Engine struct {
	config *ApplicationConfig

	state     GameState
	isRunning bool

	isSuspended bool

	platform *platform.Platform
	window   *Window

	fileSystem    *filesystem.FileSystem
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	host          *scripting.Host
	registry      *SubsystemRegistry
	modules       *modules.Registry

	timestep *core.Timestep
	clock    *core.Clock

	project *resources.Project

	// Pending scene switch, empty when none. Resolved at the top of each
	// tick while playing.
	queuedScenePath   string
	queuedSceneFrames int
	queuedSceneWarned bool
}

func New(config *ApplicationConfig) (*Engine, error) {
	core.LogSetLevel(config.LogLevel)

	fs := filesystem.New()
	host := scripting.NewHost(fs)

	am, err := assets.NewAssetManager(host)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	sm, err := systems.NewSystemManager(config.StartWidth, config.StartHeight)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	rate := config.FixedTimestepRate
	if rate <= 0 {
		rate = core.DefaultFixedRate
	}

	e := &Engine{
		config:        config,
		state:         GameStateStopped,
		isRunning:     true,
		fileSystem:    fs,
		assetManager:  am,
		systemManager: sm,
		host:          host,
		registry:      NewSubsystemRegistry(),
		modules:       modules.NewRegistry(),
		timestep:      core.NewTimestep(rate),
		clock:         core.NewClock(),
		window:        NewWindow(config.Name, config.StartWidth, config.StartHeight, sm.Renderer()),
	}
	if !config.Headless {
		e.platform = platform.New()
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if e.platform != nil {
		if err := e.platform.Startup(e.config.Name,
			e.config.StartPosX,
			e.config.StartPosY,
			e.config.StartWidth,
			e.config.StartHeight); err != nil {
			return err
		}
	}

	scene.RegisterCoreComponents()

	e.window.OnSetScene(e.onWindowSetScene)
	e.host.OnGameAssemblyLoaded(e.onGameAssemblyLoaded)

	if err := e.host.Initialize(); err != nil {
		return err
	}

	if err := e.InitializeCoreSubsystems(); err != nil {
		return err
	}

	return e.modules.StartupModules()
}

// RegisterModule adds an extension with startup/shutdown hooks. Must be
// called before Initialize.
func (e *Engine) RegisterModule(m modules.Module) error {
	return e.modules.Register(m)
}

// InitializeCoreSubsystems is an extension point for engine-internal
// subsystems that must come up between the fixed services and the game
// modules. Nothing lives here yet.
func (e *Engine) InitializeCoreSubsystems() error {
	return nil
}

// LoadProject loads a project file, points the virtual filesystem at the
// project directory, loads the game assembly and makes the default scene
// current.
func (e *Engine) LoadProject(path string) error {
	project, err := resources.LoadProject(path)
	if err != nil {
		return err
	}
	e.project = project
	e.fileSystem.SetRootDirectory(filesystem.GetParentPath(project.FullPath))

	if err := e.host.LoadProjectAssembly(project); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(e.fileSystem.RootDirectory()); err != nil {
		return err
	}

	s, err := e.loadScene(project.DefaultScene)
	if err != nil {
		return err
	}
	if err := e.window.SetScene(s); err != nil {
		return err
	}

	core.LogInfo("Project %s loaded", project.Name)
	return nil
}

func (e *Engine) loadScene(path string) (*scene.Scene, error) {
	content, err := e.fileSystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	s := scene.New(e.fileSystem)
	s.Path = path
	if err := s.Deserialize(content); err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return s, nil
}

func (e *Engine) State() GameState {
	return e.state
}

func (e *Engine) Window() *Window {
	return e.window
}

func (e *Engine) Timestep() *core.Timestep {
	return e.timestep
}

func (e *Engine) Systems() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) ScriptHost() *scripting.Host {
	return e.host
}

// EnterPlayMode starts the simulation for the current scene. Re-entry while
// already playing or loading is a logged no-op. A scene that fails to
// initialize leaves the engine stopped with everything torn back down.
func (e *Engine) EnterPlayMode() {
	if e.state != GameStateStopped {
		core.LogWarn("cannot enter play mode from state %s", e.state)
		return
	}

	s := e.window.Scene()
	if s == nil {
		core.LogWarn("cannot enter play mode without a scene")
		return
	}

	e.state = GameStateLoading
	e.timestep.Reset()

	// Fresh script state for every play session. The assembly-loaded
	// observers rebuild the subsystem registry while we are loading.
	if e.project != nil {
		if err := e.host.LoadProjectAssembly(e.project); err != nil {
			core.LogError("enter play mode: %s", err)
			e.state = GameStateStopped
			return
		}
	}

	if err := e.preparePlaySystems(s); err != nil {
		core.LogError("enter play mode: %s", err)
		e.state = GameStateStopped
		return
	}

	if err := s.OnInit(); err != nil {
		core.LogError("scene %s failed to initialize, leaving play mode: %s", s.Name, err)
		s.OnExit()
		e.state = GameStateStopped
		return
	}

	core.InputHideMouse()
	e.state = GameStatePlaying
	core.LogInfo("Entered play mode with scene %s", s.Name)
}

func (e *Engine) preparePlaySystems(s *scene.Scene) error {
	if err := e.systemManager.Physics().ReInit(); err != nil {
		return err
	}
	if err := e.systemManager.Physics().PopulateFromScene(s); err != nil {
		return err
	}
	return e.systemManager.Nav().RebuildFromScene(s)
}

// ExitPlayMode stops the simulation. Idempotent; calling it while already
// stopped does nothing.
func (e *Engine) ExitPlayMode() {
	if e.state == GameStateStopped {
		return
	}

	if s := e.window.Scene(); s != nil {
		s.OnExit()
	}
	e.dropQueuedSceneSwitch()
	e.systemManager.Audio().StopAll()
	core.InputShowMouse()
	e.state = GameStateStopped
	core.LogInfo("Exited play mode")
}

// QueueSceneSwitch schedules a switch to the scene at the given path. Only
// honored while playing; returns whether the request was accepted. The
// switch resolves on a later tick, retrying while the file is missing.
func (e *Engine) QueueSceneSwitch(path string) bool {
	if e.state != GameStatePlaying {
		core.LogWarn("scene switch to %s ignored outside play mode", path)
		return false
	}
	e.queuedScenePath = path
	e.queuedSceneFrames = 0
	e.queuedSceneWarned = false
	return true
}

func (e *Engine) dropQueuedSceneSwitch() {
	e.queuedScenePath = ""
	e.queuedSceneFrames = 0
	e.queuedSceneWarned = false
}

func (e *Engine) processQueuedSceneSwitch() {
	if e.queuedScenePath == "" || e.state != GameStatePlaying {
		return
	}

	if !e.fileSystem.FileExists(e.queuedScenePath) {
		e.queuedSceneFrames++
		if !e.queuedSceneWarned && e.queuedSceneFrames >= sceneRetryWarnFrames {
			core.LogWarn("queued scene %s not found yet, still retrying", e.queuedScenePath)
			e.queuedSceneWarned = true
		}
		if e.queuedSceneFrames >= sceneRetryMaxFrames {
			core.LogError("queued scene %s never appeared, dropping switch", e.queuedScenePath)
			e.dropQueuedSceneSwitch()
		}
		return
	}

	path := e.queuedScenePath
	e.dropQueuedSceneSwitch()

	next, err := e.loadScene(path)
	if err != nil {
		core.LogError("queued scene switch: %s", err)
		return
	}

	old := e.window.Scene()
	if err := e.window.SetScene(next); err != nil {
		core.LogError("queued scene switch: %s", err)
		return
	}
	if old != nil {
		old.OnExit()
	}

	if err := e.preparePlaySystems(next); err != nil {
		core.LogError("queued scene switch: %s", err)
		e.ExitPlayMode()
		return
	}
	if err := next.OnInit(); err != nil {
		core.LogError("scene %s failed to initialize after switch: %s", next.Name, err)
		next.OnExit()
		e.ExitPlayMode()
		return
	}
	core.LogInfo("Switched to scene %s", next.Name)
}

// Tick advances the engine by one frame. Everything in here runs on the
// frame thread; cross-thread work arrives only through the queues drained
// at the top.
func (e *Engine) Tick() {
	core.ProcessEvents()
	e.host.ProcessPending()

	e.timestep.Update()
	delta := e.timestep.Delta()
	scaled := e.timestep.ScaledDelta()

	e.processQueuedSceneSwitch()

	if e.state == GameStatePlaying {
		for _, ss := range e.registry.Ordered() {
			if ss.CanEverTick() {
				ss.Tick(scaled)
			}
		}
		e.window.Update(scaled)
	} else {
		e.window.EditorUpdate(delta)
	}

	for {
		dt, ok := e.timestep.ConsumeFixedTick()
		if !ok {
			break
		}
		if e.state == GameStatePlaying {
			e.window.FixedUpdate(dt)
			e.systemManager.Physics().Step(dt)
		}
	}

	e.systemManager.Update(scaled)

	core.MetricsUpdate(delta)
	core.InputUpdate(delta)
}

func (e *Engine) Draw() {
	e.window.Draw()
}

func (e *Engine) EndDraw() {
	e.window.EndDraw()
}

func (e *Engine) Run() error {
	e.clock.Start()
	e.timestep.Reset()

	for e.isRunning {
		if e.platform != nil && !e.platform.PumpMessages() {
			e.isRunning = false
		}

		if e.isSuspended {
			continue
		}

		e.Tick()
		e.Draw()
		e.EndDraw()
	}

	return e.Shutdown()
}

// Close requests a clean exit of the main loop.
func (e *Engine) Close() {
	e.isRunning = false
}

func (e *Engine) Shutdown() error {
	if e.state != GameStateStopped {
		e.ExitPlayMode()
	}
	e.modules.ShutdownModules()
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			return err
		}
	}
	return nil
}

// GetScriptedSubsystem returns the named subsystem, nil when absent.
func (e *Engine) GetScriptedSubsystem(name string) *ScriptedSubsystem {
	return e.registry.ByName(name)
}

// GetScriptedSubsystemByID returns the subsystem with the given ID, nil
// when out of range.
func (e *Engine) GetScriptedSubsystemByID(id int) *ScriptedSubsystem {
	return e.registry.ByIndex(id)
}

// onGameAssemblyLoaded rebuilds the subsystem registry from the freshly
// loaded assembly. Outside play or loading the reload is deferred until the
// next time play mode starts, so the rebuild is simply skipped here.
func (e *Engine) onGameAssemblyLoaded() {
	if e.state != GameStatePlaying && e.state != GameStateLoading {
		core.LogDebug("assembly loaded while %s, deferring subsystem scan", e.state)
		return
	}
	e.rebuildSubsystems()
}

func (e *Engine) rebuildSubsystems() {
	assembly := e.host.GameAssembly()
	if assembly == nil {
		return
	}
	base := assembly.Type(scripting.BaseSubsystemTypeName)
	if base == nil {
		core.LogWarn("game assembly has no %s base type", scripting.BaseSubsystemTypeName)
		return
	}

	e.registry.Reset()
	for _, t := range assembly.Types() {
		if !t.IsSubclassOf(base) {
			continue
		}
		instance, err := t.CreateInstance()
		if err != nil {
			core.LogError("subsystem %s: %s", t.FullName(), err)
			continue
		}
		ss := NewScriptedSubsystem(t.FullName(), instance)
		id := e.registry.Add(ss)
		if err := instance.SetPropertyValue("id", id); err != nil {
			core.LogError("subsystem %s: %s", t.FullName(), err)
		}
		if err := ss.Initialize(); err != nil {
			core.LogError("subsystem %s failed to initialize: %s", t.FullName(), err)
		}
	}
	core.LogInfo("Registered %d engine subsystems", e.registry.Len())
}

// onWindowSetScene fans the scene lifecycle out to the subsystems: the
// outgoing scene gets its pre-destroy notification before the swap, and the
// incoming scene's initialize hooks are forwarded once it initializes.
func (e *Engine) onWindowSetScene(old, next *scene.Scene) {
	if old != nil {
		for _, ss := range e.registry.Ordered() {
			ss.OnScenePreDestroy(old)
		}
	}
	next.OnPreInitialize(func(s *scene.Scene) {
		for _, ss := range e.registry.Ordered() {
			ss.OnScenePreInitialize(s)
		}
	})
	next.OnPostInitialize(func(s *scene.Scene) {
		for _, ss := range e.registry.Ordered() {
			ss.OnScenePostInitialize(s)
		}
	})
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	width, height := se.WindowWidth, se.WindowHeight

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.window.OnResize(width, height)
}
