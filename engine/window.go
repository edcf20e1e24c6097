package engine

import (
	"fmt"

	"github.com/spaghettifunk/ember/engine/renderer"
	"github.com/spaghettifunk/ember/engine/scene"
)

// Window pairs an output surface with the scene currently shown in it. In
// headless mode there is no OS window behind it but scene ownership and the
// draw sequencing behave the same.
type Window struct {
	title  string
	width  uint32
	height uint32

	scene    *scene.Scene
	renderer *renderer.Renderer2D

	// Fired on every scene swap, before the new scene becomes current.
	sceneObservers []func(old, next *scene.Scene)
}

func NewWindow(title string, width, height uint32, r *renderer.Renderer2D) *Window {
	return &Window{
		title:    title,
		width:    width,
		height:   height,
		renderer: r,
	}
}

func (w *Window) Scene() *scene.Scene {
	return w.scene
}

// OnSetScene registers an observer invoked on every scene swap with the
// outgoing and incoming scenes. The outgoing scene may be nil on the first
// assignment.
func (w *Window) OnSetScene(fn func(old, next *scene.Scene)) {
	w.sceneObservers = append(w.sceneObservers, fn)
}

// SetScene makes the given scene current. Observers run before the swap so
// they still see the outgoing scene through the window.
func (w *Window) SetScene(s *scene.Scene) error {
	if s == nil {
		return fmt.Errorf("cannot set a nil scene on window %q", w.title)
	}
	old := w.scene
	for _, fn := range w.sceneObservers {
		fn(old, s)
	}
	w.scene = s
	return nil
}

func (w *Window) Update(deltaTime float64) {
	if w.scene != nil {
		w.scene.Update(deltaTime)
	}
}

func (w *Window) FixedUpdate(deltaTime float64) {
	if w.scene != nil {
		w.scene.FixedUpdate(deltaTime)
	}
}

func (w *Window) EditorUpdate(deltaTime float64) {
	if w.scene != nil {
		w.scene.EditorUpdate(deltaTime)
	}
}

// Draw records the frame for the current scene. EndDraw presents it.
func (w *Window) Draw() {
	if w.renderer == nil {
		return
	}
	w.renderer.Clear()
	if w.scene != nil {
		w.renderer.DrawScene(w.scene)
	}
	w.renderer.BeginUIFrame()
}

func (w *Window) EndDraw() {
	if w.renderer == nil {
		return
	}
	w.renderer.Present()
}

func (w *Window) OnResize(width, height uint32) {
	w.width = width
	w.height = height
	if w.renderer != nil {
		w.renderer.OnResize(width, height)
	}
}

func (w *Window) Size() (uint32, uint32) {
	return w.width, w.height
}
