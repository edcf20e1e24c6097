package audio

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/math"
)

const maxVoices = 32

var ErrNoFreeVoice = fmt.Errorf("no free audio voice")

// Voice is one playing sound instance in the pool.
type Voice struct {
	ID      uint32
	Clip    string
	Volume  float32
	Looping bool
	elapsed float64
	active  bool
}

// Manager mixes nothing itself (DSP lives behind the platform); it tracks the
// voice pool and master volume and ticks voice lifetimes once per frame.
type Manager struct {
	mu           sync.Mutex
	voices       [maxVoices]Voice
	masterVolume float32
	initialized  bool
}

func NewManager() *Manager {
	return &Manager{masterVolume: 1.0}
}

func (m *Manager) Initialize() error {
	if m.initialized {
		return nil
	}
	m.initialized = true
	core.LogInfo("Audio manager initialized")
	return nil
}

// Play acquires a free voice for the clip. Returns the voice ID.
func (m *Manager) Play(clip string, volume float32, looping bool) (uint32, error) {
	if !m.initialized {
		return 0, fmt.Errorf("audio manager is not initialized")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		if m.voices[i].active {
			continue
		}
		m.voices[i] = Voice{
			ID:      uint32(i),
			Clip:    clip,
			Volume:  math.Clamp(volume, 0, 1),
			Looping: looping,
			active:  true,
		}
		return uint32(i), nil
	}
	return 0, ErrNoFreeVoice
}

func (m *Manager) Stop(voiceID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if voiceID < maxVoices {
		m.voices[voiceID].active = false
	}
}

func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		m.voices[i].active = false
	}
}

func (m *Manager) ActiveVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.voices {
		if m.voices[i].active {
			n++
		}
	}
	return n
}

func (m *Manager) SetMasterVolume(volume float32) {
	m.masterVolume = math.Clamp(volume, 0, 1)
}

func (m *Manager) MasterVolume() float32 {
	return m.masterVolume
}

// Update advances voice lifetimes. Called once per frame at the end of the
// tick, after the scene has had its chance to start/stop sounds.
func (m *Manager) Update(deltaTime float64) {
	if !m.initialized {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.voices {
		if !m.voices[i].active {
			continue
		}
		m.voices[i].elapsed += deltaTime
	}
}

func (m *Manager) Shutdown() error {
	m.StopAll()
	m.initialized = false
	return nil
}
