package scene

import "sync"

type BootPhase string

const (
	BootInit         BootPhase = "init"
	BootBooting      BootPhase = "booting"
	BootEasterEgg    BootPhase = "easter-egg"
	BootMenu         BootPhase = "menu"
	BootLoadingScene BootPhase = "loading-scene"
	BootComplete     BootPhase = "complete"
)

// Boot tracks the intro sequence shown before the scene takes over
type Boot struct {
	mu         sync.RWMutex
	phase      BootPhase
	sceneReady bool
	completed  bool
}

func NewBoot() *Boot {
	return &Boot{phase: BootInit}
}

func (b *Boot) Phase() BootPhase {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.phase
}

func (b *Boot) SetPhase(p BootPhase) {
	b.mu.Lock()
	b.phase = p
	b.mu.Unlock()
}

func (b *Boot) SceneReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sceneReady
}

func (b *Boot) MarkSceneReady() {
	b.mu.Lock()
	b.sceneReady = true
	b.mu.Unlock()
}

func (b *Boot) Completed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.completed
}

func (b *Boot) CompleteBootSequence() {
	b.mu.Lock()
	b.completed = true
	b.phase = BootComplete
	b.mu.Unlock()
}

func (b *Boot) Reset() {
	b.mu.Lock()
	b.phase = BootInit
	b.sceneReady = false
	b.completed = false
	b.mu.Unlock()
}
