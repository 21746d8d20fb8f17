package model

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/services"
)

// Model is a pretrained speech enhancement model. Process consumes a clip at
// the model's native sample rate and channel count and returns an enhanced
// clip of the same shape.
type Model interface {
	Name() string
	SampleRate() int
	Channels() int
	Process(clip audio.Clip) (audio.Clip, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Model)
)

// Register makes a model constructor available under name. It panics on
// duplicate registration; registration happens at init time.
func Register(name string, factory func() Model) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("model: duplicate registration for %q", name))
	}
	registry[name] = factory
}

// Get returns a fresh instance of the named model.
func Get(name string) (Model, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "model", "get",
			fmt.Sprintf("unknown model %q (available: %v)", name, Names()), nil)
	}
	return factory(), nil
}

// Names lists the registered model names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkShape(m Model, clip audio.Clip) error {
	if clip.Rate != m.SampleRate() {
		return fmt.Errorf("%s: clip rate %d, model expects %d", m.Name(), clip.Rate, m.SampleRate())
	}
	if clip.ChannelCount() != m.Channels() {
		return fmt.Errorf("%s: clip has %d channels, model expects %d", m.Name(), clip.ChannelCount(), m.Channels())
	}
	return nil
}
