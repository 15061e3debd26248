package loom

import (
	"time"

	"github.com/danpasecinic/loom/internal/container"
	"github.com/danpasecinic/loom/internal/keys"
)

// ResolveObserver fires after every resolution attempt.
type ResolveObserver func(key string, duration time.Duration, err error)

// ProvideObserver fires when a provider is registered.
type ProvideObserver func(key string)

// StartObserver fires after each provider's eager construction during
// Start.
type StartObserver func(key string, duration time.Duration, err error)

// StopObserver fires after each provider's teardown during Stop.
type StopObserver func(key string, duration time.Duration, err error)

func adaptResolveObservers(hooks []ResolveObserver) []container.ResolveObserver {
	out := make([]container.ResolveObserver, len(hooks))
	for i, hook := range hooks {
		out[i] = func(key keys.Key, duration time.Duration, err error) {
			hook(key.String(), duration, err)
		}
	}
	return out
}

func adaptProvideObservers(hooks []ProvideObserver) []container.ProvideObserver {
	out := make([]container.ProvideObserver, len(hooks))
	for i, hook := range hooks {
		out[i] = func(key keys.Key) {
			hook(key.String())
		}
	}
	return out
}

func adaptStartObservers(hooks []StartObserver) []container.StartObserver {
	out := make([]container.StartObserver, len(hooks))
	for i, hook := range hooks {
		out[i] = func(key keys.Key, duration time.Duration, err error) {
			hook(key.String(), duration, err)
		}
	}
	return out
}

func adaptStopObservers(hooks []StopObserver) []container.StopObserver {
	out := make([]container.StopObserver, len(hooks))
	for i, hook := range hooks {
		out[i] = func(key keys.Key, duration time.Duration, err error) {
			hook(key.String(), duration, err)
		}
	}
	return out
}
