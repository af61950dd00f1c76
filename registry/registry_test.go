package registry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/easing_ive_go/easing"
	"github.com/on-the-ground/easing_ive_go/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearDef(name string) easing.Definition {
	return easing.Definition{
		Name: name,
		Logic: easing.Construct0(func() (easing.Easing, error) {
			return easing.EaseFunc(func(p float64) float64 { return p }), nil
		}),
	}
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New()
	require.NoError(t, err)
	return reg
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := newRegistry(t)

	_, ok := reg.Lookup("spring")
	assert.False(t, ok)

	pending, err := reg.Register(linearDef("spring"))
	require.NoError(t, err)
	assert.Empty(t, pending)

	def, ok := reg.Lookup("spring")
	require.True(t, ok)
	assert.Equal(t, "spring", def.Name)
	assert.Equal(t, []string{"spring"}, reg.Names())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RejectsRedefinition(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.Register(linearDef("spring"))
	require.NoError(t, err)

	_, err = reg.Register(linearDef("spring"))
	assert.ErrorIs(t, err, easing.ErrAlreadyDefined)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.Register(linearDef("ease-in"))
	assert.ErrorIs(t, err, easing.ErrValidationRejected)
	assert.ErrorIs(t, err, easing.ErrReservedName)

	_, ok := reg.Lookup("ease-in")
	assert.False(t, ok)
}

func TestRegistry_DefinitionsAreImmutable(t *testing.T) {
	reg := newRegistry(t)
	def := easing.Definition{
		Name: "fade",
		Params: []easing.Param{
			{Name: "until", Kind: easing.KindPercentage, Default: easing.Float(0.5), Min: easing.Float(0.01), Max: easing.Float(1)},
		},
		Logic: easing.Construct1(func(until float64) (easing.Easing, error) {
			return easing.EaseFunc(func(p float64) float64 { return p / until }), nil
		}),
	}
	_, err := reg.Register(def)
	require.NoError(t, err)

	*def.Params[0].Default = 0.9
	*def.Params[0].Min = 0.5
	def.Params[0].Max = nil

	got, ok := reg.Lookup("fade")
	require.True(t, ok)
	assert.Equal(t, 0.5, *got.Params[0].Default)
	assert.Equal(t, 0.01, *got.Params[0].Min)
	require.NotNil(t, got.Params[0].Max)

	*got.Params[0].Default = 0.2
	again, _ := reg.Lookup("fade")
	assert.Equal(t, 0.5, *again.Params[0].Default)
}

func TestRegistry_TrackDrainsOnRegister(t *testing.T) {
	reg := newRegistry(t)

	assert.True(t, reg.Track("spring", "style-a", easing.Tokens("1")))
	assert.True(t, reg.Track("spring", "style-a", easing.Tokens("2")))
	assert.True(t, reg.Track("spring", "style-b", nil))
	assert.True(t, reg.Track("bounce", "style-c", nil))

	pending := reg.Pending("spring")
	require.Len(t, pending, 2)

	drained, err := reg.Register(linearDef("spring"))
	require.NoError(t, err)
	require.Len(t, drained, 2)

	byConsumer := map[easing.ConsumerHandle]registry.Pending{}
	for _, p := range drained {
		byConsumer[p.Consumer] = p
	}
	assert.Equal(t, 2, byConsumer["style-a"].Requests)
	assert.Equal(t, "(1)", byConsumer["style-a"].ArgsKey)
	assert.Equal(t, 1, byConsumer["style-b"].Requests)

	assert.Empty(t, reg.Pending("spring"))
	assert.Len(t, reg.Pending("bounce"), 1)
}

func TestRegistry_TrackIgnoresDefinedNames(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.Register(linearDef("spring"))
	require.NoError(t, err)

	assert.False(t, reg.Track("spring", "style-a", nil))
	assert.Empty(t, reg.Pending("spring"))
}

func TestRegistry_WaitDefined(t *testing.T) {
	reg := newRegistry(t)

	done := make(chan error, 1)
	go func() {
		done <- reg.WaitDefined(context.Background(), "late")
	}()

	time.Sleep(20 * time.Millisecond)
	_, err := reg.Register(linearDef("late"))
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for definition")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, reg.WaitDefined(ctx, "never"), context.DeadlineExceeded)
}

func TestRegistry_ConcurrentReadersSingleWinner(t *testing.T) {
	reg := newRegistry(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := reg.Register(linearDef("race")); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Lookup("race")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}
