package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Application codes live beyond the reserved system range.
const (
	testEventCodeAlpha EventCode = 0x100 + iota
	testEventCodeBeta
	testEventCodeGamma
)

func TestEventFireInvokesListenersInOrder(t *testing.T) {
	require.True(t, EventSystemInitialize())

	var order []string
	EventRegister(testEventCodeAlpha, func(EventContext) { order = append(order, "first") })
	EventRegister(testEventCodeAlpha, func(EventContext) { order = append(order, "second") })

	assert.True(t, EventFire(EventContext{Type: testEventCodeAlpha}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventFireWithoutListeners(t *testing.T) {
	require.True(t, EventSystemInitialize())

	assert.False(t, EventFire(EventContext{Type: testEventCodeBeta}))
}

func TestEventPostDeliveredByProcessEvents(t *testing.T) {
	require.True(t, EventSystemInitialize())

	var received []int
	EventRegister(testEventCodeGamma, func(ctx EventContext) {
		received = append(received, ctx.Data.(int))
	})

	// Posts from other goroutines must not run listeners until the frame
	// thread drains them.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		EventPost(EventContext{Type: testEventCodeGamma, Data: 1})
		EventPost(EventContext{Type: testEventCodeGamma, Data: 2})
	}()
	wg.Wait()

	assert.Empty(t, received)
	ProcessEvents()
	assert.Equal(t, []int{1, 2}, received)

	// Drained queue stays drained.
	ProcessEvents()
	assert.Equal(t, []int{1, 2}, received)
}
