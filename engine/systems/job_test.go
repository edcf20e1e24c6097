package systems

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSystemRunsCallbacksOnUpdate(t *testing.T) {
	js, err := NewJobSystem(2, 8)
	require.NoError(t, err)
	defer js.Shutdown()

	done := make(chan struct{})
	var result interface{}

	js.Submit(JobTask{
		Name: "sum",
		OnStart: func(interface{}) (interface{}, error) {
			return 42, nil
		},
		OnComplete: func(r interface{}) {
			result = r
			close(done)
		},
	})

	// The callback only runs when Update drains the result queue.
	deadline := time.After(2 * time.Second)
	for {
		js.Update()
		select {
		case <-done:
			assert.Equal(t, 42, result)
			return
		case <-deadline:
			t.Fatal("completion callback never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestJobSystemFailureCallback(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	done := make(chan struct{})
	var failure error

	js.Submit(JobTask{
		Name: "broken",
		OnStart: func(interface{}) (interface{}, error) {
			return nil, errors.New("disk on fire")
		},
		OnFailure: func(err error) {
			failure = err
			close(done)
		},
	})

	deadline := time.After(2 * time.Second)
	for {
		js.Update()
		select {
		case <-done:
			assert.ErrorContains(t, failure, "disk on fire")
			return
		case <-deadline:
			t.Fatal("failure callback never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestJobSystemRecoversPanics(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	done := make(chan struct{})
	js.Submit(JobTask{
		Name: "explosive",
		OnStart: func(interface{}) (interface{}, error) {
			panic("boom")
		},
		OnFailure: func(err error) {
			assert.ErrorContains(t, err, "boom")
			close(done)
		},
	})

	deadline := time.After(2 * time.Second)
	for {
		js.Update()
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("panicking job never reported")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestJobSystemRejectsBadConfig(t *testing.T) {
	_, err := NewJobSystem(0, 4)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}
