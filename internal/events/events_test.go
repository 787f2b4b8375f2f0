package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitterDispatchOrder(t *testing.T) {
	e := NewEmitter()
	var got []string
	e.Subscribe(KindPoolUpdate, func(any) { got = append(got, "first") })
	e.Subscribe(KindPoolUpdate, func(any) { got = append(got, "second") })
	e.Subscribe(KindUndo, func(any) { got = append(got, "undo") })

	e.Emit(KindPoolUpdate, nil)
	require.Equal(t, []string{"first", "second"}, got)
}

func TestEmitterPayload(t *testing.T) {
	e := NewEmitter()
	var payload any
	e.Subscribe(KindError, func(p any) { payload = p })
	e.Emit(KindError, "assignment failed")
	require.Equal(t, "assignment failed", payload)
}

func TestEmitterIgnoresNilHandler(t *testing.T) {
	e := NewEmitter()
	e.Subscribe(KindActivate, nil)
	require.NotPanics(t, func() { e.Emit(KindActivate, nil) })
}

func TestEmitterUnknownKindIsNoop(t *testing.T) {
	e := NewEmitter()
	require.NotPanics(t, func() { e.Emit(Kind("nothing"), 42) })
}
