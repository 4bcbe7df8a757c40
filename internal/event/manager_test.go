package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchOrderAndConsumption(t *testing.T) {
	m := NewManager()
	var calls []string
	m.Subscribe(TypeDocumentEdited, func(e Event) bool {
		calls = append(calls, "first:"+e.Data.(string))
		return false
	})
	m.Subscribe(TypeDocumentEdited, func(e Event) bool {
		calls = append(calls, "second")
		return true
	})
	m.Subscribe(TypeDocumentEdited, func(e Event) bool {
		calls = append(calls, "third")
		return false
	})

	m.Dispatch(TypeDocumentEdited, "payload")
	assert.Equal(t, []string{"first:payload", "second"}, calls)
}

func TestDispatchWithoutHandlers(t *testing.T) {
	m := NewManager()
	assert.NotPanics(t, func() { m.Dispatch(TypeSaveFailed, nil) })

	var nilManager *Manager
	assert.NotPanics(t, func() { nilManager.Dispatch(TypeSaveFailed, nil) })
}

func TestSubscribeDuringDispatch(t *testing.T) {
	m := NewManager()
	late := 0
	m.Subscribe(TypeAppReady, func(Event) bool {
		m.Subscribe(TypeAppReady, func(Event) bool { late++; return false })
		return false
	})

	m.Dispatch(TypeAppReady, nil)
	assert.Zero(t, late, "handlers added during dispatch wait for the next event")

	m.Dispatch(TypeAppReady, nil)
	assert.Equal(t, 1, late)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "document.restored", TypeDocumentRestored.String())
	assert.Equal(t, "unknown", Type(999).String())
}
