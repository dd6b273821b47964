package service

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/eventmate-api/internal/model"
)

func intPtr(n int) *int { return &n }

func TestDeriveStatus(t *testing.T) {
    cases := []struct {
        name      string
        current   model.EventStatus
        occupancy int
        capacity  *int
        want      model.EventStatus
    }{
        {"unlimited stays open", model.EventOpen, 500, nil, model.EventOpen},
        {"below capacity", model.EventOpen, 1, intPtr(2), model.EventOpen},
        {"reaches capacity", model.EventOpen, 2, intPtr(2), model.EventFull},
        {"over capacity", model.EventOpen, 3, intPtr(2), model.EventFull},
        {"full after leave", model.EventFull, 1, intPtr(2), model.EventOpen},
        {"full stays full", model.EventFull, 2, intPtr(2), model.EventFull},
        {"capacity removed", model.EventFull, 2, nil, model.EventOpen},
        {"cancelled is terminal", model.EventCancelled, 0, intPtr(2), model.EventCancelled},
        {"completed is terminal", model.EventCompleted, 2, intPtr(2), model.EventCompleted},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, DeriveStatus(tc.current, tc.occupancy, tc.capacity))
        })
    }
}

func TestCanTransition(t *testing.T) {
    assert.True(t, CanTransition(model.EventOpen, model.EventCancelled))
    assert.True(t, CanTransition(model.EventFull, model.EventCancelled))
    assert.True(t, CanTransition(model.EventOpen, model.EventCompleted))
    assert.True(t, CanTransition(model.EventFull, model.EventCompleted))

    assert.False(t, CanTransition(model.EventCancelled, model.EventCompleted))
    assert.False(t, CanTransition(model.EventCompleted, model.EventCancelled))
    assert.False(t, CanTransition(model.EventOpen, model.EventFull))
    assert.False(t, CanTransition(model.EventCancelled, model.EventOpen))
}
