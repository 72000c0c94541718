package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rievent_server/models"
)

func TestResolveDeepLink(t *testing.T) {
	target, err := ResolveDeepLink(models.PushPayload{Type: models.PushTypeEvent, EventID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, models.NavigationTarget{Screen: models.ScreenEventDetails, EventID: "e1"}, target)

	target, err = ResolveDeepLink(models.PushPayload{Type: models.PushTypeChat, ChatID: "ana_marko"})
	require.NoError(t, err)
	assert.Equal(t, models.NavigationTarget{Screen: models.ScreenChat, ChatID: "ana_marko"}, target)
}

func TestResolveDeepLink_Invalid(t *testing.T) {
	_, err := ResolveDeepLink(models.PushPayload{Type: models.PushTypeEvent})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ResolveDeepLink(models.PushPayload{Type: models.PushTypeChat})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ResolveDeepLink(models.PushPayload{Type: "unknown"})
	assert.ErrorIs(t, err, ErrValidation)
}
