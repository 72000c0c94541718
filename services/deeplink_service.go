package services

import (
	"fmt"

	"rievent_server/models"
)

// ResolveDeepLink maps a push payload to the navigation target the
// navigation layer consumes. Pure; no store access.
func ResolveDeepLink(payload models.PushPayload) (models.NavigationTarget, error) {
	switch payload.Type {
	case models.PushTypeEvent:
		if payload.EventID == "" {
			return models.NavigationTarget{}, fmt.Errorf("%w: event payload missing eventId", ErrValidation)
		}
		return models.NavigationTarget{Screen: models.ScreenEventDetails, EventID: payload.EventID}, nil
	case models.PushTypeChat:
		if payload.ChatID == "" {
			return models.NavigationTarget{}, fmt.Errorf("%w: chat payload missing chatId", ErrValidation)
		}
		return models.NavigationTarget{Screen: models.ScreenChat, ChatID: payload.ChatID}, nil
	default:
		return models.NavigationTarget{}, fmt.Errorf("%w: unknown push type '%s'", ErrValidation, payload.Type)
	}
}
