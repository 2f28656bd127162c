package handler

import (
	"stockwatch/internal/app/events"
	"stockwatch/internal/app/quote"
	"stockwatch/internal/app/session"
	"stockwatch/internal/app/user"
	"stockwatch/internal/app/view"
	"stockwatch/internal/configs"
)

// AppDeps are the services handlers are built from.
type AppDeps struct {
	Config   *configs.AppConfig
	Users    user.Store
	Sessions *session.Manager
	Quotes   quote.Source
	Views    view.Renderer
	Events   events.Publisher
}
