package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"stockwatch/internal/app/live"
	"stockwatch/internal/app/session"
	"stockwatch/internal/pkg/errs"
	"stockwatch/internal/pkg/logx"
	"stockwatch/internal/pkg/resp"
)

// HandleLiveQuotes upgrades to a WebSocket that streams quotes for the
// signed-in user's watchlist on request.
func HandleLiveQuotes(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := session.UserID(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		symbols := func(ctx context.Context) ([]string, error) {
			u, err := deps.Users.FindByID(ctx, userID)
			if err != nil {
				return nil, err
			}
			return u.Symbols, nil
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already answered the client
			logx.FromContext(r.Context()).Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}

		logx.FromContext(r.Context()).Debug().Int64("user_id", userID).Msg("Live quote connection established")
		live.NewClient(r.Context(), conn, userID, symbols, deps.Quotes).Serve()
	}
}
