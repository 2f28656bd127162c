package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"stockwatch/internal/app/events"
	"stockwatch/internal/app/quote"
	"stockwatch/internal/app/view"
	"stockwatch/internal/pkg/errs"
	"stockwatch/internal/pkg/logx"
	"stockwatch/internal/pkg/req"
	"stockwatch/internal/pkg/resp"
	"stockwatch/internal/pkg/validate"
)

// HandleIndex renders the dashboard, fetching every tracked symbol in order.
func HandleIndex(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, deps)
		if !ok {
			return
		}

		results := quote.FetchSequential(r.Context(), deps.Quotes, u.Symbols)
		rows := make([]view.QuoteRow, 0, len(results))
		for _, res := range results {
			rows = append(rows, quoteRow(res))
		}

		renderPage(w, r, deps, http.StatusOK, view.PageIndex, view.Page{
			Title:    "Dashboard",
			Username: u.Username,
			Rows:     rows,
		})
	}
}

func quoteRow(res quote.Result) view.QuoteRow {
	row := view.QuoteRow{Symbol: res.Symbol, Available: res.OK()}
	if row.Available {
		row.Name = res.Quote.Name
		row.Price = res.Quote.Price
		row.Change = res.Quote.PercentIncrease
		row.Direction = res.Quote.Direction()
	}
	return row
}

// HandleAddPage renders the add-symbol form.
func HandleAddPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, deps)
		if !ok {
			return
		}
		renderPage(w, r, deps, http.StatusOK, view.PageAdd, view.Page{Title: "Add", Username: u.Username})
	}
}

// HandleAdd validates a symbol against the quote source and appends it to
// the watchlist.
func HandleAdd(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, deps)
		if !ok {
			return
		}

		if customErr := req.ParseForm(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		symbol := strings.ToUpper(req.FormValue(r, "symbol"))
		page := view.Page{Title: "Add", Username: u.Username, Form: view.Form{Symbol: symbol}}

		if !validate.Charset(symbol, validate.SymbolSet) {
			renderFormError(w, r, deps, view.PageAdd, page, errs.NewError(errs.ErrInvalidSymbol))
			return
		}

		res := deps.Quotes.Fetch(r.Context(), symbol)
		if !res.OK() {
			logx.FromContext(r.Context()).Info().
				Str("symbol", symbol).
				Stringer("outcome", res.Outcome).
				AnErr("cause", res.Err).
				Msg("Add rejected: symbol did not resolve")
			renderFormError(w, r, deps, view.PageAdd, page, errs.NewError(errs.ErrInvalidSymbol))
			return
		}

		_, err := deps.Users.ModifySymbols(r.Context(), u.ID, func(symbols []string) ([]string, error) {
			if slices.Contains(symbols, symbol) {
				return nil, errs.NewError(errs.ErrAlreadyTracking)
			}
			return append(symbols, symbol), nil
		})
		if err != nil {
			var customErr *errs.CustomError
			if errors.As(err, &customErr) {
				renderFormError(w, r, deps, view.PageAdd, page, customErr)
				return
			}
			respondUnknown(w, r, err, "Add: failed to update watchlist")
			return
		}

		publish(r.Context(), deps, events.NewEvent(u.ID, symbol, events.SymbolAdded))
		resp.Redirect(w, r, "/")
	}
}

// HandleRemovePage renders the remove form with the current watchlist.
func HandleRemovePage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, deps)
		if !ok {
			return
		}
		renderPage(w, r, deps, http.StatusOK, view.PageRemove, view.Page{
			Title:    "Remove",
			Username: u.Username,
			Symbols:  u.Symbols,
		})
	}
}

// HandleRemove drops a symbol from the watchlist. A symbol that is not on
// the list leaves it untouched and is reported back.
func HandleRemove(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(w, r, deps)
		if !ok {
			return
		}

		if customErr := req.ParseForm(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		symbol := strings.ToUpper(req.FormValue(r, "symbol"))
		page := view.Page{Title: "Remove", Username: u.Username, Symbols: u.Symbols}

		if symbol == "" {
			renderFormError(w, r, deps, view.PageRemove, page, errs.NewError(errs.ErrSymbolRequired))
			return
		}

		_, err := deps.Users.ModifySymbols(r.Context(), u.ID, func(symbols []string) ([]string, error) {
			i := slices.Index(symbols, symbol)
			if i < 0 {
				return nil, errs.NewError(errs.ErrNotTracking, symbol)
			}
			return slices.Delete(symbols, i, i+1), nil
		})
		if err != nil {
			var customErr *errs.CustomError
			if errors.As(err, &customErr) {
				renderFormError(w, r, deps, view.PageRemove, page, customErr)
				return
			}
			respondUnknown(w, r, err, "Remove: failed to update watchlist")
			return
		}

		publish(r.Context(), deps, events.NewEvent(u.ID, symbol, events.SymbolRemoved))
		resp.Redirect(w, r, "/")
	}
}

// eventPublishTimeout bounds how long a watchlist edit waits on the broker.
var eventPublishTimeout = 2 * time.Second

// publish sends e; a delivery failure is logged and never fails the request.
func publish(ctx context.Context, deps *AppDeps, e events.Event) {
	ctx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()

	if err := deps.Events.Publish(ctx, e); err != nil {
		logx.FromContext(ctx).Warn().Err(err).
			Str("symbol", e.Symbol).
			Str("action", string(e.Action)).
			Msg("Failed to publish watchlist event")
	}
}
