package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/digest"
	"github.com/etnz/signalist/watchlist"
	"github.com/labstack/echo/v4"
)

func (s *Server) news(c echo.Context) error {
	var symbols []string
	if q := c.QueryParam("symbols"); q != "" {
		symbols = strings.Split(q, ",")
	}
	news, err := s.cfg.News.GetNews(c.Request().Context(), symbols...)
	if err != nil {
		return providerError(err)
	}
	if news == nil {
		news = []signalist.NewsArticle{}
	}
	return c.JSON(http.StatusOK, news)
}

func (s *Server) search(c echo.Context) error {
	ctx := c.Request().Context()
	stocks, err := s.cfg.Stocks.SearchStocks(ctx, c.QueryParam("q"))
	if err != nil {
		return providerError(err)
	}
	if email := c.QueryParam("email"); email != "" && s.cfg.Watchlist != nil {
		watched := make(map[string]bool)
		for _, symbol := range s.cfg.Watchlist.SymbolsByEmail(ctx, email) {
			watched[symbol] = true
		}
		for i := range stocks {
			stocks[i].InWatchlist = watched[stocks[i].Symbol]
		}
	}
	if stocks == nil {
		stocks = []signalist.Stock{}
	}
	return c.JSON(http.StatusOK, stocks)
}

func (s *Server) quote(c echo.Context) error {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol is required")
	}
	q, err := s.cfg.Stocks.Quote(c.Request().Context(), symbol)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, q)
}

type watchlistQuery struct {
	Email  string `query:"email" json:"email" validate:"required,email"`
	Symbol string `query:"symbol" json:"symbol"`
}

type addRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Symbol  string `json:"symbol" validate:"required,max=20"`
	Company string `json:"company" validate:"max=200"`
}

// user returns the user of email, or a 404.
func (s *Server) user(ctx context.Context, email string) (signalist.User, error) {
	u, err := s.cfg.Watchlist.UserByEmail(ctx, email)
	if errors.Is(err, watchlist.ErrUnknownUser) {
		return u, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return u, err
}

func (s *Server) listWatchlist(c echo.Context) error {
	var q watchlistQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	ctx := c.Request().Context()
	u, err := s.user(ctx, q.Email)
	if err != nil {
		return err
	}
	items, err := s.cfg.Watchlist.List(ctx, u.ID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []signalist.WatchlistItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) addToWatchlist(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	u, err := s.user(ctx, req.Email)
	if err != nil {
		return err
	}
	item, err := s.cfg.Watchlist.Add(ctx, u.ID, req.Symbol, req.Company)
	var verr *signalist.ValidationError
	switch {
	case errors.Is(err, watchlist.ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) removeFromWatchlist(c echo.Context) error {
	var q watchlistQuery
	if err := c.Bind(&q); err != nil {
		return err
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	if q.Symbol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "symbol is required")
	}
	ctx := c.Request().Context()
	u, err := s.user(ctx, q.Email)
	if err != nil {
		return err
	}
	removed, err := s.cfg.Watchlist.Remove(ctx, u.ID, q.Symbol)
	if err != nil {
		return err
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "symbol not in watchlist")
	}
	return c.NoContent(http.StatusNoContent)
}

// event accepts an event and runs its job in the background.
func (s *Server) event(c echo.Context) error {
	var e digest.Event
	if err := c.Bind(&e); err != nil {
		return err
	}
	if err := c.Validate(&e); err != nil {
		return err
	}
	if e.Name != digest.UserCreated && e.Name != digest.SendDailyNews {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown event "+e.Name)
	}

	id := c.Response().Header().Get(echo.HeaderXRequestID)
	ctx := context.WithoutCancel(c.Request().Context())
	go func() {
		if err := s.cfg.Events.Handle(ctx, e); err != nil {
			s.log.Error("event failed", "event", e.Name, "request_id", id, "error", err)
			return
		}
		s.log.Info("event handled", "event", e.Name, "request_id", id)
	}()
	return c.JSON(http.StatusAccepted, map[string]string{"id": id, "event": e.Name})
}
