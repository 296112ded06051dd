package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/config"
	"github.com/sherpas/supply/pkg/chains"
	"github.com/sherpas/supply/pkg/types"
)

// SupplySource serves cached and fresh contract reads.
type SupplySource interface {
	DefaultChain() string
	// Chains lists the chain keys that have a reader.
	Chains() []string
	Latest(chain string) (*types.ReadResult, error)
	Refresh(ctx context.Context, chain string) (*types.ReadResult, error)
}

// HistoryStore lists stored readings, newest first.
type HistoryStore interface {
	ListReadings(ctx context.Context, chain string, limit int) ([]types.ReadResult, error)
}

type Server struct {
	echo    *echo.Echo
	addr    string
	wallet  *config.WalletConfig
	source  SupplySource
	history HistoryStore
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer wires the routes. history may be nil when reading history is disabled.
func NewServer(addr string, wallet *config.WalletConfig, source SupplySource, history HistoryStore) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = NewRenderer()
	e.HTTPErrorHandler = jsonErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).
				Msg("[WebServer] request")
			return nil
		},
	}))

	s := &Server{
		echo:    e,
		addr:    addr,
		wallet:  wallet,
		source:  source,
		history: history,
	}
	e.GET("/", s.handleIndex)
	e.GET("/healthz", s.handleHealth)
	e.GET("/api/wallet", s.handleWallet)
	e.GET("/api/supply", s.handleSupply)
	e.GET("/api/supply/history", s.handleHistory)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server stops. A graceful Shutdown is not reported as an error.
func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("[WebServer] [Start] listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = http.StatusText(code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}
	if err := c.JSON(code, errorResponse{Error: message}); err != nil {
		log.Error().Err(err).Msg("[WebServer] failed to write error response")
	}
}

func toHTTPError(err error) error {
	if errors.Is(err, chains.ErrUnknownChain) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return err
}

func (s *Server) chainParam(c echo.Context) string {
	if chain := c.QueryParam("chain"); chain != "" {
		return chain
	}
	return s.source.DefaultChain()
}

func (s *Server) handleIndex(c echo.Context) error {
	chain := s.chainParam(c)
	result, err := s.source.Latest(chain)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Render(http.StatusOK, "page", PageData{
		AppName: s.wallet.AppName(),
		Chain:   chain,
		Chains:  s.readableChains(),
		SSR:     s.wallet.SSR(),
		Wallet:  s.wallet.Options(),
		Result:  orPending(result),
	})
}

// readableChains keeps the wallet chains the source can read, in wallet order.
func (s *Server) readableChains() []chains.Descriptor {
	readable := make(map[string]bool)
	for _, key := range s.source.Chains() {
		readable[strings.ToLower(key)] = true
	}
	out := make([]chains.Descriptor, 0, len(readable))
	for _, chain := range s.wallet.Chains() {
		if readable[strings.ToLower(chain.Key)] {
			out = append(out, chain)
		}
	}
	return out
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWallet(c echo.Context) error {
	return c.JSON(http.StatusOK, s.wallet.Options())
}

func (s *Server) handleSupply(c echo.Context) error {
	chain := s.chainParam(c)
	var (
		result *types.ReadResult
		err    error
	)
	if refresh, _ := strconv.ParseBool(c.QueryParam("refresh")); refresh {
		result, err = s.source.Refresh(c.Request().Context(), chain)
	} else {
		result, err = s.source.Latest(chain)
	}
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, orPending(result))
}

func (s *Server) handleHistory(c echo.Context) error {
	chain := s.chainParam(c)
	// validates the chain
	if _, err := s.source.Latest(chain); err != nil {
		return toHTTPError(err)
	}
	readings := []types.ReadResult{}
	if s.history == nil {
		return c.JSON(http.StatusOK, readings)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}
	stored, err := s.history.ListReadings(c.Request().Context(), chain, limit)
	if err != nil {
		return err
	}
	readings = append(readings, stored...)
	return c.JSON(http.StatusOK, readings)
}
