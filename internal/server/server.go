// Package server exposes the forecast pipeline over HTTP, rendering ANSI for
// terminal clients and HTML for browsers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"surfcast/internal/cache"
	"surfcast/internal/geo"
	"surfcast/internal/msw"
	"surfcast/internal/spots"
	"surfcast/internal/ui"
)

var validate = validator.New()

// IndexSource hands out the current spot index. *spots.Reloader satisfies it;
// tests use a fixed index.
type IndexSource interface {
	Index() *spots.Index
}

// Server wires the resolution, cache, and rendering pipeline into a Fiber app.
type Server struct {
	app          *fiber.App
	source       IndexSource
	cache        *cache.Cache
	defaultUnits msw.UnitSystem
}

// New builds the Fiber app and registers routes.
func New(source IndexSource, fcCache *cache.Cache, defaultUnits msw.UnitSystem) *Server {
	s := &Server{
		source:       source,
		cache:        fcCache,
		defaultUnits: defaultUnits,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "surfcast",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).SendString(err.Error() + "\n")
		},
	})

	s.app.Use(logger.New())
	s.app.Use(recover.New())

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "surfcast"})
	})
	s.app.Get("/spots", s.handleSpots)
	s.app.Get("/", s.handleLocate)
	s.app.Get("/:spot", s.handleSpot)

	return s
}

// Listen serves on the given address until shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server, honoring the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// renderQuery carries the presentation parameters every route accepts.
type renderQuery struct {
	Units  string `validate:"omitempty,oneof=us uk eu"`
	Format string `validate:"omitempty,oneof=terminal html"`
}

func (s *Server) parseRenderQuery(c *fiber.Ctx) (msw.UnitSystem, ui.Format, error) {
	q := renderQuery{
		Units:  c.Query("units"),
		Format: c.Query("format"),
	}
	if err := validate.Struct(q); err != nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	units := s.defaultUnits
	if q.Units != "" {
		units = msw.UnitSystem(q.Units)
	}

	format := sniffFormat(c.Get(fiber.HeaderUserAgent))
	if q.Format != "" {
		format = ui.Format(q.Format)
	}
	return units, format, nil
}

// sniffFormat guesses the output format from the user agent: terminal
// escapes for command-line HTTP clients, HTML for everything else.
func sniffFormat(userAgent string) ui.Format {
	ua := strings.ToLower(userAgent)
	for _, cli := range []string{"curl", "wget", "httpie", "fetch"} {
		if strings.Contains(ua, cli) {
			return ui.FormatTerminal
		}
	}
	return ui.FormatHTML
}

func (s *Server) handleSpots(c *fiber.Ctx) error {
	_, format, err := s.parseRenderQuery(c)
	if err != nil {
		return err
	}

	ix := s.source.Index()
	all := ix.All()
	list := make([]*spots.Spot, len(all))
	for i := range all {
		list[i] = &all[i]
	}
	return s.send(c, format, ui.SpotListView(list))
}

func (s *Server) handleSpot(c *fiber.Ctx) error {
	units, format, err := s.parseRenderQuery(c)
	if err != nil {
		return err
	}

	query, err := url.PathUnescape(c.Params("spot"))
	if err != nil {
		query = c.Params("spot")
	}

	resolver := spots.NewResolver(s.source.Index())
	candidates, err := resolver.Resolve(query)
	if err != nil {
		if errors.Is(err, spots.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no spot matches %q; try /spots for the directory", query))
		}
		return err
	}
	if len(candidates) > 1 {
		c.Status(fiber.StatusMultipleChoices)
		return s.send(c, format, ui.AmbiguousView(query, candidates))
	}

	return s.renderForecast(c, format, candidates[0], units)
}

// locateQuery holds the coordinate parameters for implicit spot lookup.
type locateQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (s *Server) handleLocate(c *fiber.Ctx) error {
	units, format, err := s.parseRenderQuery(c)
	if err != nil {
		return err
	}

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return s.sendUsage(c, format)
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon must both be decimal degrees")
	}
	if err := validate.Struct(locateQuery{Lat: lat, Lon: lon}); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	locator := geo.NewLocator(s.source.Index())
	spot, err := locator.Nearest(lat, lon)
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no spots available")
	}

	return s.renderForecast(c, format, spot, units)
}

func (s *Server) renderForecast(c *fiber.Ctx, format ui.Format, spot *spots.Spot, units msw.UnitSystem) error {
	fc, err := s.cache.GetOrFetch(c.UserContext(), spot.ID, units)
	if err != nil {
		if errors.Is(err, msw.ErrInvalidSpot) {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("provider has no forecast for spot %d", spot.ID))
		}
		return fiber.NewError(fiber.StatusBadGateway, "forecast provider unavailable; try again shortly")
	}
	return s.send(c, format, ui.ForecastPage(spot.Name, fc))
}

func (s *Server) send(c *fiber.Ctx, format ui.Format, v ui.View) error {
	doc := ui.For(format).Render(v)
	if format == ui.FormatHTML {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	}
	return c.SendString(doc)
}

func (s *Server) sendUsage(c *fiber.Ctx, format ui.Format) error {
	v := ui.View{Spans: []ui.Span{
		ui.Text("surfcast - surf forecasts for your terminal").WithBold(),
		ui.Newline(),
		ui.Newline(),
		ui.Text("  /<spot>            forecast by name, alias, or id"),
		ui.Newline(),
		ui.Text("  /?lat=..&lon=..    forecast for the nearest spot"),
		ui.Newline(),
		ui.Text("  /spots             spot directory"),
		ui.Newline(),
		ui.Newline(),
		ui.Text("  options: ?units=us|uk|eu   ?format=terminal|html"),
		ui.Newline(),
	}}
	return s.send(c, format, v)
}
