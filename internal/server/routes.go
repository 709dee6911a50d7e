package server

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/monitor"
)

// ViewRouteName names the single view route
const ViewRouteName = "filter-flow"

// NormalizeBase turns any base URL setting into a path with leading and
// trailing slashes. Empty means the root.
func NormalizeBase(base string) string {
	p := path.Clean("/" + strings.TrimSpace(base))
	if p == "/" {
		return "/"
	}

	return p + "/"
}

type handlers struct {
	provider catalog.Provider
	monitor  *monitor.RuntimeMonitor
	base     string
}

type healthResponse struct {
	Status  string               `json:"status"`
	Runtime monitor.RuntimeStats `json:"runtime"`
}

func registerRoutes(e *echo.Echo, base string, provider catalog.Provider, mon *monitor.RuntimeMonitor) {
	h := &handlers{provider: provider, monitor: mon, base: base}
	prefix := strings.TrimSuffix(base, "/")

	g := e.Group(prefix)
	g.GET("/", h.view).Name = ViewRouteName
	g.GET("/healthz", h.health)

	if prefix != "" {
		e.GET(prefix, func(c echo.Context) error {
			return c.Redirect(http.StatusMovedPermanently, base)
		})
	}

	api := g.Group("/api")
	api.GET("/tables", h.listTables)
	api.GET("/tables/:name/rows", h.tableRows)
	api.GET("/rows", h.rowsByQuery)
}

func (h *handlers) view(c echo.Context) error {
	page, err := RenderView(c.Request().Context(), h.provider, h.base)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render view").SetInternal(err)
	}

	return c.HTML(http.StatusOK, page)
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Runtime: h.monitor.GetStats()})
}

func (h *handlers) listTables(c echo.Context) error {
	tables, err := h.provider.ListTables(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tables").SetInternal(err)
	}

	return c.JSON(http.StatusOK, tables)
}

func (h *handlers) tableRows(c echo.Context) error {
	name := c.Param("name")

	// echo matches on RawPath when the request needed it, leaving params escaped
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	return h.rows(c, name)
}

func (h *handlers) rowsByQuery(c echo.Context) error {
	return h.rows(c, c.QueryParam("table"))
}

func (h *handlers) rows(c echo.Context, table string) error {
	rows, err := h.provider.GetRows(c.Request().Context(), table)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get rows").SetInternal(err)
	}

	if rows == nil {
		rows = []catalog.Row{}
	}

	return c.JSON(http.StatusOK, rows)
}
