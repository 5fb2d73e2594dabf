package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"fleetdash/internal/engine"
	"fleetdash/internal/render"
	"fleetdash/internal/spatial"
)

// scoped is the active dataset narrowed by the optional province and vehicle
// query parameters.
func (h *Handler) scoped(c echo.Context) (*engine.Dataset, error) {
	ds, err := h.active()
	if err != nil {
		return nil, err
	}
	if p := c.QueryParam("province"); p != "" {
		ds = engine.FilterDimension(ds, engine.ColProvince, []string{p})
	}
	if v := c.QueryParam("vehicle"); v != "" {
		ds = engine.ForVehicle(ds, v)
	}
	return ds, nil
}

func queryOr(c echo.Context, name, def string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return def
}

func (h *Handler) topN(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("n"))
	if err != nil || n <= 0 {
		return h.cfg.TopN
	}
	return n
}

func (h *Handler) GetTimeSeries(c echo.Context) error {
	ds, err := h.scoped(c)
	if err != nil {
		return writeError(c, err)
	}
	p, err := engine.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, engine.TimeSeries(ds, queryOr(c, "metric", engine.ColAmountRefueled), p))
}

func (h *Handler) GetDistribution(c echo.Context) error {
	ds, err := h.scoped(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, engine.Distribution(ds, queryOr(c, "column", engine.ColFuelType)))
}

func (h *Handler) GetWeekday(c echo.Context) error {
	ds, err := h.scoped(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, engine.Weekday(ds))
}

func (h *Handler) GetTopVehicles(c echo.Context) error {
	ds, err := h.scoped(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, engine.TopVehicles(ds, queryOr(c, "metric", engine.ColAmountRefueled), h.topN(c)))
}

func (h *Handler) GetShare(c echo.Context) error {
	ds, err := h.scoped(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, engine.Share(ds))
}

func (h *Handler) GetConsumption(c echo.Context) error {
	ds, err := h.active()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, engine.ConsumptionTrend(ds, c.Param("id")))
}

func (h *Handler) GetComparison(c echo.Context) error {
	ds, err := h.active()
	if err != nil {
		return writeError(c, err)
	}
	metric := queryOr(c, "metric", engine.ColAmountRefueled)
	return c.JSON(http.StatusOK, engine.ModelComparison(ds, c.Param("id"), metric))
}

func (h *Handler) GetRefuelMap(c echo.Context) error {
	ds, err := h.active()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, spatial.BuildRefuelMap(ds, c.Param("id")))
}

// RenderChart returns a chart as PNG. It takes the same query parameters as
// the JSON chart endpoints plus width and height.
func (h *Handler) RenderChart(c echo.Context) error {
	ds, err := h.scoped(c)
	if err != nil {
		return writeError(c, err)
	}
	size := render.Size{Width: h.cfg.ChartWidth, Height: h.cfg.ChartHeight}
	if w, err := strconv.Atoi(c.QueryParam("width")); err == nil && w > 0 {
		size.Width = w
	}
	if ht, err := strconv.Atoi(c.QueryParam("height")); err == nil && ht > 0 {
		size.Height = ht
	}

	var buf bytes.Buffer
	switch c.Param("chart") {
	case "timeseries":
		p, perr := engine.ParsePeriod(c.QueryParam("period"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, perr.Error())
		}
		err = render.TimeSeries(&buf, engine.TimeSeries(ds, queryOr(c, "metric", engine.ColAmountRefueled), p), size)
	case "distribution":
		err = render.Distribution(&buf, engine.Distribution(ds, queryOr(c, "column", engine.ColFuelType)), size)
	case "weekday":
		err = render.Distribution(&buf, engine.Weekday(ds), size)
	case "top-vehicles":
		metric := queryOr(c, "metric", engine.ColAmountRefueled)
		err = render.TopVehicles(&buf, "top vehicles by "+metric, engine.TopVehicles(ds, metric, h.topN(c)), size)
	case "share":
		err = render.Distribution(&buf, engine.Share(ds), size)
	case "consumption":
		v := c.QueryParam("vehicle")
		if v == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "vehicle is required")
		}
		err = render.Consumption(&buf, engine.ConsumptionTrend(ds, v), size)
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown chart "+c.Param("chart"))
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
