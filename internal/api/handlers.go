package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"fleetdash/internal/config"
	"fleetdash/internal/engine"
	"fleetdash/internal/models"
)

type Handler struct {
	session *Session
	loader  *engine.Loader
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a handler with an empty session. Nil cfg or logger fall
// back to defaults.
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		session: NewSession(),
		loader:  engine.NewLoader(logger),
		cfg:     cfg,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/dataset", h.UploadDataset, middleware.BodyLimit(fmt.Sprintf("%dM", h.cfg.MaxUploadMB)))
	api.GET("/dataset", h.GetDataset)
	api.DELETE("/dataset", h.DeleteDataset)

	api.POST("/filters/options", h.GetFilterOptions)
	api.POST("/filters/apply", h.ApplyFilters)
	api.DELETE("/filters", h.ClearFilters)

	api.GET("/rows", h.GetRows)
	api.GET("/provinces", h.GetProvinces)
	api.GET("/vehicles", h.GetVehicles)

	charts := api.Group("/charts")
	charts.GET("/timeseries", h.GetTimeSeries)
	charts.GET("/distribution", h.GetDistribution)
	charts.GET("/weekday", h.GetWeekday)
	charts.GET("/top-vehicles", h.GetTopVehicles)
	charts.GET("/share", h.GetShare)

	api.GET("/vehicles/:id/consumption", h.GetConsumption)
	api.GET("/vehicles/:id/comparison", h.GetComparison)
	api.GET("/vehicles/:id/map", h.GetRefuelMap)

	api.GET("/render/:chart", h.RenderChart)
	api.GET("/export", h.Export)
}

// LoadFile reads and standardizes a file into the session. It backs the
// --data flag of serve.
func (h *Handler) LoadFile(path, sheet string) (string, error) {
	raw, err := h.loader.Load(path, sheet)
	if err != nil {
		return "", err
	}
	return h.store(raw)
}

func (h *Handler) store(raw *engine.Dataset) (string, error) {
	ds, err := engine.Standardize(raw)
	if err != nil {
		return "", err
	}
	id := h.session.Load(ds)
	h.logger.Info("dataset standardized",
		zap.String("id", id),
		zap.String("name", ds.Name),
		zap.Int("rows", ds.Len()),
		zap.Strings("columns", ds.Names()),
	)
	return id, nil
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// UploadDataset replaces the session dataset with the uploaded file. A file
// that cannot be standardized leaves the current dataset in place.
func (h *Handler) UploadDataset(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field 'file' is required")
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()

	raw, err := h.loader.Read(f, fh.Filename, c.FormValue("sheet"))
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.store(raw); err != nil {
		h.logger.Warn("dataset rejected", zap.String("name", fh.Filename), zap.Error(err))
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, h.info(h.session.Snapshot()))
}

func (h *Handler) GetDataset(c echo.Context) error {
	return c.JSON(http.StatusOK, h.info(h.session.Snapshot()))
}

func (h *Handler) DeleteDataset(c echo.Context) error {
	h.session.Reset()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) info(s Snapshot) models.DatasetInfo {
	info := models.DatasetInfo{Columns: []models.ColumnInfo{}, Preview: []map[string]any{}}
	if s.Data == nil {
		return info
	}
	info.Loaded = true
	info.ID = s.ID
	info.Name = s.Data.Name
	info.Rows = s.Data.Len()
	for _, col := range s.Data.Columns {
		info.Columns = append(info.Columns, models.ColumnInfo{Name: col.Name, Type: string(col.Type)})
	}
	info.Preview = s.Data.Records(0, h.cfg.PreviewRows)
	if s.View != nil {
		n := s.View.Len()
		info.FilteredRows = &n
	}
	return info
}

type optionsRequest struct {
	DatasetID  string              `json:"dataset_id"`
	Selections map[string][]string `json:"selections"`
}

type applyRequest struct {
	DatasetID  string               `json:"dataset_id"`
	Selections map[string][]string  `json:"selections"`
	Ranges     map[string][]float64 `json:"ranges"`
	Dates      []string             `json:"dates"`
}

// GetFilterOptions recomputes the option list of every dimension for the
// given selections. Options always contain the selected values.
func (h *Handler) GetFilterOptions(c echo.Context) error {
	var req optionsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	s := h.session.Snapshot()
	out := models.FilterOptions{Options: map[string][]string{}, Bounds: map[string]models.RangeBounds{}}
	if s.Data == nil {
		return c.JSON(http.StatusOK, out)
	}
	if req.DatasetID != "" && req.DatasetID != s.ID {
		return writeError(c, ErrStaleDataset)
	}
	out.DatasetID = s.ID
	for dim, opts := range engine.ResolveOptions(s.Data, engine.Selection(req.Selections).Normalize()) {
		if s.Data.Has(dim) {
			out.Options[dim] = opts
		}
	}
	for m, b := range engine.MetricBounds(s.Data) {
		out.Bounds[m] = models.RangeBounds{Min: b.Min, Max: b.Max, Adjustable: b.Adjustable}
	}
	return c.JSON(http.StatusOK, out)
}

// ApplyFilters computes the filtered view and makes it the active dataset.
func (h *Handler) ApplyFilters(c echo.Context) error {
	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	s := h.session.Snapshot()
	if s.Data == nil {
		return writeError(c, engine.ErrNoDataset)
	}
	id := req.DatasetID
	if id == "" {
		id = s.ID
	}
	if id != s.ID {
		return writeError(c, ErrStaleDataset)
	}
	criteria, err := buildCriteria(req)
	if err != nil {
		return writeError(c, err)
	}

	start := time.Now()
	view := engine.Apply(s.Data, criteria)
	if err := h.session.SetView(id, criteria, view); err != nil {
		return writeError(c, err)
	}
	h.logger.Debug("filters applied",
		zap.String("id", id),
		zap.Int("rows", view.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"dataset_id": id,
		"rows":       view.Len(),
		"total":      s.Data.Len(),
	})
}

func buildCriteria(req applyRequest) (engine.Criteria, error) {
	c := engine.Criteria{Selection: engine.Selection(req.Selections).Normalize()}
	for col, bounds := range req.Ranges {
		if len(bounds) != 2 {
			return c, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("range %q needs [min, max]", col))
		}
		r, err := engine.NewRange(col, bounds[0], bounds[1])
		if err != nil {
			return c, err
		}
		c.Ranges = append(c.Ranges, r)
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		return c, err
	}
	c.Dates = dates
	return c, nil
}

// parseDates reads zero, one (a single day) or two (start and end) dates.
func parseDates(in []string) (engine.DateRange, error) {
	var r engine.DateRange
	if len(in) > 2 {
		return r, echo.NewHTTPError(http.StatusBadRequest, "dates takes at most two values")
	}
	parsed := make([]time.Time, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) == "" {
			continue
		}
		t, ok := engine.ToDate(engine.String(s))
		if !ok {
			return r, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid date %q", s))
		}
		parsed = append(parsed, t)
	}
	switch len(parsed) {
	case 1:
		r.Start = parsed[0]
	case 2:
		if engine.Day(parsed[0]).After(engine.Day(parsed[1])) {
			return r, fmt.Errorf("dates %s > %s: %w", in[0], in[1], engine.ErrInvalidRange)
		}
		r.Start, r.End = parsed[0], parsed[1]
	}
	return r, nil
}

func (h *Handler) ClearFilters(c echo.Context) error {
	h.session.ClearView()
	return c.NoContent(http.StatusNoContent)
}

// GetRows pages through the active dataset.
func (h *Handler) GetRows(c echo.Context) error {
	ds, err := h.active()
	if err != nil {
		return writeError(c, err)
	}
	total := ds.Len()
	limit, offset := getPaginationParams(c, h.cfg.PageSize)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   ds.Records(offset, limit),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetProvinces(c echo.Context) error {
	ds, err := h.active()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, engine.Distinct(ds, engine.ColProvince))
}

func (h *Handler) GetVehicles(c echo.Context) error {
	ds, err := h.active()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, engine.Distinct(ds, engine.ColVehicle))
}

func (h *Handler) active() (*engine.Dataset, error) {
	ds := h.session.Snapshot().Active()
	if ds == nil {
		return nil, engine.ErrNoDataset
	}
	return ds, nil
}
