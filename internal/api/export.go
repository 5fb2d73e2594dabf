package api

import (
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"fleetdash/internal/engine"
	"fleetdash/internal/export"
)

// Export downloads the active dataset as csv, arrow or sqlite.
func (h *Handler) Export(c echo.Context) error {
	s := h.session.Snapshot()
	ds := s.Active()
	if ds == nil {
		return writeError(c, engine.ErrNoDataset)
	}
	f, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return writeError(c, err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, ds, f); err != nil {
		return writeError(c, err)
	}

	base := strings.TrimSuffix(filepath.Base(s.Data.Name), filepath.Ext(s.Data.Name))
	if s.View != nil {
		base += "-filtered"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": base + f.Ext()})
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
}
