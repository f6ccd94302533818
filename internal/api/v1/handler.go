package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/bruktdata-lab/listing-portal/internal/core/errors"
	"github.com/bruktdata-lab/listing-portal/internal/core/filter"
	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
	"github.com/bruktdata-lab/listing-portal/internal/source/s3meta"
)

// RegisterRoutes registers all portal API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/cars", s.HandleQueryCars)
	r.GET("/v1/houses", s.HandleQueryHouses)
	r.GET("/v1/metadata/cars", s.HandleCarMetadata)
	r.GET("/v1/metadata/houses", s.HandleHouseMetadata)
}

// HandleQueryCars handles GET /v1/cars.
// Query parameters mirror the dashboard's filter controls; numeric parameters
// that fail to parse reject the whole request.
func (s *Service) HandleQueryCars(c *gin.Context) {
	var q struct {
		Produsent     string   `form:"produsent"`
		Modell        string   `form:"modell"`
		Start         string   `form:"start"`
		ModellSok     string   `form:"modell_sok"`
		SelgerSok     string   `form:"selger_sok"`
		Drivstoff     []string `form:"drivstoff"`
		Hjuldrift     []string `form:"hjuldrift"`
		YearFra       *int     `form:"year_fra"`
		YearTil       *int     `form:"year_til"`
		KmFra         *int     `form:"km_fra"`
		KmTil         *int     `form:"km_til"`
		RekkeviddeFra string   `form:"rekkevidde_fra"`
		RekkeviddeTil string   `form:"rekkevidde_til"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeInvalidFilter(c, "Invalid query parameters", err.Error())
		return
	}

	start, ok := parseDateParam(c, "start", q.Start)
	if !ok {
		return
	}

	req := CarRequest{
		Produsent: q.Produsent,
		Modell:    q.Modell,
		ModellSok: q.ModellSok,
		SelgerSok: q.SelgerSok,
		RangeMin:  q.RekkeviddeFra,
		RangeMax:  q.RekkeviddeTil,
		Start:     start,
		Residual: filter.CarFilter{
			Drivstoff: q.Drivstoff,
			Hjuldrift: q.Hjuldrift,
			YearMin:   q.YearFra,
			YearMax:   q.YearTil,
			KmMin:     q.KmFra,
			KmMax:     q.KmTil,
		},
	}

	resp, err := s.QueryCars(c.Request.Context(), req)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleQueryHouses handles GET /v1/houses.
func (s *Service) HandleQueryHouses(c *gin.Context) {
	var q struct {
		Fylke      string   `form:"fylke"`
		Boligtype  []string `form:"boligtype"`
		MeglerSok  string   `form:"megler_sok"`
		Publisert  string   `form:"publisert_fra"`
		PrisFra    *int     `form:"pris_fra"`
		PrisTil    *int     `form:"pris_til"`
		KvmprisFra *int     `form:"kvmpris_fra"`
		KvmprisTil *int     `form:"kvmpris_til"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeInvalidFilter(c, "Invalid query parameters", err.Error())
		return
	}

	publishedFrom, ok := parseDateParam(c, "publisert_fra", q.Publisert)
	if !ok {
		return
	}

	req := HouseRequest{
		Fylke:         q.Fylke,
		MeglerSok:     q.MeglerSok,
		PublishedFrom: publishedFrom,
		Residual: filter.HouseFilter{
			Boligtype:  q.Boligtype,
			PrisMin:    q.PrisFra,
			PrisMax:    q.PrisTil,
			KvmprisMin: q.KvmprisFra,
			KvmprisMax: q.KvmprisTil,
		},
	}

	resp, err := s.QueryHouses(c.Request.Context(), req)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCarMetadata handles GET /v1/metadata/cars. Missing metadata yields an
// empty option set, not an error - the portal still works, dropdowns start
// blank.
func (s *Service) HandleCarMetadata(c *gin.Context) {
	if s.meta.Cars == nil {
		c.JSON(http.StatusOK, s3meta.CarOptions{})
		return
	}
	c.JSON(http.StatusOK, s.meta.Cars)
}

// HandleHouseMetadata handles GET /v1/metadata/houses.
func (s *Service) HandleHouseMetadata(c *gin.Context) {
	if s.meta.Houses == nil {
		c.JSON(http.StatusOK, s3meta.HouseOptions{})
		return
	}
	c.JSON(http.StatusOK, s.meta.Houses)
}

// parseDateParam parses an optional YYYY-MM-DD parameter, writing the 400
// response itself when the value is malformed.
func parseDateParam(c *gin.Context, name, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(listing.DateLayout, raw)
	if err != nil {
		writeInvalidFilter(c, "Invalid date parameter", name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

func writeInvalidFilter(c *gin.Context, message string, details interface{}) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidFilterError,
		Message:   message,
		Details:   details,
	})
}

func writeQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		writeInvalidFilter(c, "Invalid portal query", err.Error())
	case errors.Is(err, ErrUpstream):
		c.JSON(http.StatusBadGateway, httperr.ErrorResponse{
			ErrorType: httperr.HttpUpstreamError,
			Message:   "Failed to fetch observations",
			Details:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to execute query",
			Details:   err.Error(),
		})
	}
}
