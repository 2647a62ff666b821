package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"namegen/internal/engine"
	"namegen/internal/models"
)

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

// Client-facing validation messages.
const (
	msgInvalidCountry = "Invalid country name. Please provide a valid country name."
	msgInvalidCount   = "Count must be a positive integer."
	msgCountTooLarge  = "Count exceeds the number of available names. Please provide a smaller count."
)

type Handler struct {
	table  *engine.NameTable
	stats  []models.CountryStat
	etag   string
	logger *zap.Logger
}

func NewHandler(table *engine.NameTable, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := table.Stats()
	h := &Handler{
		table:  table,
		stats:  make([]models.CountryStat, len(stats)),
		etag:   `"` + strconv.FormatUint(table.Checksum(), 16) + `"`,
		logger: logger,
	}
	for i, s := range stats {
		h.stats[i] = models.CountryStat{
			Country:     s.Country,
			Names:       s.Names,
			MaleNames:   s.Male,
			FemaleNames: s.Female,
			Mass:        s.Mass,
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/status", h.GetStatus)
	e.GET("/countries", h.GetCountries)
	e.GET("/countries/stats", h.GetCountryStats)
	e.GET("/random_names", h.GetRandomNames)
	e.GET("/random_male_names", h.GetRandomMaleNames)
	e.GET("/random_female_names", h.GetRandomFemaleNames)
}

// --- HANDLERS ---

func (h *Handler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, models.StatusResponse{Status: "Server is running"})
}

// The table never changes, so its checksum is a stable ETag.
func (h *Handler) GetCountries(c echo.Context) error {
	c.Response().Header().Set(headerETag, h.etag)
	if etagMatches(c.Request().Header.Get(headerIfNoneMatch), h.etag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, models.CountriesResponse{Countries: h.table.Countries()})
}

// GetCountryStats pages through per-country pool sizes, largest first.
func (h *Handler) GetCountryStats(c echo.Context) error {
	total := len(h.stats)
	limit, offset := getPaginationParams(c, total)

	page := models.CountryStatsPage{Data: []models.CountryStat{}, Total: total, Limit: limit, Offset: offset}
	if offset < total {
		end := offset + min(limit, total-offset)
		page.Data = h.stats[offset:end]
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) GetRandomNames(c echo.Context) error {
	names, err := h.sample(c, engine.GenderAny)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.RandomNamesResponse{RandomNames: names})
}

func (h *Handler) GetRandomMaleNames(c echo.Context) error {
	names, err := h.sample(c, engine.GenderMale)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.RandomMaleNamesResponse{RandomMaleNames: names})
}

func (h *Handler) GetRandomFemaleNames(c echo.Context) error {
	names, err := h.sample(c, engine.GenderFemale)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.RandomFemaleNamesResponse{RandomFemaleNames: names})
}

// --- VALIDATION ---

// etagMatches applies the weak comparison of If-None-Match: "*" matches
// anything and a W/ prefix is ignored.
func etagMatches(header, etag string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == etag {
			return true
		}
	}
	return false
}

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

type sampleParams struct {
	country string
	count   int
}

func getSampleParams(c echo.Context) (sampleParams, error) {
	var p sampleParams

	p.country = c.QueryParam("country")
	if p.country == "" {
		return p, echo.NewHTTPError(http.StatusUnprocessableEntity, "Query parameter 'country' is required.")
	}

	raw := c.QueryParam("count")
	if raw == "" {
		return p, echo.NewHTTPError(http.StatusUnprocessableEntity, "Query parameter 'count' is required.")
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return p, echo.NewHTTPError(http.StatusUnprocessableEntity, "Query parameter 'count' must be an integer.").SetInternal(err)
	}
	p.count = count
	return p, nil
}

// sample validates the request in order (country, count, availability in the
// unfiltered pool) and then draws from the gender-filtered pool.
func (h *Handler) sample(c echo.Context, g engine.Gender) ([]string, error) {
	p, err := getSampleParams(c)
	if err != nil {
		return nil, err
	}

	if !h.table.HasCountry(p.country) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidCountry)
	}
	if p.count <= 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidCount)
	}
	available, err := h.table.Eligible(p.country, engine.GenderAny)
	if err != nil {
		return nil, engineError(err)
	}
	if p.count > available {
		return nil, echo.NewHTTPError(http.StatusBadRequest, msgCountTooLarge)
	}

	names, err := h.table.Sample(p.country, p.count, g)
	if err != nil {
		h.logger.Debug("sample rejected",
			zap.String("country", p.country),
			zap.Int("count", p.count),
			zap.Stringer("gender", g),
			zap.Error(err),
		)
		return nil, engineError(err)
	}
	return names, nil
}

// engineError maps engine errors to client errors.
func engineError(err error) error {
	var msg string
	switch {
	case errors.Is(err, engine.ErrUnknownCountry):
		msg = msgInvalidCountry
	case errors.Is(err, engine.ErrInvalidCount):
		msg = msgInvalidCount
	case errors.Is(err, engine.ErrInsufficientCandidates):
		msg = msgCountTooLarge
	default:
		return err
	}
	return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
}
