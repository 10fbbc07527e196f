// Package http provides http transport for predict
package http

import (
	stdhttp "net/http"
	"strconv"

	"checkstats/internal/modkit/httpkit"
	"checkstats/internal/platform/errors"
	"checkstats/internal/services/api/predict/domain"
	svc "checkstats/internal/services/api/predict/service"
)

// Register mounts predict endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/line", h.line)
	httpkit.PostJSON(r, "/line", h.lineJSON)
	httpkit.Get(r, "/overview", h.overview)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /predict/line Predict predictLine
// @Summary Hourly check probability for a line, mode, and weekday
// @Tags Predict
// @Produce json
// @Param line_id query string false "Line identifier"
// @Param mode query string false "Transit mode"
// @Param weekday_idx query int true "Weekday index, 0=Mon..6=Sun"
// @Success 200 {object} domain.LinePrediction "ok"
// @Router /predict/line [get]
func (h *handlers) line(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	weekdayIdx, err := strconv.Atoi(q.Get("weekday_idx"))
	if err != nil {
		return nil, errors.InvalidArgf("weekday_idx must be an integer in [0,6]")
	}
	return h.svc.Line(r.Context(), domain.LineInput{
		LineID:     q.Get("line_id"),
		Mode:       q.Get("mode"),
		WeekdayIdx: weekdayIdx,
	})
}

// swagger:route POST /predict/line Predict predictLineJSON
// @Summary Hourly check probability for a validated line selector
// @Tags Predict
// @Accept json
// @Produce json
// @Param body body domain.LineInput true "Line selector"
// @Success 200 {object} domain.LinePrediction "ok"
// @Router /predict/line [post]
func (h *handlers) lineJSON(r *stdhttp.Request, in domain.LineInput) (any, error) {
	return h.svc.Line(r.Context(), in)
}

// swagger:route GET /predict/overview Predict predictOverview
// @Summary Check probability for the whole range and per weekday
// @Tags Predict
// @Produce json
// @Success 200 {object} domain.Overview "ok"
// @Router /predict/overview [get]
func (h *handlers) overview(r *stdhttp.Request) (any, error) {
	return h.svc.Overview(r.Context())
}
