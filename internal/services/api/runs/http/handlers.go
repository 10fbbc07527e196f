// Package http provides http transport for runs
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"checkstats/internal/modkit/httpkit"
	svc "checkstats/internal/services/api/runs/service"
)

// Register mounts runs endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/run", h.run)
	httpkit.Get(r, "/months", h.months)
	httpkit.Get(r, "/month/{month}", h.month)
	httpkit.Get(r, "/week/{week_start_date}", h.week)
	httpkit.Get(r, "/top-lines", h.topLines)
	httpkit.Post(r, "/upload", h.upload)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /runs/run Runs runsRun
// @Summary Active run and artifact presence
// @Tags Runs
// @Produce json
// @Success 200 {object} domain.RunInfo "ok"
// @Router /runs/run [get]
func (h *handlers) run(r *stdhttp.Request) (any, error) {
	return h.svc.Run(r.Context())
}

// swagger:route GET /runs/months Runs runsMonths
// @Summary Month overview rows
// @Tags Runs
// @Produce json
// @Success 200 {array} domain.MonthOverview "ok"
// @Router /runs/months [get]
func (h *handlers) months(r *stdhttp.Request) (any, error) {
	return h.svc.Months(r.Context())
}

// swagger:route GET /runs/month/{month} Runs runsMonth
// @Summary Month detail with a Monday-aligned week grid
// @Tags Runs
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Success 200 {object} domain.MonthDetail "ok"
// @Router /runs/month/{month} [get]
func (h *handlers) month(r *stdhttp.Request) (any, error) {
	return h.svc.Month(r.Context(), chi.URLParam(r, "month"))
}

// swagger:route GET /runs/week/{week_start_date} Runs runsWeek
// @Summary Week detail with dense hours
// @Tags Runs
// @Produce json
// @Param week_start_date path string true "Monday week start (YYYY-MM-DD)"
// @Success 200 {object} domain.WeekDetail "ok"
// @Router /runs/week/{week_start_date} [get]
func (h *handlers) week(r *stdhttp.Request) (any, error) {
	return h.svc.Week(r.Context(), chi.URLParam(r, "week_start_date"))
}

// swagger:route GET /runs/top-lines Runs runsTopLines
// @Summary Busiest transit lines across the active run
// @Tags Runs
// @Produce json
// @Success 200 {array} domain.TopLine "ok"
// @Router /runs/top-lines [get]
func (h *handlers) topLines(r *stdhttp.Request) (any, error) {
	return h.svc.TopLines(r.Context())
}

// swagger:route POST /runs/upload Runs runsUpload
// @Summary Upload a raw export, analyze it, and switch the active run
// @Tags Runs
// @Accept json
// @Produce json
// @Success 200 {object} domain.UploadResult "ok"
// @Router /runs/upload [post]
func (h *handlers) upload(r *stdhttp.Request) (any, error) {
	defer r.Body.Close()
	return h.svc.Upload(r.Context(), r.Body)
}
