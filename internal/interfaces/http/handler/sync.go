package handler

import (
	"errors"
	"net/http"
	"strconv"

	catalogapp "github.com/catalogsync/backend/internal/application/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/scheduler"
	"github.com/catalogsync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SyncHandler triggers catalog synchronization and reports its status
type SyncHandler struct {
	BaseHandler
	syncService *catalogapp.SyncService
	submitter   scheduler.SyncSubmitter
}

// NewSyncHandler creates a new SyncHandler. submitter may be nil, in which
// case asynchronous requests are refused.
func NewSyncHandler(syncService *catalogapp.SyncService, submitter scheduler.SyncSubmitter) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		submitter:   submitter,
	}
}

// SyncJobResponse identifies a queued sync job
// @Description Queued sync job
type SyncJobResponse struct {
	JobID   uuid.UUID `json:"job_id"`
	Trigger string    `json:"trigger" example:"manual"`
	Status  string    `json:"status" example:"PENDING"`
}

// Sync godoc
// @ID           syncProducts
// @Summary      Synchronize products with the catalog source
// @Description  Fetches the upstream catalog and upserts every record, keeping local deletion flags. Returns every stored product, deleted or not, with the sweep counts as metadata. With async=true the sweep is queued instead and 202 is returned.
// @Tags         products
// @Produce      json
// @Param        async query bool false "Queue the sweep instead of waiting for it"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Success      202 {object} APIResponse[SyncJobResponse]
// @Failure      502 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /products/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		h.enqueue(c)
		return
	}

	result, err := h.syncService.Reconcile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, catalogapp.ToProductResponses(result.Products), catalogapp.ToSyncSummaryResponse(result))
}

func (h *SyncHandler) enqueue(c *gin.Context) {
	if h.submitter == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Background synchronization is disabled")
		return
	}

	job, err := h.submitter.ScheduleSync(scheduler.JobTriggerManual)
	if err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) || errors.Is(err, scheduler.ErrJobQueueFull) {
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, err.Error())
			return
		}
		h.HandleError(c, err)
		return
	}

	// a worker may already own the job, so its status is not read back
	h.Accepted(c, SyncJobResponse{
		JobID:   job.ID,
		Trigger: string(job.Trigger),
		Status:  string(scheduler.JobStatusPending),
	})
}

// Status godoc
// @ID           getSyncStatus
// @Summary      Latest synchronization run
// @Description  Returns the most recent sweep with its trigger, status and counts.
// @Tags         products
// @Produce      json
// @Success      200 {object} APIResponse[catalogapp.SyncRunResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	run, err := h.syncService.LatestRun(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, catalogapp.ToSyncRunResponse(run))
}
