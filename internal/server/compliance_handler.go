package server

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"injuryshield/internal/dao"
	"injuryshield/internal/model"
	"injuryshield/internal/ppe"
)

const defaultPageSize = 20

func pageOf(start, limit int) (int, int) {
	if start < 0 {
		start = 0
	}
	if limit <= 0 || limit > 500 {
		limit = defaultPageSize
	}
	return start, limit
}

// snapshotUrl maps a stored snapshot reference to a fetchable url. Absolute
// urls pass through, bare file names are served from /static/snapshots.
func snapshotUrl(p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return "/static/snapshots/" + path.Base(p)
}

// @Summary List compliance logs
// @Tags logs
// @Produce json
// @Param start query int false "offset"
// @Param limit query int false "page size"
// @Param camera query string false "camera name"
// @Success 200 {object} dao.ListLogsResponse
// @Router /api/v1/logs [get]
func (s *Server) handleListLogs(c *gin.Context) {
	var req dao.ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	req.Start, req.Limit = pageOf(req.Start, req.Limit)

	logs, total, err := model.GetComplianceLogs(req.Camera, req.Start, req.Limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	resp := dao.ListLogsResponse{
		Total: total,
		Items: make([]dao.ComplianceLogSpec, 0, len(logs)),
	}
	for _, l := range logs {
		resp.Items = append(resp.Items, dao.FromComplianceLogModel(l, snapshotUrl))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get a compliance log with its violation events
// @Tags logs
// @Produce json
// @Param log_id path int true "log id"
// @Success 200 {object} dao.ComplianceLogSpec
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/logs/{log_id} [get]
func (s *Server) handleGetLog(c *gin.Context) {
	logId, err := strconv.Atoi(c.Param("log_id"))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	l, err := model.GetComplianceLog(logId)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if l == nil {
		s.writeError(c, http.StatusNotFound, fmt.Errorf("log %d not found", logId))
		return
	}
	c.JSON(http.StatusOK, dao.FromComplianceLogModel(l, snapshotUrl))
}

// @Summary List violation events
// @Tags violations
// @Produce json
// @Param start query int false "offset"
// @Param limit query int false "page size"
// @Param type query string false "violation type, e.g. no-helmet"
// @Param resolved query bool false "resolution state"
// @Param camera query string false "camera name"
// @Success 200 {object} dao.ListViolationsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/violations [get]
func (s *Server) handleListViolations(c *gin.Context) {
	var req dao.ListViolationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	req.Start, req.Limit = pageOf(req.Start, req.Limit)

	filter := model.ViolationFilter{
		Resolved: req.Resolved,
		Camera:   req.Camera,
	}
	if req.Type != "" {
		vt, _ := ppe.ParseViolationType(req.Type)
		filter.Type = string(vt)
	}

	events, total, err := model.GetViolationEvents(filter, req.Start, req.Limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	resp := dao.ListViolationsResponse{
		Total: total,
		Items: make([]dao.ViolationSpec, 0, len(events)),
	}
	for _, e := range events {
		resp.Items = append(resp.Items, dao.FromViolationModel(e))
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a violation event resolved
// @Tags violations
// @Produce json
// @Param violation_id path int true "violation id"
// @Success 200 {object} dao.ViolationSpec
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/violations/{violation_id}/resolve [put]
func (s *Server) handleResolveViolation(c *gin.Context) {
	violationId, err := strconv.Atoi(c.Param("violation_id"))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	e, err := model.ResolveViolationEvent(violationId)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if e == nil {
		s.writeError(c, http.StatusNotFound, fmt.Errorf("violation %d not found", violationId))
		return
	}

	user := c.MustGet(userKey).(*model.User)
	s.logger.Infof("violation %d resolved by %s", e.Id, user.Username)
	c.JSON(http.StatusOK, dao.FromViolationModel(e))
}
