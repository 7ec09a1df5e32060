package server

import (
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"injuryshield/internal/analytics"
	"injuryshield/internal/dao"
	"injuryshield/internal/heatmap"
	"injuryshield/internal/utils"
)

const heatmapFileName = "violation_heatmap.png"

// bindDays reads ?days=, falling back to def when absent.
func (s *Server) bindDays(c *gin.Context, def int) (int, bool) {
	var req dao.AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return 0, false
	}
	if req.Days == 0 {
		return def, true
	}
	return req.Days, true
}

// @Summary Compliance metrics for the trailing window
// @Tags analytics
// @Produce json
// @Success 200 {object} analytics.MetricsResult
// @Router /api/v1/realtime_metrics [get]
func (s *Server) handleRealtimeMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.analytics.RealtimeMetrics(c.Request.Context(), s.conf.Analytics.MetricsHours))
}

// @Summary Violations per hour of day
// @Tags analytics
// @Produce json
// @Param days query int false "window in days"
// @Success 200 {object} analytics.HourlyResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/analytics/hourly [get]
func (s *Server) handleHourlyTrends(c *gin.Context) {
	days, ok := s.bindDays(c, s.conf.Analytics.HourlyDays)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.analytics.HourlyTrends(c.Request.Context(), days))
}

// @Summary Daily compliance rate
// @Tags analytics
// @Produce json
// @Param days query int false "window in days"
// @Success 200 {object} analytics.DailyResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/analytics/daily [get]
func (s *Server) handleDailySummary(c *gin.Context) {
	days, ok := s.bindDays(c, s.conf.Analytics.DailyDays)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.analytics.DailySummary(c.Request.Context(), days))
}

// @Summary Violation counts by type
// @Tags analytics
// @Produce json
// @Param days query int false "window in days"
// @Success 200 {object} analytics.DistributionResult
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/analytics/distribution [get]
func (s *Server) handleTypeDistribution(c *gin.Context) {
	days, ok := s.bindDays(c, s.conf.Analytics.DistributionDays)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.analytics.TypeDistribution(c.Request.Context(), days))
}

// @Summary Render the violation location heatmap
// @Tags analytics
// @Produce json
// @Param days query int false "window in days"
// @Success 200 {object} dao.HeatmapResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/analytics/heatmap [get]
func (s *Server) handleHeatmap(c *gin.Context) {
	days, ok := s.bindDays(c, s.conf.Analytics.DistributionDays)
	if !ok {
		return
	}

	events, ok := s.analytics.HeatmapPoints(c.Request.Context(), days)
	points := lo.Map(events, func(e analytics.Event, _ int) heatmap.Point {
		return heatmap.Point{X: e.X, Y: e.Y}
	})

	localPath := path.Join(s.conf.ReportDir(), heatmapFileName)
	res, err := s.heatmap.Generate(points, localPath)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	resp := dao.HeatmapResponse{
		Points:  res.Points,
		Dropped: res.Dropped,
		NoData:  res.NoData,
		Error:   !ok,
	}
	if res.NoData {
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Url = "/static/reports/" + heatmapFileName
	if s.minioCli != nil {
		minioPath := utils.ObjectPath("reports", "all", time.Now(), heatmapFileName)
		err := utils.UploadFileToMinio(c.Request.Context(), s.minioCli, s.conf.S3.Bucket, localPath, minioPath)
		if err != nil {
			s.logger.Warnf("upload heatmap to minio failed, %v", err)
		} else {
			resp.Url = s.conf.S3.UrlPrefix() + minioPath
		}
	}
	c.JSON(http.StatusOK, resp)
}
