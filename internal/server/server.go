package server

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	_ "injuryshield/docs"
	"injuryshield/internal/analytics"
	"injuryshield/internal/config"
	"injuryshield/internal/heatmap"
	"injuryshield/internal/metrics"
	"injuryshield/internal/model"
	"injuryshield/internal/ppe"
	"injuryshield/internal/utils"
	"injuryshield/pkg/log"
)

const httpXRequestId = "X-Request-Id"

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	analytics  *analytics.Service
	heatmap    *heatmap.Generator
	metrics    *metrics.Metrics
	minioCli   *minio.Client
	logger     *logrus.Entry
}

func NewServer(ctx context.Context, conf *config.Config, m *metrics.Metrics) (*Server, error) {
	gen, err := heatmap.NewGenerator(conf.HeatmapConfig())
	if err != nil {
		return nil, fmt.Errorf("invalid heatmap config: %w", err)
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		conf:      conf,
		analytics: analytics.NewService(model.AnalyticsStore{}, time.Now),
		heatmap:   gen,
		metrics:   m,
		logger:    log.GetLogger(ctx),
	}

	if conf.S3.Enabled && conf.Analytics.UploadHeatmap {
		s.minioCli, err = utils.NewMinioClient(conf.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	return s, nil
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(httpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Set(log.CtxRequestId, requestId)
		c.Header(httpXRequestId, requestId)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		logrus.Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	var err error
	if s.conf.SSLCert != "" && s.conf.SSLKey != "" {
		logrus.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		logrus.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.WithField(log.CtxRequestId, c.GetString(log.CtxRequestId)).
			Errorf("%s %s failed, %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			matched, _ := regexp.MatchString(`^[a-zA-Z0-9!@#$%^*+()]+$`, fl.Field().String())
			return matched
		})
		v.RegisterValidation("violationtype", func(fl validator.FieldLevel) bool {
			_, ok := ppe.ParseViolationType(fl.Field().String())
			return ok
		})
	}
}
