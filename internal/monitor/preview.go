package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"injuryshield/internal/metrics"
	"injuryshield/internal/ppe"
)

// Preview holds the latest annotated frame and serves it as an MJPEG
// stream.
type Preview struct {
	mu       sync.RWMutex
	jpeg     []byte
	analysis ppe.FrameAnalysis
	updated  time.Time
	notify   chan struct{}

	srv    *http.Server
	logger *logrus.Entry
}

// NewPreview serves the stream on addr, along with /metrics when m is set.
func NewPreview(addr string, m *metrics.Metrics) *Preview {
	p := &Preview{
		notify: make(chan struct{}),
		logger: logrus.WithField("component", "preview"),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/video_feed", p.handleVideoFeed)
	router.GET("/status", p.handleStatus)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	p.srv = &http.Server{Addr: addr, Handler: router}
	return p
}

func (p *Preview) Update(jpeg []byte, a ppe.FrameAnalysis) {
	p.mu.Lock()
	p.jpeg = jpeg
	p.analysis = a
	p.updated = time.Now()
	close(p.notify)
	p.notify = make(chan struct{})
	p.mu.Unlock()
}

func (p *Preview) latest() ([]byte, <-chan struct{}) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.notify
}

func (p *Preview) handleVideoFeed(c *gin.Context) {
	const boundary = "frame"
	c.Header("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	c.Status(http.StatusOK)

	for {
		frame, next := p.latest()
		if frame != nil {
			_, err := fmt.Fprintf(c.Writer, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(frame))
			if err == nil {
				_, err = c.Writer.Write(frame)
			}
			if err == nil {
				_, err = c.Writer.WriteString("\r\n")
			}
			if err != nil {
				return
			}
			c.Writer.Flush()
		}

		select {
		case <-c.Request.Context().Done():
			return
		case <-next:
		}
	}
}

func (p *Preview) handleStatus(c *gin.Context) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{
		"status":     p.analysis.Status,
		"persons":    p.analysis.Persons,
		"violations": len(p.analysis.Violations),
		"updated":    p.updated.UTC().Format(time.RFC3339),
	})
}

func (p *Preview) Start() {
	p.logger.Infof("preview listening on %s", p.srv.Addr)
	if err := p.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		p.logger.WithError(err).Error("preview server stopped")
	}
}

func (p *Preview) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.srv.Shutdown(ctx)
}
