// Package monitor reads a camera or video file, runs PPE detection on
// sampled frames and feeds the compliance pipeline.
package monitor

import (
	"context"
	"fmt"
	"image"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"injuryshield/internal/config"
	"injuryshield/internal/metrics"
	"injuryshield/internal/pipeline"
	"injuryshield/internal/ppe"
	"injuryshield/internal/utils"
	"injuryshield/pkg/log"
)

type Monitor struct {
	conf     *config.Config
	detector *TritonDetector
	pipeline *pipeline.Pipeline
	minioCli *minio.Client
	preview  *Preview
	metrics  *metrics.Metrics
	logger   *logrus.Entry

	wg       sync.WaitGroup
	uploadCh chan string
}

// New wires a monitor. minioCli and preview are optional.
func New(conf *config.Config, detector *TritonDetector, p *pipeline.Pipeline,
	minioCli *minio.Client, preview *Preview, m *metrics.Metrics) (*Monitor, error) {
	if err := os.MkdirAll(conf.SnapshotDir(), 0755); err != nil {
		return nil, err
	}
	return &Monitor{
		conf:     conf,
		detector: detector,
		pipeline: p,
		minioCli: minioCli,
		preview:  preview,
		metrics:  m,
		logger:   log.NewLogger().WithFields(logrus.Fields{"component": "monitor", "camera": conf.Monitor.Camera}),
		uploadCh: make(chan string, 16),
	}, nil
}

func openSource(source string) (*gocv.VideoCapture, error) {
	if idx, err := strconv.Atoi(source); err == nil {
		return gocv.OpenVideoCapture(idx)
	}
	return gocv.VideoCaptureFile(source)
}

// Run blocks until the source is exhausted or ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.detector.Ready(ctx); err != nil {
		return err
	}

	video, err := openSource(m.conf.Monitor.Source)
	if err != nil {
		return fmt.Errorf("failed to open video source: %v", err)
	}

	if m.minioCli != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.uploadRoutine(ctx)
		}()
	}

	m.logger.Info("monitor started")
	m.captureRoutine(ctx, video)
	close(m.uploadCh)
	m.wg.Wait()
	m.logger.Info("monitor stopped")
	return nil
}

func (m *Monitor) captureRoutine(ctx context.Context, input *gocv.VideoCapture) {
	fps := input.Get(gocv.VideoCaptureFPS)
	width := int(input.Get(gocv.VideoCaptureFrameWidth))
	height := int(input.Get(gocv.VideoCaptureFrameHeight))
	m.logger.Infof("video properties: %dx%d @ %.2f FPS", width, height, fps)

	frameChan := make(chan gocv.Mat, 10)

	var inferWg sync.WaitGroup
	inferWg.Add(1)
	go func() {
		defer inferWg.Done()
		m.inferRoutine(ctx, frameChan)
	}()

	defer func() {
		input.Close()
		close(frameChan)
		inferWg.Wait()
	}()

	interval := time.Duration(m.conf.Monitor.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	displaySize := image.Pt(m.conf.Monitor.DisplayWidth, m.conf.Monitor.DisplayHeight)
	lastFrameTime := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame := gocv.NewMat()
		if ok := input.Read(&frame); !ok {
			frame.Close()
			m.logger.Info("video source exhausted")
			return
		}
		if frame.Empty() {
			frame.Close()
			continue
		}
		m.metrics.FrameRead()

		if time.Since(lastFrameTime) < interval {
			frame.Close()
			continue
		}
		lastFrameTime = time.Now()

		if displaySize.X > 0 && displaySize.Y > 0 {
			resized := gocv.NewMat()
			gocv.Resize(frame, &resized, displaySize, 0, 0, gocv.InterpolationLinear)
			frame.Close()
			frame = resized
		}

		select {
		case frameChan <- frame:
		default:
			m.logger.Warnf("frame dropped, inference is busy")
			m.metrics.FrameDropped()
			frame.Close()
		}
	}
}

func (m *Monitor) inferRoutine(ctx context.Context, frameCh <-chan gocv.Mat) {
	frameCount := 0
	totalInferenceTime := time.Duration(0)
	lastLogTime := time.Now()

	for frame := range frameCh {
		frameCount++
		frameTime := time.Now().UTC()

		start := time.Now()
		dets, err := m.detector.Detect(ctx, &frame)
		inferenceTime := time.Since(start)
		totalInferenceTime += inferenceTime
		m.metrics.UpdateInferLatency(inferenceTime)
		if err != nil {
			m.logger.WithError(err).Errorf("inference error")
			frame.Close()
			continue
		}

		out := m.pipeline.Process(ctx, pipeline.Frame{
			Time:       frameTime,
			Detections: dets,
			Snapshot: func(a ppe.FrameAnalysis) (string, error) {
				return m.saveSnapshot(&frame, a, frameTime)
			},
		})

		if m.preview != nil {
			m.publishPreview(&frame, out.Analysis)
		}

		if time.Since(lastLogTime) > 5*time.Second {
			m.logger.Infof("processed %d frames in %v, avg inference time: %v, last status: %s",
				frameCount, totalInferenceTime, totalInferenceTime/time.Duration(frameCount), out.Analysis.Status)
			lastLogTime = time.Now()
			frameCount = 0
			totalInferenceTime = time.Duration(0)
		}

		frame.Close()
	}
}

func (m *Monitor) publishPreview(frame *gocv.Mat, a ppe.FrameAnalysis) {
	annotated := Annotate(frame, a)
	defer annotated.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, annotated)
	if err != nil {
		m.logger.WithError(err).Debug("encode preview frame failed")
		return
	}
	defer buf.Close()
	m.preview.Update(append([]byte(nil), buf.GetBytes()...), a)
}

// saveSnapshot writes the annotated frame as violation_snapshot_<ts>.jpg and
// returns the file name relative to the snapshot directory.
func (m *Monitor) saveSnapshot(frame *gocv.Mat, a ppe.FrameAnalysis, frameTime time.Time) (string, error) {
	annotated := Annotate(frame, a)
	defer annotated.Close()

	name := fmt.Sprintf("violation_snapshot_%s.jpg", frameTime.Format("20060102_150405.000"))
	imagePath := path.Join(m.conf.SnapshotDir(), name)
	if !gocv.IMWrite(imagePath, annotated) {
		return "", fmt.Errorf("write image file %s error", imagePath)
	}

	if m.minioCli != nil {
		select {
		case m.uploadCh <- name:
		default:
			m.logger.Warnf("upload queue full, %s stays local only", name)
		}
	}
	return name, nil
}

func (m *Monitor) uploadRoutine(ctx context.Context) {
	for name := range m.uploadCh {
		localPath := path.Join(m.conf.SnapshotDir(), name)
		minioPath := utils.ObjectPath("snapshots", m.conf.Monitor.Camera, time.Now(), name)

		uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		err := utils.UploadFileToMinio(uploadCtx, m.minioCli, m.conf.S3.Bucket, localPath, minioPath)
		cancel()
		if err != nil {
			m.logger.WithError(err).Errorf("upload snapshot %s to minio failed", name)
			continue
		}
		m.logger.Infof("uploaded snapshot %s to %s", name, minioPath)
	}
}
