package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Trendyol/go-triton-client/base"
	tritonGrpc "github.com/Trendyol/go-triton-client/client/grpc"
	"gocv.io/x/gocv"

	"injuryshield/internal/config"
	"injuryshield/internal/detect"
)

// TritonDetector runs the PPE model served by Triton. The model takes a
// HxWx3 UINT8 FRAME and returns DETECTIONS rows of
// x1,y1,x2,y2,confidence,class_id.
type TritonDetector struct {
	cli           base.Client
	modelName     string
	labels        []string
	minConfidence float64
}

func NewTritonDetector(conf config.TritonConfig, labels []string, minConfidence float64) (*TritonDetector, error) {
	cli, err := tritonGrpc.NewClient(
		conf.ServerAddr,
		false, // verbose logging
		30,    // connection timeout in seconds
		30,    // network timeout in seconds
		false, // use ssl
		true,  // insecure connection
		nil,   // existing grpc connection
		nil,   // logger
	)
	if err != nil {
		return nil, err
	}
	return &TritonDetector{
		cli:           cli,
		modelName:     conf.ModelName,
		labels:        labels,
		minConfidence: minConfidence,
	}, nil
}

func (d *TritonDetector) Ready(ctx context.Context) error {
	if isLive, err := d.cli.IsServerLive(ctx, nil); err != nil {
		return err
	} else if !isLive {
		return errors.New("triton server is not live")
	}

	if isReady, err := d.cli.IsServerReady(ctx, nil); err != nil {
		return err
	} else if !isReady {
		return errors.New("triton server is not ready")
	}

	if isReady, err := d.cli.IsModelReady(ctx, d.modelName, "1", nil); err != nil {
		return err
	} else if !isReady {
		return fmt.Errorf("triton model %s is not ready", d.modelName)
	}
	return nil
}

func (d *TritonDetector) Detect(ctx context.Context, frame *gocv.Mat) ([]detect.Detection, error) {
	frameInput := tritonGrpc.NewInferInput("FRAME", "BYTES", []int64{int64(frame.Rows()), int64(frame.Cols()), 3}, nil)
	if err := frameInput.SetData(frame.ToBytes(), true); err != nil {
		return nil, fmt.Errorf("failed to set FRAME input data: %v", err)
	}
	frameInput.SetDatatype("UINT8")

	outputs := []base.InferOutput{
		tritonGrpc.NewInferOutput("DETECTIONS", map[string]any{"binary_data": false}),
	}

	response, err := d.cli.Infer(ctx, d.modelName, "1", []base.InferInput{frameInput}, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %v", err)
	}

	raw, err := response.AsFloat32Slice("DETECTIONS")
	if err != nil {
		return nil, fmt.Errorf("failed to get detection data: %v", err)
	}

	return detect.DecodeRows(raw, d.labels, d.minConfidence), nil
}
