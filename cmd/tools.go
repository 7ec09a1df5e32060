package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"injuryshield/internal/alert"
	"injuryshield/internal/analytics"
	"injuryshield/internal/config"
	"injuryshield/internal/detect"
	"injuryshield/internal/heatmap"
	"injuryshield/internal/model"
	"injuryshield/internal/monitor"
	"injuryshield/internal/ppe"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Tools for injuryshield",
	Long:  `Offline helpers: run the classifier on a video, render heatmaps, manage tokens.`,
}

var (
	inputVideo    string
	outputVideo   string
	everyNthFrame int
	heatmapDays   int
	heatmapOut    string
	tokenUser     string
	notifyText    string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run PPE detection and classification over a video file",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()
		labels, err := detect.LoadLabels(conf.Detection.Labels, conf.Detection.LabelsFile)
		if err != nil {
			logrus.Fatalf("load labels error, %v", err)
		}
		policy, err := buildPolicy(conf.Detection)
		if err != nil {
			logrus.Fatal(err)
		}
		detector, err := monitor.NewTritonDetector(conf.Triton, labels, conf.Detection.ConfThreshold)
		if err != nil {
			logrus.Fatalf("create triton client error, %v", err)
		}

		if err := classifyVideo(detector, policy, inputVideo, outputVideo); err != nil {
			logrus.Fatalf("error processing video: %v", err)
		}
		logrus.Info("video processing completed successfully")
	},
}

// classifyVideo logs a per-type tally at the end. Frames between two
// classifications are annotated with the most recent analysis.
func classifyVideo(detector *monitor.TritonDetector, policy ppe.Policy, inputPath, outputPath string) error {
	video, err := gocv.VideoCaptureFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input video: %v", err)
	}
	defer video.Close()

	fps := video.Get(gocv.VideoCaptureFPS)
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))
	logrus.Infof("video properties: %dx%d @ %.2f FPS", width, height, fps)

	var writer *gocv.VideoWriter
	if outputPath != "" {
		writer, err = gocv.VideoWriterFile(outputPath, "mp4v", fps, width, height, true)
		if err != nil {
			return fmt.Errorf("failed to create output video writer: %v", err)
		}
		defer writer.Close()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	step := max(everyNthFrame, 1)
	frameCount := 0
	processed := 0
	totalInferenceTime := time.Duration(0)
	tally := map[ppe.ViolationType]int{}
	var last ppe.FrameAnalysis

	for {
		if ok := video.Read(&frame); !ok {
			break
		}
		if frame.Empty() {
			continue
		}
		frameCount++

		if frameCount%step == 0 {
			start := time.Now()
			dets, err := detector.Detect(context.Background(), &frame)
			totalInferenceTime += time.Since(start)
			if err != nil {
				logrus.Warnf("inference error on frame %d: %v", frameCount, err)
			} else {
				last = ppe.Classify(dets, policy)
				processed++
				for _, v := range last.Violations {
					tally[v.Type]++
				}
			}
		}

		if writer != nil {
			annotated := monitor.Annotate(&frame, last)
			writer.Write(annotated)
			annotated.Close()
		}

		if frameCount%30 == 0 && processed > 0 {
			logrus.Infof("frame %d: %s, avg inference time: %.2fms", frameCount, last.Status,
				float64(totalInferenceTime.Nanoseconds())/float64(processed)/1e6)
		}
	}

	logrus.Infof("total frames: %d, classified: %d", frameCount, processed)
	for _, vt := range lo.Keys(tally) {
		logrus.Infof("%s: %d", vt.Describe(), tally[vt])
	}
	return nil
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Render the violation heatmap from stored events",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()
		_, closeDB := openDB(conf)
		defer closeDB()

		gen, err := heatmap.NewGenerator(conf.HeatmapConfig())
		if err != nil {
			logrus.Fatal(err)
		}

		svc := analytics.NewService(model.AnalyticsStore{}, time.Now)
		events, ok := svc.HeatmapPoints(context.Background(), heatmapDays)
		if !ok {
			logrus.Fatal("failed to query violation events")
		}
		points := lo.Map(events, func(e analytics.Event, _ int) heatmap.Point {
			return heatmap.Point{X: e.X, Y: e.Y}
		})

		res, err := gen.Generate(points, heatmapOut)
		if err != nil {
			logrus.Fatal(err)
		}
		if res.NoData {
			logrus.Infof("no violations in the last %d days", heatmapDays)
			return
		}
		logrus.Infof("heatmap of %d points written to %s", res.Points, res.Path)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a new access token for a user",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()
		_, closeDB := openDB(conf)
		defer closeDB()

		user, err := model.GetUserByUsername(tokenUser)
		if err != nil {
			logrus.Fatal(err)
		} else if user == nil {
			logrus.Fatalf("user %s not found", tokenUser)
		}
		user.AccessToken = model.NewAccessToken()
		if err := model.UpdateUser(user); err != nil {
			logrus.Fatal(err)
		}
		fmt.Println(user.AccessToken)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := jsonschema.Reflector{
			FieldNameTag:   "yaml",
			ExpandedStruct: true,
		}
		schema := reflector.Reflect(&config.Config{})
		schema.Title = "injuryshield config"
		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, string(out))
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a test SMS through the configured notifier",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()
		n := alert.NewNotifier(conf.Alert)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := n.Send(ctx, notifyText); err != nil {
			logrus.Fatalf("send failed, %v", err)
		}
		logrus.Info("test message sent")
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&inputVideo, "input", "i", "in.mp4", "Input video file path")
	classifyCmd.Flags().StringVarP(&outputVideo, "output", "o", "", "Annotated output video, skipped when empty")
	classifyCmd.Flags().IntVar(&everyNthFrame, "every", 5, "Classify every nth frame")

	heatmapCmd.Flags().IntVar(&heatmapDays, "days", 30, "Window in days")
	heatmapCmd.Flags().StringVarP(&heatmapOut, "output", "o", "violation_heatmap.png", "Output PNG path")

	tokenCmd.Flags().StringVarP(&tokenUser, "username", "u", "admin", "User to issue the token for")

	notifyCmd.Flags().StringVar(&notifyText, "text", "InjuryShield test alert", "Message body")

	toolsCmd.AddCommand(classifyCmd)
	toolsCmd.AddCommand(heatmapCmd)
	toolsCmd.AddCommand(tokenCmd)
	toolsCmd.AddCommand(schemaCmd)
	toolsCmd.AddCommand(notifyCmd)
}
