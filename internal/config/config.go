package config

import (
	"path"

	"injuryshield/internal/heatmap"
	"injuryshield/internal/model"
)

type S3Config struct {
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKeyID     string `yaml:"accessKeyID" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secretAccessKey" env:"S3_SECRET_ACCESS_KEY"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED"`
}

func (s3 *S3Config) UrlPrefix() string {
	if s3.UseSSL {
		return "https://" + s3.Endpoint + "/" + s3.Bucket
	}
	return "http://" + s3.Endpoint + "/" + s3.Bucket
}

type NSQConfig struct {
	NSQDAddr  string   `yaml:"nsqdAddr" env:"NSQD_ADDR"`
	NSQDAddrs []string `yaml:"nsqdAddrs" env:"NSQD_ADDRS" envSeparator:","`
	Topic     string   `yaml:"topic"`
	Channel   string   `yaml:"channel"`
}

type TritonConfig struct {
	ServerAddr string `yaml:"serverAddr" env:"TRITON_ADDR"`
	ModelName  string `yaml:"modelName"`
}

type DetectionConfig struct {
	// Comma separated class names in model output order. LabelsFile wins when set.
	Labels        string   `yaml:"labels"`
	LabelsFile    string   `yaml:"labelsFile"`
	ConfThreshold float64  `yaml:"confThreshold"`
	IoUThreshold  float64  `yaml:"iouThreshold"`
	MinOverlap    float64  `yaml:"minOverlap"`
	RequiredPPE   []string `yaml:"requiredPPE"`
}

type AlertConfig struct {
	CooldownSeconds      int    `yaml:"cooldownSeconds"`
	TwilioAccountSID     string `yaml:"twilioAccountSID" env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `yaml:"twilioAuthToken" env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber    string `yaml:"twilioPhoneNumber" env:"TWILIO_PHONE_NUMBER"`
	RecipientPhoneNumber string `yaml:"recipientPhoneNumber" env:"ALERT_RECIPIENT_PHONE_NUMBER"`
}

func (a AlertConfig) SMSEnabled() bool {
	return a.TwilioAccountSID != "" && a.TwilioAuthToken != "" &&
		a.TwilioPhoneNumber != "" && a.RecipientPhoneNumber != ""
}

type MonitorConfig struct {
	Source              string `yaml:"source" env:"MONITOR_SOURCE"`
	Camera              string `yaml:"camera"`
	DisplayWidth        int    `yaml:"displayWidth"`
	DisplayHeight       int    `yaml:"displayHeight"`
	IntervalMs          int    `yaml:"intervalMs"`
	LogIntervalSeconds  int    `yaml:"logIntervalSeconds"`
	SaveSnapshot        bool   `yaml:"saveSnapshot"`
	SnapshotConsecutive int    `yaml:"snapshotConsecutive"`
	// store writes reports straight to the database, nsq spools and publishes them.
	Sink string `yaml:"sink"`
	// Annotated MJPEG preview, disabled when empty.
	PreviewAddr string `yaml:"previewAddr" env:"MONITOR_PREVIEW_ADDR"`
}

type AnalyticsConfig struct {
	HeatmapWidth      int     `yaml:"heatmapWidth"`
	HeatmapHeight     int     `yaml:"heatmapHeight"`
	HeatmapGridWidth  int     `yaml:"heatmapGridWidth"`
	HeatmapGridHeight int     `yaml:"heatmapGridHeight"`
	HeatmapMaxPoints  int     `yaml:"heatmapMaxPoints"`
	HeatmapBlurSigma  float64 `yaml:"heatmapBlurSigma"`
	UploadHeatmap     bool    `yaml:"uploadHeatmap"`
	HourlyDays        int     `yaml:"hourlyDays"`
	DailyDays         int     `yaml:"dailyDays"`
	DistributionDays  int     `yaml:"distributionDays"`
	MetricsHours      int     `yaml:"metricsHours"`
}

type Config struct {
	Addr      string          `yaml:"addr" env:"INJURYSHIELD_ADDR"`
	SSLCert   string          `yaml:"sslCert"`
	SSLKey    string          `yaml:"sslKey"`
	JwtSecret string          `yaml:"jwtSecret" env:"INJURYSHIELD_JWT_SECRET"`
	LogFile   string          `yaml:"logFile"`
	WorkDir   string          `yaml:"workDir" env:"INJURYSHIELD_DATA"`
	DB        model.DBConfig  `yaml:"db"`
	S3        S3Config        `yaml:"s3"`
	NSQ       NSQConfig       `yaml:"nsq"`
	Triton    TritonConfig    `yaml:"triton"`
	Detection DetectionConfig `yaml:"detection"`
	Alert     AlertConfig     `yaml:"alert"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

func (c Config) SnapshotDir() string {
	return path.Join(c.WorkDir, "static", "snapshots")
}

func (c Config) ReportDir() string {
	return path.Join(c.WorkDir, "static", "reports")
}

func (c Config) SpoolDir() string {
	return path.Join(c.WorkDir, "spool")
}

// HeatmapConfig renders in the monitor's display frame, which is where
// violation locations are measured.
func (c Config) HeatmapConfig() heatmap.Config {
	return heatmap.Config{
		FrameWidth:   c.Monitor.DisplayWidth,
		FrameHeight:  c.Monitor.DisplayHeight,
		GridWidth:    c.Analytics.HeatmapGridWidth,
		GridHeight:   c.Analytics.HeatmapGridHeight,
		OutputWidth:  c.Analytics.HeatmapWidth,
		OutputHeight: c.Analytics.HeatmapHeight,
		MaxPoints:    c.Analytics.HeatmapMaxPoints,
		Sigma:        c.Analytics.HeatmapBlurSigma,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Addr:    "127.0.0.1:8081",
		WorkDir: "./app_data",
		DB:      *model.DefaultDBConfig(),
		S3: S3Config{
			Bucket:   "injuryshield",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		NSQ: NSQConfig{
			NSQDAddr:  "localhost:4150",
			NSQDAddrs: []string{"localhost:4150"},
			Topic:     "ppe_reports",
			Channel:   "injuryshield-consumer",
		},
		Triton: TritonConfig{
			ServerAddr: "localhost:8001",
			ModelName:  "ppe_yolov8",
		},
		Detection: DetectionConfig{
			Labels:        "person,helmet,vest,gloves,no-helmet,no-vest,no-gloves",
			ConfThreshold: 0.50,
			IoUThreshold:  0.45,
			MinOverlap:    0.5,
			RequiredPPE:   []string{"helmet", "vest"},
		},
		Alert: AlertConfig{
			CooldownSeconds: 60,
		},
		Monitor: MonitorConfig{
			Source:              "0",
			Camera:              "default",
			DisplayWidth:        1280,
			DisplayHeight:       720,
			IntervalMs:          200,
			LogIntervalSeconds:  5,
			SaveSnapshot:        true,
			SnapshotConsecutive: 5,
			Sink:                "store",
			PreviewAddr:         "127.0.0.1:8082",
		},
		Analytics: AnalyticsConfig{
			HeatmapWidth:      640,
			HeatmapHeight:     480,
			HeatmapGridWidth:  160,
			HeatmapGridHeight: 120,
			HeatmapMaxPoints:  5000,
			HeatmapBlurSigma:  2,
			HourlyDays:        7,
			DailyDays:         30,
			DistributionDays:  30,
			MetricsHours:      24,
		},
	}
}
