package version

const APP = "injuryshield"

// Overridden at build time with -ldflags "-X injuryshield/internal/version.VERSION=..."
var (
	VERSION = "0.1.0"
	COMMIT  = "dev"
)
