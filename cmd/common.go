package cmd

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"injuryshield/internal/config"
	"injuryshield/internal/model"
	"injuryshield/pkg/log"
)

// loadConfig reads the config file and re-targets logging when the file
// names a log file and the flag did not.
func loadConfig() *config.Config {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}
	if logFile == "" && conf.LogFile != "" {
		log.InitLog(logLevel, conf.LogFile)
	}
	return conf
}

func openDB(conf *config.Config) (*gorm.DB, func()) {
	db, err := model.InitDB(conf.DB)
	if err != nil {
		logrus.Fatal("failed to init database, ", err)
	}
	return db, func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}
}
