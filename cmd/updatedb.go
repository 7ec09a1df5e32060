package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"injuryshield/internal/model"
)

var insertTestData bool

var updateDBCommand = &cobra.Command{
	Use:   "updatedb",
	Short: "Create or migrate database tables",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()

		db, closeDB := openDB(conf)
		defer closeDB()

		if err := model.AutoMigrate(db); err != nil {
			logrus.Fatal("failed to auto migrate database, ", err)
		}
		logrus.Infof("database tables updated")

		if insertTestData {
			if err := model.InsertTestData(db); err != nil {
				logrus.Fatal("failed to insert test data, ", err)
			}
			logrus.Infof("test data inserted, login with admin/admin123")
		}
	},
}

func init() {
	updateDBCommand.Flags().BoolVarP(&insertTestData, "insert-test-data", "t", false, "Insert an admin user and a week of sample data")
}
