package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Verbose bool
var Debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meantemp-tools",
	Short: "Per-plot mean temperature extraction from georeferenced IR images",
	Long: `Computes the mean surface temperature of experimental field plots
	from georeferenced infrared orthoimages, using the 'extract' subcommand:
	./meantemp-tools extract [opts] [plots_geojson] [output_dir] [tif_file...]

	Plot boundaries can be fetched from a BETYdb instance beforehand with
	the 'fetchplots' subcommand.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Verbose output")
	err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	if err != nil {
		logrus.Exit(1)
	}
	rootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "d", false, "Debug output")
	err = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	if err != nil {
		logrus.Exit(1)
	}

	// Every bound flag can also come from MEANTEMP_* environment
	// variables, which is how the containerized deployment configures runs.
	viper.SetEnvPrefix("meantemp")
	viper.AutomaticEnv()
}
