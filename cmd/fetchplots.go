package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"meantemp-tools/betydb"
	"meantemp-tools/plotio"
)

// fetchplotsCmd represents the fetchplots command
var fetchplotsCmd = &cobra.Command{
	Use:   "fetchplots output_geojson",
	Short: "Fetch plot boundaries from a BETYdb instance",
	Long: `Query a BETYdb plot metadata service for site boundaries and write
	them as a GeoJSON FeatureCollection that 'extract' can read, so batch
	runs do not depend on the service being reachable.

	The API key can also be supplied via MEANTEMP_BETYKEY.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()

		baseURL := viper.GetString("betyURL")
		if baseURL == "" {
			logrus.Fatal("a BETYdb URL is required, set --betyURL or MEANTEMP_BETYURL")
		}
		client := betydb.NewClient(baseURL, viper.GetString("betyKey"))
		plots, err := client.SiteBoundaries(viper.GetString("date"), viper.GetString("city"))
		if err != nil {
			logrus.Fatal(err)
		}
		if len(plots) == 0 {
			logrus.Fatal("the service returned no plot boundaries")
		}
		if err := plotio.WritePlots(plots, args[0]); err != nil {
			logrus.Fatal(err)
		}
		logrus.Infof("Wrote %d plots to %s", len(plots), args[0])
	},
}

func init() {
	rootCmd.AddCommand(fetchplotsCmd)

	fetchplotsCmd.Flags().String("betyURL", "", "Base URL of the BETYdb instance")
	err := viper.BindPFlag("betyURL", fetchplotsCmd.Flags().Lookup("betyURL"))
	if err != nil {
		logrus.Exit(1)
	}

	fetchplotsCmd.Flags().String("betyKey", "", "API key for the BETYdb instance")
	err = viper.BindPFlag("betyKey", fetchplotsCmd.Flags().Lookup("betyKey"))
	if err != nil {
		logrus.Exit(1)
	}

	fetchplotsCmd.Flags().String("date", "", "Experiment date to fetch boundaries for, YYYY-MM-DD")
	err = viper.BindPFlag("date", fetchplotsCmd.Flags().Lookup("date"))
	if err != nil {
		logrus.Exit(1)
	}

	fetchplotsCmd.Flags().String("city", "", "Restrict sites to one city")
	err = viper.BindPFlag("city", fetchplotsCmd.Flags().Lookup("city"))
	if err != nil {
		logrus.Exit(1)
	}
}
