package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/docketscan/internal/logger"
	"github.com/ppiankov/docketscan/internal/model"
)

const version = "docketscan v0.1.0"

var (
	cfgFile string
	verbose bool
)

var optionalKeys = []string{
	"browser.exec_path",
	"browser.remote_url",
	"browser.proxy_server",
	"http.http_proxy",
	"http.https_proxy",
	"cache.dir",
	"output.database",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docketscan",
	Short: "Docketscan - Connecticut civil case scraper with phone lookup",
	Long: `Docketscan searches the Connecticut judicial property-address search by
town, enriches every case with the defendant and property address from its
detail page, and exports the result as CSV.

Phone lookups against the people-search site are opt-in. They return
candidates only; nothing is merged into a case automatically.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(os.Stderr, viper.GetBool("output.verbose"))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.docketscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig layers defaults, the config file, DOCKETSCAN_* variables
// (including those from a local .env) and bound flags
func initConfig() {
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	if defaults, err := yaml.Marshal(model.DefaultConfig()); err == nil {
		_ = viper.ReadConfig(bytes.NewReader(defaults))
	}
	// Optional keys are omitted from the defaults document.
	for _, key := range optionalKeys {
		viper.SetDefault(key, "")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.docketscan")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DOCKETSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.MergeInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	case !errors.As(err, &notFound) && cfgFile != "":
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
	}
}

// loadConfig resolves the effective configuration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
