package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   string
	BuildTime string
	cfgFile   string
)

var rootCmd = &cobra.Command{
	Use:   "mimic",
	Short: "OpenAI-compatible API proxy server",
	Long: `OpenAI API Mimic is a translation proxy that exposes the OpenAI
chat completions, embeddings and models API surface and forwards requests
to a custom inference backend with its own wire format and token auth.`,
	RunE: runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().Int("port", 8000, "server port")
	rootCmd.Flags().String("mode", "release", "server mode (debug/release/test)")

	viper.BindPFlag("server.host", rootCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.mode", rootCmd.Flags().Lookup("mode"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.openai-mimic")
	}

	// Environment variables keep the names the service has always used.
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("upstream.token_url", "TOKEN_URL")
	viper.BindEnv("upstream.chat_url", "CHAT_API_URL")
	viper.BindEnv("upstream.embedding_url", "EMBEDDING_API_URL")
	viper.BindEnv("upstream.auth_code", "AUTH_CODE")
	viper.BindEnv("upstream.verify_ssl", "VERIFY_SSL")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
