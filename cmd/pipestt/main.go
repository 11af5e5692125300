package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RichFesler/rpi-offline-voice-control/internal/config"
	"github.com/RichFesler/rpi-offline-voice-control/internal/preflight"
	"github.com/RichFesler/rpi-offline-voice-control/internal/recognizer/voskengine"
	"github.com/RichFesler/rpi-offline-voice-control/internal/runner"
)

var version = "dev"

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pipestt",
	Short: "Streaming speech-to-text for piped audio, published over MQTT",
	Long: `pipestt consumes raw 16-bit mono PCM audio on stdin (e.g. from ffmpeg or
arecord), transcribes it with a local Vosk model and publishes partial and
final results to MQTT topics.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		checkCmd(),
		configureCmd(),
		versionCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Transcribe audio from stdin until the stream ends",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load() // optional .env for broker credentials

			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			cfg := mgr.GetConfig()
			applyLogLevel(cfg)
			mgr.OnReload = applyLogLevel

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := mgr.StartWatching(ctx); err != nil {
				log.Warn("config watching disabled", "err", err)
			}
			defer mgr.Stop()

			if status := preflight.CheckModel(cfg.Model.Path); !status.OK {
				return fmt.Errorf("%s", status.Detail)
			}

			return runner.New(cfg, voskengine.New).Run(ctx, os.Stdin)
		},
	}
}

func applyLogLevel(cfg *config.Config) {
	lvl, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warn("invalid log level, keeping current", "level", cfg.Logging.Level)
		return
	}
	log.SetLevel(lvl)
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify model data and broker reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			failed := false
			report := func(name string, status preflight.Status) {
				if status.OK {
					fmt.Printf("%s %s: %s\n", styleOK.Render("ok"), name, status.Detail)
				} else {
					failed = true
					fmt.Printf("%s %s: %s\n", styleFail.Render("fail"), name, status.Detail)
				}
			}

			report("model", preflight.CheckModel(cfg.Model.Path))
			if cfg.Broker.Enabled {
				report("broker", preflight.CheckBroker(cfg.Broker.Address, cfg.Broker.Port, cfg.Broker.ConnectTimeout))
			}

			if failed {
				return fmt.Errorf("preflight checks failed")
			}
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			portStr := strconv.Itoa(cfg.Broker.Port)
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Model directory").
						Description("Path to the Vosk model data").
						Value(&cfg.Model.Path),
					huh.NewInput().
						Title("Broker address").
						Value(&cfg.Broker.Address),
					huh.NewInput().
						Title("Broker port").
						Value(&portStr).
						Validate(func(s string) error {
							p, err := strconv.Atoi(s)
							if err != nil || p <= 0 || p > 65535 {
								return fmt.Errorf("enter a port between 1 and 65535")
							}
							return nil
						}),
					huh.NewInput().
						Title("Client ID").
						Value(&cfg.Broker.ClientID),
					huh.NewInput().
						Title("Final results topic").
						Value(&cfg.Broker.FinalTopic),
					huh.NewInput().
						Title("Partial results topic").
						Value(&cfg.Broker.PartialTopic),
					huh.NewConfirm().
						Title("Show live results in the console?").
						Value(&cfg.Console.Enabled),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("configuration wizard error: %w", err)
			}
			cfg.Broker.Port, _ = strconv.Atoi(portStr)

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			configPath, _ := config.GetConfigPath()
			fmt.Printf("\n%s configuration saved to %s\n", styleOK.Render("ok"), configPath)
			fmt.Println("\nRun it with piped audio, e.g.:")
			fmt.Println("  arecord -f S16_LE -r 16000 -c 1 -t raw | pipestt serve")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
