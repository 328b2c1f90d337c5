// Command novademy is a terminal front end for the Novademy API: it wires
// the session-aware client pipeline into the auth, catalog, package and
// chatbot services and exposes each operation as a subcommand.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/novademy/novademy-go/auth"
	"github.com/novademy/novademy-go/catalog"
	"github.com/novademy/novademy-go/chatbot"
	"github.com/novademy/novademy-go/client"
	"github.com/novademy/novademy-go/internal/config"
	"github.com/novademy/novademy-go/packages"
	"github.com/novademy/novademy-go/session"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired services shared by every subcommand.
type app struct {
	auth     *auth.Service
	catalog  *catalog.Service
	packages *packages.Service
	chatbot  *chatbot.Service
	client   *client.Client
}

func newApp(verbose bool) (*app, error) {
	cfg := config.New()

	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}

	store, err := session.NewFileStore(cfg.GetDataFolder())
	if err != nil {
		return nil, err
	}

	apiClient, err := client.New(cfg, store, client.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(apiClient, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	catalogService, err := catalog.NewService(apiClient)
	if err != nil {
		return nil, err
	}
	packageService, err := packages.NewService(apiClient, packages.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	chatbotService, err := chatbot.NewService(apiClient, chatbot.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &app{
		auth:     authService,
		catalog:  catalogService,
		packages: packageService,
		chatbot:  chatbotService,
		client:   apiClient,
	}, nil
}

func newRootCommand() *cobra.Command {
	var verbose bool
	var application *app

	cmd := &cobra.Command{
		Use:           "novademy",
		Short:         "Client for the Novademy online-education platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(verbose)
			if err != nil {
				return err
			}
			application = a
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppName(config.New().GetAppName())
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	get := func() *app { return application }
	cmd.AddCommand(newAuthCommands(get)...)
	cmd.AddCommand(newCatalogCommands(get)...)
	cmd.AddCommand(newPackageCommands(get)...)
	cmd.AddCommand(newAskCommand(get))
	return cmd
}

func displayAppName(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
