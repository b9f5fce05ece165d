package api

import (
	"github.com/rs/zerolog/log"
	"github.com/splitfare/splitfare/pkg/bookinglink"
	"github.com/splitfare/splitfare/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the split ticket web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						log.Info().Err(err).Msg("Redis unavailable, provider response cache disabled")
					}

					if err := bookinglink.LoadStationOverrides(); err != nil {
						log.Error().Err(err).Msg("Failed to load station override list")
					}

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
