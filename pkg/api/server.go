package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/splitfare/splitfare/pkg/api/routes"
	"github.com/splitfare/splitfare/pkg/hafas"
	"github.com/splitfare/splitfare/pkg/split"
	"github.com/splitfare/splitfare/pkg/stats"
	"github.com/splitfare/splitfare/pkg/urlresolve"
)

func SetupServer(listen string) error {
	requestCounter := stats.NewRequestCounter()
	gateway := hafas.NewClient(requestCounter, hafas.NewResponseCache())
	analyzer := split.NewAnalyzer(gateway)
	resolver := urlresolve.NewResolver()

	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.JourneysRouter(group.Group("/journeys"), gateway, requestCounter)
	routes.SplitJourneyRouter(group.Group("/split-journey"), analyzer)
	routes.ParseURLRouter(group.Group("/parse-url"), resolver)

	return webApp.Listen(listen)
}
