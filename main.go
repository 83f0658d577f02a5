package main

import (
	"log"

	_ "hubspot-connector/docs"
	"hubspot-connector/internal/app"
)

// @title HubSpot Connector API
// @version 1.0
// @description OAuth2 authorization against HubSpot and listing of CRM contacts and companies.
// @BasePath /
func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("hubspot-connector: %v", err)
	}
}
