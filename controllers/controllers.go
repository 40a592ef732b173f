package controllers

import (
	"wellfield-backend/config"
	"wellfield-backend/services"
)

var (
	mailer  services.Mailer
	intake  *services.IntakeService
	catalog *services.CatalogService
)

// Setup wires the controller package to its services. Must run after
// config.ConnectDB.
func Setup(m services.Mailer) {
	mailer = m
	intake = services.NewIntakeService(config.DB, m)
	catalog = services.NewCatalogService(config.DB)
}
