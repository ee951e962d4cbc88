package main

import (
	"log"

	api "traincrm-backend/cmd/api"
	campaignDelivery "traincrm-backend/internal/campaign/delivery"
	campaigndomain "traincrm-backend/internal/campaign/domain"
	campaignRepo "traincrm-backend/internal/campaign/repository"
	campaignUsecase "traincrm-backend/internal/campaign/usecase"
	leadDelivery "traincrm-backend/internal/lead/delivery"
	leaddomain "traincrm-backend/internal/lead/domain"
	leadRepo "traincrm-backend/internal/lead/repository"
	leadUsecase "traincrm-backend/internal/lead/usecase"
	transactionalDelivery "traincrm-backend/internal/transactional/delivery"
	transactionalUsecase "traincrm-backend/internal/transactional/usecase"
	"traincrm-backend/pkg/config"
	"traincrm-backend/pkg/database"
	"traincrm-backend/pkg/imap"
	"traincrm-backend/pkg/smtp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&leaddomain.Lead{},
		&campaigndomain.MarketingCampaign{},
		&campaigndomain.CampaignRecipient{},
		&campaigndomain.UnsubscribedEmail{},
		&campaigndomain.EmailSettings{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	leads := leadRepo.NewLeadRepository(db)
	campaigns := campaignRepo.NewCampaignRepository(db)
	recipients := campaignRepo.NewRecipientRepository(db)
	settings := campaignRepo.NewSettingsRepository(db)
	suppressions := campaignRepo.NewSuppressionRepository(db)

	// Shared SMTP client
	mailer := smtp.NewClient()

	// Lead importer: dial the configured mailbox per run
	dial := func(creds imap.Credentials) (leadUsecase.MailboxSession, error) {
		return imap.Connect(creds)
	}
	parsers := []leadUsecase.BodyParser{
		leadUsecase.NewEnquiryFormParser(cfg.EnquiryFormMarker),
	}
	importer := leadUsecase.NewImporter(leads, dial, parsers, cfg)

	// Transactional sender and campaign dispatcher
	sender := transactionalUsecase.NewSender(mailer, cfg)
	dispatcher := campaignUsecase.NewDispatcher(campaigns, recipients, settings, mailer, cfg.TrackingBaseURL)

	// Initialize HTTP handler
	handler := api.NewHandler(
		leadDelivery.NewLeadHandler(importer),
		transactionalDelivery.NewEmailHandler(sender),
		campaignDelivery.NewCampaignHandler(dispatcher, recipients, suppressions),
		cfg,
	)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
