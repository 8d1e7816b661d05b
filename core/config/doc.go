// Package config provides configuration management for the PMS sync service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (loaded with godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, locale defaults)
//   - Database: MySQL connection details
//   - Log: Logging level and format
//   - Guesty: vendor API environment, auth mode and credentials
//   - Archive: S3/MinIO settings for the webhook payload archive
//   - Broker: RabbitMQ settings for the command relay
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
