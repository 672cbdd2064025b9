package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/plantline/opsconsole/internal/config"
	"github.com/plantline/opsconsole/internal/domain/workflow"
	"github.com/plantline/opsconsole/internal/infrastructure/persistence/repository"
	"github.com/plantline/opsconsole/pkg/database"
	"github.com/plantline/opsconsole/pkg/utils"
)

// Seeds the workflow template catalog with the builtin templates.
// Safe to run repeatedly: existing templates are updated in place.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stdout",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	templateRepo := repository.NewWorkflowTemplateRepository(db.DB, logger)

	ctx := context.Background()
	for _, tmpl := range workflow.BuiltinTemplates() {
		if violations := workflow.ValidateGraph(tmpl.Graph); !violations.Valid() {
			logger.Fatal("Builtin template has an invalid graph",
				zap.String("template_id", tmpl.ID),
				zap.Int("violations", len(violations)))
		}

		t := tmpl
		if err := templateRepo.Upsert(ctx, &t); err != nil {
			logger.Fatal("Failed to seed template",
				zap.String("template_id", tmpl.ID), zap.Error(err))
		}
		logger.Info("Template seeded", zap.String("template_id", tmpl.ID), zap.String("name", tmpl.Name))
	}

	logger.Info("Template catalog seeded")
}
