package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftboard-go/pkg/config"
	"github.com/arnavshah/shiftboard-go/pkg/database"
	"github.com/arnavshah/shiftboard-go/pkg/handlers"
	"github.com/arnavshah/shiftboard-go/pkg/logger"
	"github.com/arnavshah/shiftboard-go/pkg/schedule"
	"github.com/arnavshah/shiftboard-go/pkg/store"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zlog.Sync()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		zlog.Fatal("invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		zlog.Fatal("could not open database", zap.Error(err))
	}

	st := store.NewGormStore(db)
	engine := schedule.NewEngine(st, zlog, schedule.Config{
		EnforceAvailability: cfg.EnforceAvailability,
		EnforceMaxHours:     cfg.EnforceMaxHours,
		Location:            loc,
	})
	query := schedule.NewQueryService(st, loc)
	h := &handlers.Handler{Engine: engine, Query: query, Logger: zlog}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shiftboard API",
			"version": "1.0.0",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/employees", h.CreateEmployee)
	r.GET("/employees", h.ListEmployees)
	r.GET("/employees/:id", h.GetEmployee)
	r.PUT("/employees/:id", h.UpdateEmployee)
	r.DELETE("/employees/:id", h.DeleteEmployee)
	r.GET("/employees/:id/assignments", h.EmployeeAssignments)

	r.POST("/shifts", h.CreateShift)
	r.GET("/shifts", h.ListShifts)
	r.GET("/shifts/open", h.OpenShifts)
	r.GET("/shifts/:id", h.GetShift)
	r.PUT("/shifts/:id/window", h.EditShiftWindow)
	r.DELETE("/shifts/:id", h.DeleteShift)

	r.POST("/assignments", h.CreateAssignment)
	r.POST("/assignments/validate", h.ValidateAssignment)
	r.GET("/assignments/day", h.DayAssignments)
	r.DELETE("/assignments/:id", h.DeleteAssignment)
	r.POST("/assignments/:id/reassign", h.Reassign)

	r.POST("/schedule/fill", h.FillOpenShifts)

	r.GET("/overview", h.MonthlyOverview)

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("could not run server", zap.Error(err))
	}
}
