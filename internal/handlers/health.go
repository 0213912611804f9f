package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pingmaster-dev/pingmaster/internal/scheduler"
)

func HealthCheck(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":            "healthy",
			"scheduler_running": sched.Running(),
			"job_count":         sched.JobCount(),
			"timestamp":         time.Now().Format(time.RFC3339),
		})
	}
}
