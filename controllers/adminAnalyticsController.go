package controllers

import (
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Defendu/initializers"
	"github.com/Defendu/models"
	"github.com/doug-martin/goqu/v9"
)

// GetAdminAnalytics aggregates user, application, and module records into
// the summary counts and percentages shown on the admin dashboard.
// GET /admin/analytics
func GetAdminAnalytics(c *gin.Context) {
	var summary models.AdminAnalytics

	totalUsers, err := initializers.DB.From("user_profile").
		Where(goqu.C("deleted").Eq(false)).
		Count()
	if err != nil {
		log.Printf("Failed to count users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics", "details": err.Error()})
		return
	}
	summary.TotalUsers = totalUsers

	newUsers, err := initializers.DB.From("user_profile").
		Where(goqu.And(
			goqu.C("deleted").Eq(false),
			goqu.C("datetime_create").Gt(time.Now().AddDate(0, 0, -30)),
		)).
		Count()
	if err != nil {
		log.Printf("Failed to count recent signups: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics", "details": err.Error()})
		return
	}
	summary.NewUsersLast30Days = newUsers

	var roleCounts []models.RoleCount
	err = initializers.DB.From("user_profile").
		Select(goqu.C("role"), goqu.COUNT("*").As("count")).
		Where(goqu.C("deleted").Eq(false)).
		GroupBy(goqu.C("role")).
		Order(goqu.C("role").Asc()).
		ScanStructs(&roleCounts)
	if err != nil {
		log.Printf("Failed to count users by role: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics", "details": err.Error()})
		return
	}
	for i := range roleCounts {
		roleCounts[i].Percentage = percentage(roleCounts[i].Count, totalUsers)
	}
	summary.UsersByRole = roleCounts

	summary.ApplicationsByState, err = countByStatus("trainer_application")
	if err != nil {
		log.Printf("Failed to count applications by status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics", "details": err.Error()})
		return
	}

	summary.ModulesByState, err = countByStatus("training_module")
	if err != nil {
		log.Printf("Failed to count modules by status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics", "details": err.Error()})
		return
	}

	var categoryCounts []models.CategoryCount
	err = initializers.DB.From("training_module").
		Select(goqu.C("category"), goqu.COUNT("*").As("count")).
		Where(goqu.C("status").Eq(models.ModuleStatusPublished)).
		GroupBy(goqu.C("category")).
		Order(goqu.C("category").Asc()).
		ScanStructs(&categoryCounts)
	if err != nil {
		log.Printf("Failed to count published modules by category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics", "details": err.Error()})
		return
	}
	summary.PublishedByCategory = categoryCounts

	c.JSON(http.StatusOK, gin.H{"analytics": summary})
}

func countByStatus(table string) (map[string]int64, error) {
	var rows []models.StatusCount
	err := initializers.DB.From(table).
		Select(goqu.C("status"), goqu.COUNT("*").As("count")).
		GroupBy(goqu.C("status")).
		ScanStructs(&rows)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// percentage of part in total, one decimal place. Zero total yields zero.
func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
