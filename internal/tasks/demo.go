package tasks

import (
	"time"

	"taskboard/internal/models"
)

const demoOwner = "user@gmail.com"

// DemoTasks returns the sample board shown to a fresh session, with dates
// relative to now.
func DemoTasks(now time.Time) []models.Task {
	day := 24 * time.Hour
	return []models.Task{
		{
			ID:          "1",
			Title:       "Design new landing page",
			Description: "Create a modern, responsive landing page for the new product launch",
			Priority:    models.PriorityHigh,
			Status:      models.StatusInProgress,
			DueDate:     now.Add(day),
			CreatedAt:   now.Add(-day),
			UpdatedAt:   now,
			AssignedTo:  demoOwner,
			SharedWith:  []string{"colleague@example.com"},
			Tags:        []string{"design", "web"},
		},
		{
			ID:          "2",
			Title:       "Review code changes",
			Description: "Review and approve pending pull requests",
			Priority:    models.PriorityMedium,
			Status:      models.StatusPending,
			DueDate:     now,
			CreatedAt:   now.Add(-2 * day),
			UpdatedAt:   now,
			AssignedTo:  demoOwner,
			SharedWith:  []string{},
			Tags:        []string{"code", "review"},
		},
		{
			ID:          "3",
			Title:       "Update documentation",
			Description: "Update API documentation with new endpoints",
			Priority:    models.PriorityLow,
			Status:      models.StatusCompleted,
			DueDate:     now.Add(-day),
			CreatedAt:   now.Add(-3 * day),
			UpdatedAt:   now,
			AssignedTo:  demoOwner,
			SharedWith:  []string{"team@example.com"},
			Tags:        []string{"docs"},
		},
		{
			ID:          "4",
			Title:       "Prepare presentation",
			Description: "Create slides for quarterly review meeting",
			Priority:    models.PriorityHigh,
			Status:      models.StatusPending,
			DueDate:     now.Add(-2 * day),
			CreatedAt:   now.Add(-4 * day),
			UpdatedAt:   now,
			AssignedTo:  demoOwner,
			SharedWith:  []string{},
			Tags:        []string{"presentation", "meeting"},
		},
	}
}
