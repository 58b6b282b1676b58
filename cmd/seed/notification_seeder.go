package main

import (
	"log"

	"ai-research-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedNotificationTypes populates the database with default notification types.
func SeedNotificationTypes(db *gorm.DB) {
	types := []model.NotificationType{
		{
			Code:        "SESSION_CREATED",
			DisplayName: "Session Created",
			Template:    "Research session \"{title}\" is ready",
			TargetType:  "SELF",
			Priority:    "LOW",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "STEP_COMPLETED",
			DisplayName: "Step Completed",
			Template:    "The {step_type} step finished for \"{title}\"",
			TargetType:  "SELF",
			Priority:    "MEDIUM",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "STEP_FAILED",
			DisplayName: "Step Failed",
			Template:    "The {step_type} step failed for \"{title}\" — you can retry it",
			TargetType:  "SELF",
			Priority:    "HIGH",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "PIPELINE_COMPLETED",
			DisplayName: "Pipeline Completed",
			Template:    "All pipeline steps are done for \"{title}\"",
			TargetType:  "SELF",
			Priority:    "HIGH",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "FILE_UPLOADED",
			DisplayName: "File Analyzed",
			Template:    "\"{filename}\" was uploaded and analyzed in \"{title}\"",
			TargetType:  "SELF",
			Priority:    "LOW",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "SYSTEM_BROADCAST",
			DisplayName: "System Announcement",
			Template:    "{message}",
			TargetType:  "BROADCAST",
			Priority:    "HIGH",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
		{
			Code:        "TEST_EVENT",
			DisplayName: "Test Notification",
			Template:    "This is a test notification: {message}",
			TargetType:  "SELF",
			Priority:    "MEDIUM",
			IsActive:    true,
			Channels:    datatypes.JSON([]byte(`["web"]`)),
		},
	}

	for _, t := range types {
		var existing model.NotificationType
		if err := db.Where("code = ?", t.Code).First(&existing).Error; err == nil {
			log.Printf("Notification type '%s' already exists, skipping...", t.Code)
			continue
		}

		if err := db.Create(&t).Error; err != nil {
			log.Printf("Error creating notification type '%s': %v", t.Code, err)
		} else {
			log.Printf("Created notification type: %s", t.Code)
		}
	}
}
