// Package main provides admin management utilities for Bloggr.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"bloggr/internal/config"
	"bloggr/internal/database"
	"bloggr/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin set-role <username> <reader|author|admin>  - Change a user's role")
		fmt.Println("  go run ./cmd/admin list-admins                                - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "set-role":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin set-role <username> <reader|author|admin>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.UserRole(strings.ToLower(os.Args[3])))

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, username string, role models.UserRole) {
	if !models.ValidRole(role) {
		fmt.Printf("Invalid role %q (want reader, author or admin)\n", role)
		os.Exit(1)
	}

	var user models.User
	if err := db.Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User %q not found\n", username)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}

	if err := db.Model(&user).Update("role", role).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("User %s (ID: %d) is now a %s\n", user.Username, user.ID, role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.UserRoleAdmin).Find(&admins).Error; err != nil {
		log.Fatalf("Database error: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}
	fmt.Printf("Found %d admin(s):\n", len(admins))
	for _, admin := range admins {
		fmt.Printf("  %s <%s> (ID: %d)\n", admin.Username, admin.Email, admin.ID)
	}
}
