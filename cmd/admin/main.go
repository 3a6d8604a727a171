// Command admin prints messaging stats for operators: user and message
// totals plus per-user unread backlogs. Read-only.
package main

import (
	"flag"
	"fmt"
	"log"

	"socialgo/backend/internal/config"
	"socialgo/backend/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	user := flag.String("user", "", "print unread backlog for one user ID")
	flag.Parse()

	_ = godotenv.Load()
	config.Load()

	db, err := gorm.Open(postgres.Open(config.AppConfig.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatalf("failed to connect PostgreSQL: %v", err)
	}

	if *user != "" {
		var unread int64
		err := db.Raw(
			`SELECT count(*) FROM messages
			 WHERE ? = ANY(recipients) AND sender_id <> ? AND NOT (read_by @> ARRAY[?]::text[])`,
			*user, *user, *user,
		).Scan(&unread).Error
		if err != nil {
			log.Fatalf("failed to count unread: %v", err)
		}
		fmt.Printf("user %s: %d unread message(s)\n", *user, unread)
		return
	}

	var users, messages, notifications int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Message{}).Count(&messages)
	db.Model(&models.Notification{}).Count(&notifications)

	var conversations int64
	db.Model(&models.Message{}).Distinct("conversation_id").Count(&conversations)

	fmt.Printf("users:          %d\n", users)
	fmt.Printf("messages:       %d\n", messages)
	fmt.Printf("conversations:  %d\n", conversations)
	fmt.Printf("notifications:  %d\n", notifications)
}
