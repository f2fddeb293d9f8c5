package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Feature":
		return db.AutoMigrate(Feature{})

	case "Comment":
		return db.AutoMigrate(Comment{})

	case "Reply":
		return db.AutoMigrate(Reply{})

	case "Map":
		return db.AutoMigrate(Map{})

	case "History":
		return db.AutoMigrate(History{})

	case "User":
		return db.AutoMigrate(User{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表结构
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		Feature{},
		Comment{},
		Reply{},
		Map{},
		History{},
		User{},
	)
}
