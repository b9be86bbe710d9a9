package database

import (
	"gorm.io/gorm"

	"github.com/atelier-studio/atelier-backend/models"
)

type Database struct {
	projectRepo *ProjectRepo
	userRepo    *UserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo: NewProjectRepo(db),
		userRepo:    NewUserRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// Migrate brings the schema up to date for every model the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Project{})
}
