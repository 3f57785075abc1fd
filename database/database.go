package database

import (
	"gorm.io/gorm"

	"github.com/burrowblog/burrow/models"
)

type Database struct {
	userRepo       *UserRepo
	blogRepo       *BlogRepo
	postRepo       *PostRepo
	upvoteRepo     *UpvoteRepo
	subscriberRepo *SubscriberRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		userRepo:       NewUserRepo(db),
		blogRepo:       NewBlogRepo(db),
		postRepo:       NewPostRepo(db),
		upvoteRepo:     NewUpvoteRepo(db),
		subscriberRepo: NewSubscriberRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) BlogRepo() *BlogRepo {
	return d.blogRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) UpvoteRepo() *UpvoteRepo {
	return d.upvoteRepo
}

func (d Database) SubscriberRepo() *SubscriberRepo {
	return d.subscriberRepo
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Blog{},
		&models.Post{},
		&models.Upvote{},
		&models.Subscriber{},
	)
}
