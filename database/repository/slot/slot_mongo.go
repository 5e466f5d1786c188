package slotRepo

import (
	"medichat/config"
	"medichat/database"

	"go.mongodb.org/mongo-driver/mongo"
)

const slotCollection = "doctor_availability"

// MongoSlotRepo is the MongoDB-backed slot repository.
type MongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo returns a slot repository over the doctor_availability
// collection of the configured database.
func NewMongoSlotRepo() *MongoSlotRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseDB)
	return &MongoSlotRepo{coll: db.Collection(slotCollection)}
}
