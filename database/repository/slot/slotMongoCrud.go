package slotRepo

import (
	"context"
	"fmt"
	"time"

	"medichat/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (repo *MongoSlotRepo) QueryAvailable(ctx context.Context, doctorName, date string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"doctor_name":  doctorName,
		"is_available": true,
		"date_slot":    bson.M{"$regex": primitive.Regex{Pattern: "^" + date + " "}},
	}
	// Sort by _id so the slot ordinal shown to the user maps to the same
	// row when the booking is confirmed later.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer cur.Close(ctx)

	var times []string
	for cur.Next(ctx) {
		var row models.SlotRow
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode slot row: %w", err)
		}
		times = append(times, row.Time())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slot rows: %w", err)
	}
	return times, nil
}

func (repo *MongoSlotRepo) Reserve(ctx context.Context, doctorName, dateSlot string, userID int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// The availability predicate lives in the filter so the check and the
	// write are one atomic document update; a concurrent Reserve on the
	// same row matches nothing and reports ErrNoMatchingSlot.
	filter := bson.M{
		"doctor_name":  doctorName,
		"date_slot":    dateSlot,
		"is_available": true,
	}
	update := bson.M{
		"$set":      bson.M{"is_available": false, "patient_to_attend": userID},
		"$addToSet": bson.M{"patient_history": userID},
	}

	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	if res.ModifiedCount == 0 {
		return ErrNoMatchingSlot
	}
	return nil
}

func (repo *MongoSlotRepo) Release(ctx context.Context, doctorName, dateSlot string, userID int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"doctor_name":       doctorName,
		"date_slot":         dateSlot,
		"patient_to_attend": userID,
		"is_available":      false,
	}
	update := bson.M{
		"$set": bson.M{"is_available": true},
		// History keeps the row in the patient's listing as CANCELLED.
		"$unset": bson.M{"patient_to_attend": ""},
	}

	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if res.ModifiedCount == 0 {
		return ErrNoMatchingSlot
	}
	return nil
}

func (repo *MongoSlotRepo) ListForUser(ctx context.Context, userID int) ([]models.SlotRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"patient_to_attend": userID},
			bson.M{"patient_history": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.SlotRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode appointment rows: %w", err)
	}
	return rows, nil
}
