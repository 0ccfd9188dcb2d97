package schedulerRepo

import (
	"context"
	"fmt"

	"radbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PromoteDraft atomically inserts the full appointment and deletes the draft
// that reserved its interval. Inside the transaction the equipment interval
// is re-checked against active appointments and competing drafts; a
// concurrent reservation aborts the promotion with ErrIntervalTaken rather
// than double-booking the equipment.
//
// On deployments without replica sets the transaction degrades to sequential
// writes; the draft sweep reconciles any half-applied promotion.
func (repo *MongoSchedulerRepo) PromoteDraft(ctx context.Context, draftID primitive.ObjectID, appt *models.Appointment) (primitive.ObjectID, error) {
	client := repo.apptColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var insertedID primitive.ObjectID

	txnFn := func(sc mongo.SessionContext) error {
		holders, err := repo.countIntervalHolders(sc, appt.Slot.Equipment, appt.Start, appt.End, &draftID)
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if holders > 0 {
			return ErrIntervalTaken
		}

		res, err := repo.apptColl.InsertOne(sc, appt)
		if err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		id, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
		}
		insertedID = id

		if _, err := repo.draftColl.DeleteOne(sc, bson.M{"_id": draftID}); err != nil {
			return fmt.Errorf("delete draft failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return primitive.NilObjectID, fmt.Errorf("promotion transaction failed: %w", err)
	}

	return insertedID, nil
}
