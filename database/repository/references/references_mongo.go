package referencesRepo

import (
	"context"
	"fmt"
	"time"

	"radbook/config"
	"radbook/database"
	"radbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReferencesRepository defines read access to the booking reference
// collections: organizations, branches, services and procedures.
type ReferencesRepository interface {
	FindOrganizations(ctx context.Context) ([]models.Organization, error)
	FindBranches(ctx context.Context, organization primitive.ObjectID) ([]models.Branch, error)
	FindServices(ctx context.Context, branch primitive.ObjectID) ([]models.Service, error)
	FindProcedures(ctx context.Context, service primitive.ObjectID) ([]models.Procedure, error)
	GetProcedureByID(ctx context.Context, id primitive.ObjectID) (*models.Procedure, error)
	GetBranchByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error)
}

// MongoReferencesRepo implements ReferencesRepository using MongoDB.
type MongoReferencesRepo struct {
	orgColl       *mongo.Collection
	branchColl    *mongo.Collection
	serviceColl   *mongo.Collection
	procedureColl *mongo.Collection
}

// NewMongoReferencesRepo constructs a new instance of MongoReferencesRepo.
func NewMongoReferencesRepo() ReferencesRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoReferencesRepo{
		orgColl:       db.Collection("organizations"),
		branchColl:    db.Collection("branches"),
		serviceColl:   db.Collection("services"),
		procedureColl: db.Collection("procedures"),
	}
}

// FindOrganizations lists active organizations sorted by name.
func (repo *MongoReferencesRepo) FindOrganizations(ctx context.Context) ([]models.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := repo.orgColl.Find(ctx, bson.M{"status": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching organizations: %w", err)
	}
	defer cursor.Close(ctx)

	var orgs []models.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("error decoding organizations: %w", err)
	}
	return orgs, nil
}

// FindBranches lists active branches of an organization sorted by name.
func (repo *MongoReferencesRepo) FindBranches(ctx context.Context, organization primitive.ObjectID) ([]models.Branch, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"fk_organization": organization, "status": true}
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := repo.branchColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching branches: %w", err)
	}
	defer cursor.Close(ctx)

	var branches []models.Branch
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, fmt.Errorf("error decoding branches: %w", err)
	}
	return branches, nil
}

// FindServices lists active imaging services at a branch sorted by name.
func (repo *MongoReferencesRepo) FindServices(ctx context.Context, branch primitive.ObjectID) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"fk_branch": branch, "status": true}
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := repo.serviceColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("error decoding services: %w", err)
	}
	return services, nil
}

// FindProcedures lists active procedures bookable on a service. The service's
// modality is resolved first; procedures are keyed by modality.
func (repo *MongoReferencesRepo) FindProcedures(ctx context.Context, service primitive.ObjectID) ([]models.Procedure, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := repo.serviceColl.FindOne(ctx, bson.M{"_id": service}).Decode(&svc); err != nil {
		return nil, fmt.Errorf("error fetching service with id %s: %w", service.Hex(), err)
	}

	filter := bson.M{"fk_modality": svc.FkModality, "status": true}
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := repo.procedureColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching procedures: %w", err)
	}
	defer cursor.Close(ctx)

	var procedures []models.Procedure
	if err := cursor.All(ctx, &procedures); err != nil {
		return nil, fmt.Errorf("error decoding procedures: %w", err)
	}
	return procedures, nil
}

// GetBranchByID retrieves a branch document by ID.
func (repo *MongoReferencesRepo) GetBranchByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var branch models.Branch
	if err := repo.branchColl.FindOne(ctx, bson.M{"_id": id}).Decode(&branch); err != nil {
		return nil, fmt.Errorf("error fetching branch with id %s: %w", id.Hex(), err)
	}
	return &branch, nil
}

// GetProcedureByID retrieves a procedure document by ID.
func (repo *MongoReferencesRepo) GetProcedureByID(ctx context.Context, id primitive.ObjectID) (*models.Procedure, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var procedure models.Procedure
	if err := repo.procedureColl.FindOne(ctx, bson.M{"_id": id}).Decode(&procedure); err != nil {
		return nil, fmt.Errorf("error fetching procedure with id %s: %w", id.Hex(), err)
	}
	return &procedure, nil
}
