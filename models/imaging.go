package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ImagingContext scopes a booking to the organization, branch and service
// that own the published slots.
type ImagingContext struct {
	Organization primitive.ObjectID `bson:"organization" json:"organization"`
	Branch       primitive.ObjectID `bson:"branch" json:"branch"`
	Service      primitive.ObjectID `bson:"service" json:"service"`
}

// Organization represents an imaging organization reference document.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ShortName string             `bson:"short_name" json:"short_name"`
	Name      string             `bson:"name" json:"name"`
	Status    bool               `bson:"status" json:"status"`
}

// Branch represents a physical branch of an organization.
type Branch struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FkOrganization primitive.ObjectID `bson:"fk_organization" json:"fk_organization"`
	ShortName      string             `bson:"short_name" json:"short_name"`
	Name           string             `bson:"name" json:"name"`
	Status         bool               `bson:"status" json:"status"`
}

// Service represents an imaging service (e.g. MRI, CT) offered at a branch.
type Service struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FkBranch   primitive.ObjectID `bson:"fk_branch" json:"fk_branch"`
	FkModality primitive.ObjectID `bson:"fk_modality" json:"fk_modality"`
	Name       string             `bson:"name" json:"name"`
	Status     bool               `bson:"status" json:"status"`
}
