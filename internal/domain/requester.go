package domain

import "github.com/google/uuid"

// Requester is the acting identity supplied by the session. Admins see every entity;
// everyone else is confined to EntityID.
type Requester struct {
	UserID   string
	Role     string
	Admin    bool
	EntityID *uuid.UUID
}

// CanAccessEntity reports whether the requester may read or certify the entity's collections.
func (r Requester) CanAccessEntity(entityID uuid.UUID) bool {
	if r.Admin {
		return true
	}
	return r.EntityID != nil && *r.EntityID == entityID
}

// Actor is the identity recorded in audit entries.
func (r Requester) Actor() string {
	if r.UserID == "" {
		return "system"
	}
	return r.UserID
}

// AllModels lists every table owned or read by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&GeneratingEntity{},
		&CollectionPoint{},
		&ResidueType{},
		&Certificate{},
		&CertificateResidue{},
		&CertificateLog{},
		&WasteCollection{},
		&WasteCollectionResidue{},
	}
}
