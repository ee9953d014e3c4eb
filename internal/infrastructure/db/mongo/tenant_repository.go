package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

const tenantCollection = "tenants"

// MongoTenantRepository is the gateway's replica of the platform tenant
// registry. Slugs and subdomains are stored lowercased and carry unique
// indexes; lookups only return active tenants.
type MongoTenantRepository struct {
	coll *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) *MongoTenantRepository {
	return &MongoTenantRepository{coll: db.Collection(tenantCollection)}
}

type mongoTenant struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Slug      string             `bson:"slug"`
	Subdomain string             `bson:"subdomain,omitempty"`
	Name      string             `bson:"name"`
	Active    bool               `bson:"active"`
	CreatedAt int64              `bson:"created_at"`
	UpdatedAt int64              `bson:"updated_at"`
}

func (r *MongoTenantRepository) BySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"slug": strings.ToLower(slug), "active": true})
}

func (r *MongoTenantRepository) BySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"subdomain": strings.ToLower(subdomain), "active": true})
}

func (r *MongoTenantRepository) ByID(ctx context.Context, id string) (*domain.Tenant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTenantNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "active": true})
}

func (r *MongoTenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	cur, err := r.coll.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer cur.Close(ctx)

	var tenants []domain.Tenant
	for cur.Next(ctx) {
		var mt mongoTenant
		if err := cur.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode tenant: %w", err)
		}
		tenants = append(tenants, toDomain(mt))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (r *MongoTenantRepository) findOne(ctx context.Context, filter bson.M) (*domain.Tenant, error) {
	var mt mongoTenant
	if err := r.coll.FindOne(ctx, filter).Decode(&mt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	t := toDomain(mt)
	return &t, nil
}

func toDomain(mt mongoTenant) domain.Tenant {
	return domain.Tenant{
		ID:        mt.ID.Hex(),
		Slug:      mt.Slug,
		Subdomain: mt.Subdomain,
		Name:      mt.Name,
		Active:    mt.Active,
		CreatedAt: unixToTime(mt.CreatedAt),
		UpdatedAt: unixToTime(mt.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
