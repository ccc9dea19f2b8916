package role

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/schoolkit/pkg/permission"
	rolepkg "github.com/dmitrymomot/schoolkit/pkg/role"
)

// DefaultRolesCollection is the collection name used when none is given.
const DefaultRolesCollection = "roles"

// mongoStore persists roles in MongoDB. The unique indexes created by
// EnsureRoleIndexes are the authoritative uniqueness guard, mirroring the
// PostgreSQL store's partial indexes.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore builds a rolepkg.Store over a collection of the given
// database. Call EnsureRoleIndexes once at startup before seeding.
func NewMongoStore(db *mongo.Database, collection string) rolepkg.Store {
	if collection == "" {
		collection = DefaultRolesCollection
	}
	return &mongoStore{coll: db.Collection(collection)}
}

// EnsureRoleIndexes creates the uniqueness indexes concurrent bootstrap
// relies on: (tenant_id, name_folded) for tenant roles and name_folded
// across global roles.
func EnsureRoleIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	if collection == "" {
		collection = DefaultRolesCollection
	}

	_, err := db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "name_folded", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "is_global", Value: false}}),
		},
		{
			Keys: bson.D{{Key: "name_folded", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "is_global", Value: true}}),
		},
	})
	if err != nil {
		return fmt.Errorf("create role indexes: %w", err)
	}
	return nil
}

// roleDoc is the BSON shape of a stored role. UUIDs are stored as strings
// for portability; name_folded backs the case-insensitive unique indexes.
type roleDoc struct {
	ID           string    `bson:"_id"`
	TenantID     *string   `bson:"tenant_id,omitempty"`
	Name         string    `bson:"name"`
	NameFolded   string    `bson:"name_folded"`
	Description  string    `bson:"description,omitempty"`
	IsSystemRole bool      `bson:"is_system_role"`
	IsGlobal     bool      `bson:"is_global"`
	Permissions  []permDoc `bson:"permissions"`
	ParentRoleID *string   `bson:"parent_role_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type permDoc struct {
	Resource   string         `bson:"resource"`
	Actions    []string       `bson:"actions"`
	Scope      string         `bson:"scope"`
	Conditions map[string]any `bson:"conditions,omitempty"`
}

func (s *mongoStore) Create(ctx context.Context, r rolepkg.Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if _, err := s.coll.InsertOne(ctx, toDoc(r)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Join(rolepkg.ErrRoleAlreadyExists, fmt.Errorf("name %q", r.Name))
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

func (s *mongoStore) FindByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (rolepkg.Role, error) {
	filter := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "$or", Value: partitionFilter(tenantID)},
	}
	return s.findOne(ctx, filter, nil)
}

func (s *mongoStore) FindByName(ctx context.Context, name string, tenantID uuid.UUID) (rolepkg.Role, error) {
	filter := bson.D{
		{Key: "name_folded", Value: strings.ToLower(name)},
		{Key: "$or", Value: partitionFilter(tenantID)},
	}
	// Tenant-owned roles sort before the global ones and win the shadowing.
	sort := options.FindOne().SetSort(bson.D{{Key: "is_global", Value: 1}})
	return s.findOne(ctx, filter, sort)
}

func (s *mongoStore) FindAll(ctx context.Context, tenantID uuid.UUID) ([]rolepkg.Role, error) {
	filter := bson.D{{Key: "$or", Value: partitionFilter(tenantID)}}
	opts := options.Find().SetSort(bson.D{{Key: "is_global", Value: -1}, {Key: "name_folded", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *mongoStore) FindGlobalRoles(ctx context.Context) ([]rolepkg.Role, error) {
	filter := bson.D{{Key: "is_global", Value: true}}
	opts := options.Find().SetSort(bson.D{{Key: "name_folded", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *mongoStore) Update(ctx context.Context, r rolepkg.Role) error {
	if err := r.Validate(); err != nil {
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: r.ID.String()}}, toDoc(r))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Join(rolepkg.ErrRoleAlreadyExists, fmt.Errorf("name %q", r.Name))
		}
		return fmt.Errorf("replace role: %w", err)
	}
	if res.MatchedCount == 0 {
		return rolepkg.ErrRoleNotFound
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "tenant_id", Value: tenantID.String()},
		{Key: "is_global", Value: false},
	})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return rolepkg.ErrRoleNotFound
	}
	return nil
}

func (s *mongoStore) Exists(ctx context.Context, name string, tenantID uuid.UUID) (bool, error) {
	filter := bson.D{
		{Key: "name_folded", Value: strings.ToLower(name)},
		{Key: "$or", Value: partitionFilter(tenantID)},
	}
	count, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count roles: %w", err)
	}
	return count > 0, nil
}

// partitionFilter matches the tenant ∪ global partition.
func partitionFilter(tenantID uuid.UUID) bson.A {
	return bson.A{
		bson.D{{Key: "is_global", Value: true}},
		bson.D{{Key: "tenant_id", Value: tenantID.String()}},
	}
}

func (s *mongoStore) findOne(ctx context.Context, filter bson.D, opts *options.FindOneOptionsBuilder) (rolepkg.Role, error) {
	var doc roleDoc
	var err error
	if opts != nil {
		err = s.coll.FindOne(ctx, filter, opts).Decode(&doc)
	} else {
		err = s.coll.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return rolepkg.Role{}, rolepkg.ErrRoleNotFound
		}
		return rolepkg.Role{}, fmt.Errorf("find role: %w", err)
	}
	return fromDoc(doc)
}

func (s *mongoStore) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]rolepkg.Role, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer cursor.Close(ctx)

	var out []rolepkg.Role
	for cursor.Next(ctx) {
		var doc roleDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		r, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return out, nil
}

func toDoc(r rolepkg.Role) roleDoc {
	doc := roleDoc{
		ID:           r.ID.String(),
		Name:         r.Name,
		NameFolded:   strings.ToLower(r.Name),
		Description:  r.Description,
		IsSystemRole: r.IsSystemRole,
		IsGlobal:     r.IsGlobal,
		Permissions:  make([]permDoc, len(r.Permissions)),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.TenantID != nil {
		id := r.TenantID.String()
		doc.TenantID = &id
	}
	if r.ParentRoleID != nil {
		id := r.ParentRoleID.String()
		doc.ParentRoleID = &id
	}
	for i, p := range r.Permissions {
		actions := make([]string, len(p.Actions))
		for j, a := range p.Actions {
			actions[j] = string(a)
		}
		doc.Permissions[i] = permDoc{
			Resource:   p.Resource,
			Actions:    actions,
			Scope:      string(p.Scope),
			Conditions: p.Conditions,
		}
	}
	return doc
}

func fromDoc(doc roleDoc) (rolepkg.Role, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return rolepkg.Role{}, fmt.Errorf("parse role id %q: %w", doc.ID, err)
	}

	r := rolepkg.Role{
		ID:           id,
		Name:         doc.Name,
		Description:  doc.Description,
		IsSystemRole: doc.IsSystemRole,
		IsGlobal:     doc.IsGlobal,
		Permissions:  make([]permission.Permission, len(doc.Permissions)),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	if doc.TenantID != nil {
		tenantID, err := uuid.Parse(*doc.TenantID)
		if err != nil {
			return rolepkg.Role{}, fmt.Errorf("parse tenant id %q: %w", *doc.TenantID, err)
		}
		r.TenantID = &tenantID
	}
	if doc.ParentRoleID != nil {
		parentID, err := uuid.Parse(*doc.ParentRoleID)
		if err != nil {
			return rolepkg.Role{}, fmt.Errorf("parse parent role id %q: %w", *doc.ParentRoleID, err)
		}
		r.ParentRoleID = &parentID
	}
	for i, p := range doc.Permissions {
		actions := make([]permission.Action, len(p.Actions))
		for j, a := range p.Actions {
			actions[j] = permission.Action(a)
		}
		r.Permissions[i] = permission.Permission{
			Resource:   p.Resource,
			Actions:    actions,
			Scope:      permission.Scope(p.Scope),
			Conditions: p.Conditions,
		}
	}
	return r, nil
}
