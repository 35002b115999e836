package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nemopss/fin-ng/backend/models"
)

func (s *Storage) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	oid, ok := parseObjectID(u.ID)
	if !ok {
		oid = primitive.NewObjectID()
	}
	now := s.timestamp()
	doc := userDoc{
		ID:        oid,
		Username:  u.Username,
		Password:  u.Password,
		Email:     u.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, models.ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.model(), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "username", Value: username}})
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (models.User, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *Storage) findUser(ctx context.Context, filter bson.D) (models.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.model(), nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return models.User{}, models.ErrNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: s.timestamp()}}
	update := bson.D{}
	if upd.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *upd.Username})
	}
	if upd.Email != nil {
		if *upd.Email == "" {
			update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "email", Value: ""}}})
		} else {
			set = append(set, bson.E{Key: "email", Value: *upd.Email})
		}
	}
	update = append(update, bson.E{Key: "$set", Value: set})

	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.User{}, models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.User{}, models.ErrConflict
	case err != nil:
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return doc.model(), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
