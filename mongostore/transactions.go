package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nemopss/fin-ng/backend/models"
)

var newestFirst = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}

func (s *Storage) ListTransactions(ctx context.Context, f models.Filter, owner string) ([]models.Transaction, int64, error) {
	f = f.Normalize()
	filter, err := transactionFilter(f, owner)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transactions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit))
	items, err := s.findTransactions(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// byID строит фильтр по _id с учётом владельца.
func byID(oid primitive.ObjectID, owner string) bson.D {
	return conjunction(append(ownerConds(owner), bson.D{{Key: "_id", Value: oid}}))
}

func (s *Storage) GetTransaction(ctx context.Context, id, owner string) (models.Transaction, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return models.Transaction{}, models.ErrNotFound
	}

	var doc transactionDoc
	err := s.transactions.FindOne(ctx, byID(oid, owner)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Transaction{}, models.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("find transaction: %w", err)
	}
	return doc.model()
}

func (s *Storage) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	amount, err := toDecimal128(t.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	if t.UserProfile == "" {
		t.UserProfile = models.DefaultUserProfile
	}
	now := s.timestamp()
	doc := transactionDoc{
		ID:          primitive.NewObjectID(),
		Date:        t.Date.UTC().Truncate(time.Millisecond),
		Amount:      amount,
		Category:    string(t.Category),
		Status:      string(t.Status),
		UserID:      t.UserID,
		UserProfile: t.UserProfile,
		Description: t.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.transactions.InsertOne(ctx, doc); err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return doc.model()
}

func (s *Storage) UpdateTransaction(ctx context.Context, id string, upd models.TransactionUpdate, owner string) (models.Transaction, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return models.Transaction{}, models.ErrNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: s.timestamp()}}
	if upd.Date != nil {
		set = append(set, bson.E{Key: "date", Value: upd.Date.UTC().Truncate(time.Millisecond)})
	}
	if upd.Amount != nil {
		amount, err := toDecimal128(*upd.Amount)
		if err != nil {
			return models.Transaction{}, err
		}
		set = append(set, bson.E{Key: "amount", Value: amount})
	}
	if upd.Category != nil {
		set = append(set, bson.E{Key: "category", Value: string(*upd.Category)})
	}
	if upd.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*upd.Status)})
	}
	if upd.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *upd.Description})
	}

	var doc transactionDoc
	err := s.transactions.FindOneAndUpdate(ctx, byID(oid, owner), bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Transaction{}, models.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return doc.model()
}

func (s *Storage) DeleteTransaction(ctx context.Context, id, owner string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return models.ErrNotFound
	}
	res, err := s.transactions.DeleteOne(ctx, byID(oid, owner))
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Storage) findTransactions(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]models.Transaction, error) {
	cur, err := s.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	items := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.model()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, nil
}
