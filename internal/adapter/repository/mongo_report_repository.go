package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusfinder/internal/domain/entity"
	"campusfinder/internal/domain/repository"
	"campusfinder/pkg/errors"
)

type mongoReportDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Record reportRecord       `bson:",inline"`
}

type mongoReportRepository struct {
	collection *mongo.Collection
}

func NewMongoReportRepository(db *mongo.Database) repository.ReportRepository {
	return &mongoReportRepository{collection: db.Collection(reportsCollection)}
}

// EnsureReportIndexes creates the index backing filtered, newest-first listing.
func EnsureReportIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(reportsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "type", Value: 1},
			{Key: "category", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	})
	return err
}

func (r *mongoReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if err := checkConstraints(report); err != nil {
		return err
	}

	// BSON datetimes carry millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := mongoReportDocument{
		ID:     primitive.NewObjectID(),
		Record: newReportRecord(report, now, now),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
			err = fmt.Errorf("%w: %w", repository.ErrWriteUnconfirmed, err)
		}
		return errors.Persistence("Failed to create report", err)
	}

	report.ID = doc.ID.Hex()
	report.CreatedAt = now
	report.UpdatedAt = now
	report.Date = entity.CalendarDate(report.Date)
	return nil
}

func (r *mongoReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Persistence("Failed to list reports", err)
	}

	var docs []mongoReportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Persistence("Failed to decode reports", err)
	}

	reports := make([]*entity.Report, 0, len(docs))
	for _, doc := range docs {
		report, err := doc.Record.toEntity(doc.ID.Hex())
		if err != nil {
			return nil, errors.Persistence("Stored report is inconsistent", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *mongoReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.NotFound("Report", err)
	}

	var doc mongoReportDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Persistence("Failed to get report", err)
	}

	report, err := doc.Record.toEntity(doc.ID.Hex())
	if err != nil {
		return nil, errors.Persistence("Stored report is inconsistent", err)
	}
	return report, nil
}
