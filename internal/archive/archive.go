// Package archive persists records of closed sessions to MongoDB.
// Live session state never touches storage; only final outcomes are
// written, using the session/participant shapes as the contract.
package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studyhall/internal/model"
)

// Record is the stored shape of one finished session.
type Record struct {
	SessionID    string               `json:"sessionId" bson:"_id"`
	ChannelID    string               `json:"channelId" bson:"channelId"`
	Type         model.SessionType    `json:"type" bson:"type"`
	Reason       string               `json:"reason" bson:"reason"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	ClosedAt     time.Time            `json:"closedAt" bson:"closedAt"`
	Phases       int                  `json:"phases" bson:"phases"`
	Participants []*model.Participant `json:"participants" bson:"participants"`
	Content      []model.ContentItem  `json:"content,omitempty" bson:"content,omitempty"`
	Summary      string               `json:"summary,omitempty" bson:"summary,omitempty"`
}

type Repo interface {
	Insert(ctx context.Context, rec *Record) error
	SetSummary(ctx context.Context, sessionID, summary string) error
	ListByChannel(ctx context.Context, channelID string, limit int) ([]*Record, error)
}

type repo struct {
	collection *mongo.Collection
}

func NewRepo(client *mongo.Client, database string) Repo {
	db := client.Database(database)
	return &repo{collection: db.Collection("session_archive")}
}

func (r *repo) Insert(ctx context.Context, rec *Record) error {
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

func (r *repo) SetSummary(ctx context.Context, sessionID, summary string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$set": bson.M{"summary": summary}},
	)
	return err
}

func (r *repo) ListByChannel(ctx context.Context, channelID string, limit int) ([]*Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "closedAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.collection.Find(ctx, bson.M{"channelId": channelID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []*Record
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
