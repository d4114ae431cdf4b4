package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/topochart/pkg/chart"
	"github.com/matzehuels/topochart/pkg/errors"
	"github.com/matzehuels/topochart/pkg/topology"
)

const (
	defaultMongoDatabase = "topochart"
	mongoCollection      = "snapshots"
)

// Mongo stores one document per snapshot.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri (mongodb://host:port/database) and pings the
// server. The database defaults to "topochart" when the URI has no path.
func OpenMongo(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo store needs a connection uri")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}
	db := mongoDatabase(uri)
	return &Mongo{client: client, coll: client.Database(db).Collection(mongoCollection)}, nil
}

func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDatabase
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return defaultMongoDatabase
}

// mongoDoc is the stored form: a snapshot plus its node count, so List can
// project summaries without decoding datasets.
type mongoDoc struct {
	ID        string            `bson:"_id"`
	Name      string            `bson:"name,omitempty"`
	Data      *topology.Dataset `bson:"data"`
	Layout    chart.Layout      `bson:"layout"`
	UpdatedAt time.Time         `bson:"updated_at"`
	Nodes     int               `bson:"nodes"`
}

func (m *Mongo) Save(ctx context.Context, s *Snapshot) error {
	if err := checkSnapshot(s); err != nil {
		return err
	}
	s.UpdatedAt = now()
	doc := mongoDoc{
		ID:        s.ID,
		Name:      s.Name,
		Data:      s.Data,
		Layout:    s.Layout,
		UpdatedAt: s.UpdatedAt,
		Nodes:     summarize(s).Nodes,
	}

	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save snapshot %q", s.ID)
	}
	return nil
}

func (m *Mongo) Load(ctx context.Context, id string) (*Snapshot, error) {
	var s Snapshot
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load snapshot %q", id)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func (m *Mongo) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"name": 1, "nodes": 1, "updated_at": 1})
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list snapshots")
	}
	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	for i := range out {
		out[i].UpdatedAt = out[i].UpdatedAt.UTC()
	}
	return out, nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot %q", id)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

var _ Store = (*Mongo)(nil)
