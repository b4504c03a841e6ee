package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoCollection connects to the MongoDB server in TEST_MONGODB_URI and
// returns a collection in a fresh database named after the test.
//
// The test is skipped automatically if TEST_MONGODB_URI is not set.
// The database is dropped and the client disconnected when the test finishes,
// so every test starts from an empty collection.
func NewMongoCollection(t *testing.T, name string) *mongo.Collection {
	t.Helper()

	uri := requireEnv(t, "TEST_MONGODB_URI")
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("testutil.NewMongoCollection: connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Fatalf("testutil.NewMongoCollection: ping: %v", err)
	}

	db := client.Database(fmt.Sprintf("tripplanner_test_%d", time.Now().UnixNano()))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	return db.Collection(name)
}
