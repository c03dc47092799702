package repository

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const testDB = "resume_database"

func newMock(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestMongoRepository_All(t *testing.T) {
	mt := newMock(t)
	mt.Run("returns every document", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, testDB)
		ns := testDB + "." + dataCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "category", Value: "skills"}, {Key: "name", Value: "Go"}},
			bson.D{{Key: "category", Value: "education"}, {Key: "name", Value: "BTech"}},
		))

		docs, err := repo.All(context.Background())
		if err != nil {
			mt.Fatalf("All: %v", err)
		}
		if len(docs) != 2 || docs[0]["name"] != "Go" || docs[1]["name"] != "BTech" {
			mt.Errorf("All = %v", docs)
		}

		ev := mt.GetStartedEvent()
		if ev == nil || ev.CommandName != "find" {
			mt.Fatalf("started event = %v, want find", ev)
		}
		if got := ev.Command.Lookup("find").StringValue(); got != dataCollection {
			mt.Errorf("collection = %q, want %q", got, dataCollection)
		}
		if filter := ev.Command.Lookup("filter").Document(); len(mustElements(mt.T, filter)) != 0 {
			mt.Errorf("filter = %v, want empty", filter)
		}
	})

	mt.Run("empty collection is an empty slice", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+"."+dataCollection, mtest.FirstBatch))

		docs, err := repo.All(context.Background())
		if err != nil {
			mt.Fatalf("All: %v", err)
		}
		if docs == nil || len(docs) != 0 {
			mt.Errorf("All = %#v, want empty non-nil slice", docs)
		}
	})

	mt.Run("command error is wrapped", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad filter",
		}))

		_, err := repo.All(context.Background())
		if err == nil || !strings.Contains(err.Error(), "resume: find") {
			mt.Errorf("All err = %v, want wrapped find error", err)
		}
	})
}

func TestMongoRepository_ByCategory(t *testing.T) {
	mt := newMock(t)
	mt.Run("filters on category", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+"."+dataCollection, mtest.FirstBatch,
			bson.D{{Key: "category", Value: "skills"}, {Key: "name", Value: "Go"}},
		))

		docs, err := repo.ByCategory(context.Background(), "skills")
		if err != nil {
			mt.Fatalf("ByCategory: %v", err)
		}
		if len(docs) != 1 || docs[0]["category"] != "skills" {
			mt.Errorf("ByCategory = %v", docs)
		}

		ev := mt.GetStartedEvent()
		if ev == nil {
			mt.Fatal("no started event")
		}
		if got := ev.Command.Lookup("filter", "category").StringValue(); got != "skills" {
			mt.Errorf("filter.category = %q, want skills", got)
		}
	})
}

func TestMongoRepository_Metadata(t *testing.T) {
	mt := newMock(t)
	mt.Run("projects out _id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+"."+metadataCollection, mtest.FirstBatch,
			bson.D{{Key: "name", Value: "Ninad"}, {Key: "title", Value: "Engineer"}},
		))

		doc, err := repo.Metadata(context.Background())
		if err != nil {
			mt.Fatalf("Metadata: %v", err)
		}
		if doc["name"] != "Ninad" || doc["title"] != "Engineer" {
			mt.Errorf("Metadata = %v", doc)
		}

		ev := mt.GetStartedEvent()
		if ev == nil {
			mt.Fatal("no started event")
		}
		if got := ev.Command.Lookup("find").StringValue(); got != metadataCollection {
			mt.Errorf("collection = %q, want %q", got, metadataCollection)
		}
		id, err := ev.Command.LookupErr("projection", "_id")
		if err != nil {
			mt.Fatalf("projection._id missing: %v", err)
		}
		if v, ok := id.AsInt64OK(); !ok || v != 0 {
			mt.Errorf("projection._id = %v, want 0", id)
		}
	})

	mt.Run("no document is nil", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testDB+"."+metadataCollection, mtest.FirstBatch))

		doc, err := repo.Metadata(context.Background())
		if err != nil {
			mt.Fatalf("Metadata: %v", err)
		}
		if doc != nil {
			mt.Errorf("Metadata = %v, want nil", doc)
		}
	})

	mt.Run("command error is wrapped", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, testDB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad projection",
		}))

		doc, err := repo.Metadata(context.Background())
		if err == nil || !strings.Contains(err.Error(), "resume: metadata") {
			mt.Errorf("Metadata err = %v, want wrapped metadata error", err)
		}
		if doc != nil {
			mt.Errorf("Metadata = %v, want nil on error", doc)
		}
	})
}

func mustElements(t *testing.T, doc bson.Raw) []bson.RawElement {
	t.Helper()
	elems, err := doc.Elements()
	if err != nil {
		t.Fatalf("Elements: %v", err)
	}
	return elems
}
