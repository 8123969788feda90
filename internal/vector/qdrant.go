package vector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
)

// pointNamespace turns repo-qualified chunk IDs into deterministic Qdrant
// point UUIDs, so re-indexing upserts in place instead of duplicating points.
var pointNamespace = uuid.MustParse("3f2c9a6e-7d41-4b8a-9b1f-5a0c2d8e4f16")

// QdrantIndex is a similarity index backed by a remote Qdrant collection.
// The owning repo and original chunk ID travel in the point payload, and
// searches filter on the repo.
type QdrantIndex struct {
	conn       *grpc.ClientConn
	points     qdrant.PointsClient
	collection string
	dimensions int
}

// NewQdrantIndex connects to addr, ensures the collection exists with a
// cosine-distance vector config, and returns the index.
func NewQdrantIndex(ctx context.Context, addr, collection string, dimensions int) (*QdrantIndex, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	q := &QdrantIndex{
		conn:       conn,
		points:     qdrant.NewPointsClient(conn),
		collection: collection,
		dimensions: dimensions,
	}
	if err := q.ensureCollection(ctx, qdrant.NewCollectionsClient(conn)); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return q, nil
}

func (q *QdrantIndex) ensureCollection(ctx context.Context, collections qdrant.CollectionsClient) error {
	_, err := collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: q.collection})
	if err == nil {
		return nil
	}
	_, err = collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", q.collection, err)
	}
	return nil
}

// pointID hashes repo and chunk together; chunk IDs alone repeat across
// repos that share file layouts.
func (q *QdrantIndex) pointID(repoID, chunkID string) *qdrant.PointId {
	id := uuid.NewSHA1(pointNamespace, []byte(repoID+"\x00"+chunkID)).String()
	return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}
}

// repoFilter matches points belonging to one repo.
func repoFilter(repoID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   "repo_id",
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: repoID}},
				},
			},
		}},
	}
}

// Add upserts vectors; writes are acknowledged before returning.
func (q *QdrantIndex) Add(ctx context.Context, repoID string, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(ids))
	for i, id := range ids {
		points[i] = &qdrant.PointStruct{
			Id:      q.pointID(repoID, id),
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vectors[i]}}},
			Payload: map[string]*qdrant.Value{
				"repo_id":  {Kind: &qdrant.Value_StringValue{StringValue: repoID}},
				"chunk_id": {Kind: &qdrant.Value_StringValue{StringValue: id}},
			},
		}
	}
	_, err := q.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
		Wait:           proto.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Search returns the repo's top-k hits with their original chunk IDs.
func (q *QdrantIndex) Search(ctx context.Context, repoID string, query []float32, k int) ([]*Result, error) {
	if k <= 0 {
		return nil, nil
	}
	resp, err := q.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: q.collection,
		Vector:         query,
		Limit:          uint64(k),
		Filter:         repoFilter(repoID),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}
	results := make([]*Result, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		chunkID := hit.GetPayload()["chunk_id"].GetStringValue()
		if chunkID == "" {
			continue
		}
		results = append(results, &Result{ID: chunkID, Score: float64(hit.GetScore())})
	}
	return results, nil
}

// Remove deletes the repo's points for the given chunk IDs.
func (q *QdrantIndex) Remove(ctx context.Context, repoID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	points := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		points[i] = q.pointID(repoID, id)
	}
	_, err := q.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: points},
			},
		},
		Wait: proto.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

// Size returns the exact point count for a repo, or for the whole
// collection when repoID is empty.
func (q *QdrantIndex) Size(ctx context.Context, repoID string) (int, error) {
	req := &qdrant.CountPoints{
		CollectionName: q.collection,
		Exact:          proto.Bool(true),
	}
	if repoID != "" {
		req.Filter = repoFilter(repoID)
	}
	resp, err := q.points.Count(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Close closes the gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}
