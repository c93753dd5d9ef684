// internal/monday/client_test.go
package monday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ok-very/autoart/internal/types"
)

// fakeAPI serves canned GraphQL responses keyed by a query substring.
func fakeAPI(t *testing.T, handler func(query string, vars map[string]any) (string, int)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		body, status := handler(req.Query, req.Variables)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func testClient(url string) *Client {
	c := NewClient("test-token")
	c.APIURL = url
	c.PageSize = 2
	return c
}

const schemaResponse = `{"data":{"boards":[{
	"id":"b1","name":"Launch Plan","items_count":3,
	"columns":[{"id":"name","title":"Task","type":"name"},{"id":"p1","title":"Owner","type":"people"}],
	"groups":[{"id":"g1","title":"Stage 1 - Planning"}]
}]}}`

func TestDiscoverBoardSchema(t *testing.T) {
	srv := fakeAPI(t, func(query string, vars map[string]any) (string, int) {
		return schemaResponse, http.StatusOK
	})
	defer srv.Close()

	schema, err := testClient(srv.URL).DiscoverBoardSchema(context.Background(), "b1")
	if err != nil {
		t.Fatalf("DiscoverBoardSchema: %v", err)
	}
	if schema.Name != "Launch Plan" || schema.ItemCount != 3 {
		t.Errorf("schema = %+v", schema)
	}
	if len(schema.Columns) != 2 || schema.Columns[1].Type != "people" {
		t.Errorf("columns = %+v", schema.Columns)
	}
	if len(schema.Groups) != 1 {
		t.Errorf("groups = %+v", schema.Groups)
	}
}

func TestDiscoverBoardSchemaNotFound(t *testing.T) {
	srv := fakeAPI(t, func(query string, vars map[string]any) (string, int) {
		return `{"data":{"boards":[]}}`, http.StatusOK
	})
	defer srv.Close()

	_, err := testClient(srv.URL).DiscoverBoardSchema(context.Background(), "missing")
	if !errors.Is(err, ErrBoardNotFound) {
		t.Errorf("err = %v, want ErrBoardNotFound", err)
	}
}

func TestFetchBoardTreePaginates(t *testing.T) {
	var pageCalls atomic.Int32
	srv := fakeAPI(t, func(query string, vars map[string]any) (string, int) {
		if _, ok := vars["limit"]; !ok {
			return schemaResponse, http.StatusOK
		}
		switch pageCalls.Add(1) {
		case 1:
			if _, ok := vars["cursor"]; ok {
				t.Error("first page must be requested without a cursor")
			}
			return `{"data":{"boards":[{"items_page":{"cursor":"next-1","items":[
				{"id":"i1","name":"Kickoff","group":{"id":"g1"},"column_values":[]},
				{"id":"i2","name":"Budget","group":{"id":"g1"},"column_values":[]}
			]}}]}}`, http.StatusOK
		default:
			if got := vars["cursor"]; got != "next-1" {
				t.Errorf("second page cursor = %v, want next-1", got)
			}
			return `{"data":{"boards":[{"items_page":{"cursor":"","items":[
				{"id":"i3","name":"Review","group":{"id":"g1"},"subitems":[
					{"id":"s1","name":"Legal pass"}
				]}
			]}}]}}`, http.StatusOK
		}
	})
	defer srv.Close()

	tree, err := testClient(srv.URL).FetchBoardTree(context.Background(), "b1")
	if err != nil {
		t.Fatalf("FetchBoardTree: %v", err)
	}
	if len(tree.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(tree.Items))
	}
	if pageCalls.Load() != 2 {
		t.Errorf("page calls = %d, want 2", pageCalls.Load())
	}
	if len(tree.Items[2].Subitems) != 1 {
		t.Errorf("subitems not attached: %+v", tree.Items[2])
	}
}

func TestStreamBoardItemsStopsOnCallbackError(t *testing.T) {
	srv := fakeAPI(t, func(query string, vars map[string]any) (string, int) {
		if _, ok := vars["limit"]; !ok {
			return schemaResponse, http.StatusOK
		}
		return `{"data":{"boards":[{"items_page":{"cursor":"more","items":[{"id":"i1","name":"x","group":{"id":"g1"}}]}}]}}`, http.StatusOK
	})
	defer srv.Close()

	wantErr := errors.New("stop")
	_, err := testClient(srv.URL).StreamBoardItems(context.Background(), "b1", func(*ItemsPage) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want callback error", err)
	}
}

func TestQueryRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := fakeAPI(t, func(query string, vars map[string]any) (string, int) {
		if calls.Add(1) == 1 {
			return `rate limited`, http.StatusTooManyRequests
		}
		return schemaResponse, http.StatusOK
	})
	defer srv.Close()

	_, err := testClient(srv.URL).DiscoverBoardSchema(context.Background(), "b1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("calls = %d, want at least 2", calls.Load())
	}
}

func TestQueryGraphQLErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := fakeAPI(t, func(query string, vars map[string]any) (string, int) {
		calls.Add(1)
		return `{"errors":[{"message":"invalid token"}]}`, http.StatusOK
	})
	defer srv.Close()

	_, err := testClient(srv.URL).DiscoverBoardSchema(context.Background(), "b1")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (GraphQL errors must not be retried)", calls.Load())
	}
}

func TestFetchWorkspaceTreesPreservesOrder(t *testing.T) {
	srv := fakeAPI(t, func(query string, vars map[string]any) (string, int) {
		ids, _ := vars["boardID"].([]any)
		id, _ := ids[0].(string)
		if _, ok := vars["limit"]; !ok {
			return fmt.Sprintf(`{"data":{"boards":[{"id":%q,"name":"Board %s","items_count":0,"columns":[],"groups":[]}]}}`, id, id), http.StatusOK
		}
		return `{"data":{"boards":[{"items_page":{"cursor":"","items":[]}}]}}`, http.StatusOK
	})
	defer srv.Close()

	trees, err := testClient(srv.URL).FetchWorkspaceTrees(context.Background(), []string{"b1", "b2", "b3"})
	if err != nil {
		t.Fatalf("FetchWorkspaceTrees: %v", err)
	}
	for i, want := range []string{"b1", "b2", "b3"} {
		if trees[i].Schema.BoardID != want {
			t.Errorf("trees[%d] = %s, want %s", i, trees[i].Schema.BoardID, want)
		}
	}
}

func TestRawNodesFlattening(t *testing.T) {
	tree := &BoardTree{
		Schema: BoardSchema{
			BoardID: "b1",
			Name:    "Launch Plan",
			Groups:  []Group{{ID: "g1", Title: "Planning"}},
		},
		Items: []Item{
			{
				ID:   "i1",
				Name: "Kickoff",
				Group: struct {
					ID string `json:"id"`
				}{ID: "g1"},
				ColumnValues: []ColumnValue{
					{ID: "p1", Text: "John", Type: "people", Column: struct {
						Title string `json:"title"`
					}{Title: "Owner"}},
				},
				Subitems: []Item{{ID: "s1", Name: "Book room"}},
			},
		},
	}

	nodes := tree.RawNodes()
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4 (board, group, item, subitem)", len(nodes))
	}
	if nodes[0].Kind != types.KindBoard || nodes[1].Kind != types.KindGroup {
		t.Errorf("node kinds = %v, %v", nodes[0].Kind, nodes[1].Kind)
	}
	item := nodes[2]
	if item.Kind != types.KindItem || item.GroupExternalID != "g1" || item.Columns[0].Title != "Owner" {
		t.Errorf("item node = %+v", item)
	}
	sub := nodes[3]
	if sub.Kind != types.KindSubitem || sub.ParentExternalID != "i1" {
		t.Errorf("subitem node = %+v", sub)
	}
}
