package firestore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ============================================================
// Structured queries, document CRUD, transactions, commits
// ============================================================

type fieldFilter struct {
	Field string
	Op    string // EQUAL, GREATER_THAN_OR_EQUAL, LESS_THAN, ...
	Value value
}

type orderSpec struct {
	Field string
	Desc  bool
}

// runQuery executes a structured query against one collection. An optional
// transaction id makes the reads part of that transaction.
func (c *Client) runQuery(ctx context.Context, collection string, filters []fieldFilter, order []orderSpec, txn string) ([]document, error) {
	where := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		where = append(where, map[string]any{
			"fieldFilter": map[string]any{
				"field": map[string]any{"fieldPath": f.Field},
				"op":    f.Op,
				"value": f.Value,
			},
		})
	}

	sq := map[string]any{
		"from": []map[string]any{{"collectionId": collection}},
	}
	if len(where) == 1 {
		sq["where"] = where[0]
	} else if len(where) > 1 {
		sq["where"] = map[string]any{
			"compositeFilter": map[string]any{"op": "AND", "filters": where},
		}
	}
	if len(order) > 0 {
		orderBy := make([]map[string]any, 0, len(order))
		for _, o := range order {
			dir := "ASCENDING"
			if o.Desc {
				dir = "DESCENDING"
			}
			orderBy = append(orderBy, map[string]any{
				"field":     map[string]any{"fieldPath": o.Field},
				"direction": dir,
			})
		}
		sq["orderBy"] = orderBy
	}

	body := map[string]any{"structuredQuery": sq}
	if txn != "" {
		body["transaction"] = txn
	}

	var results []struct {
		Document *document `json:"document,omitempty"`
	}
	u := fmt.Sprintf("%s/%s/documents:runQuery", baseURL, c.root())
	if err := c.doJSON(ctx, http.MethodPost, u, body, &results); err != nil {
		return nil, err
	}

	docs := make([]document, 0, len(results))
	for _, r := range results {
		// The stream includes readTime-only entries; skip them.
		if r.Document != nil {
			docs = append(docs, *r.Document)
		}
	}
	return docs, nil
}

// getDocument fetches one document; nil (no error) when it does not exist.
func (c *Client) getDocument(ctx context.Context, collection, id, txn string) (*document, error) {
	u := fmt.Sprintf("%s/%s", baseURL, c.docName(collection, id))
	if txn != "" {
		u += "?transaction=" + url.QueryEscape(txn)
	}

	var doc document
	err := c.doJSON(ctx, http.MethodGet, u, nil, &doc)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// createDocument inserts a document with a caller-chosen id.
func (c *Client) createDocument(ctx context.Context, collection, id string, fields map[string]value) error {
	u := fmt.Sprintf("%s/%s/documents/%s?documentId=%s", baseURL, c.root(), collection, url.QueryEscape(id))
	return c.doJSON(ctx, http.MethodPost, u, document{Fields: fields}, nil)
}

// patchDocument updates only the listed fields of an existing document.
func (c *Client) patchDocument(ctx context.Context, collection, id string, fields map[string]value) error {
	paths := make([]string, 0, len(fields))
	for k := range fields {
		paths = append(paths, "updateMask.fieldPaths="+url.QueryEscape(k))
	}
	u := fmt.Sprintf("%s/%s?%s&currentDocument.exists=true",
		baseURL, c.docName(collection, id), strings.Join(paths, "&"))
	return c.doJSON(ctx, http.MethodPatch, u, document{Fields: fields}, nil)
}

// deleteDocument removes a document. Deleting a missing document succeeds,
// matching the "already deleted is not an error" policy.
func (c *Client) deleteDocument(ctx context.Context, collection, id string) error {
	u := fmt.Sprintf("%s/%s", baseURL, c.docName(collection, id))
	return c.doJSON(ctx, http.MethodDelete, u, nil, nil)
}

// ============================================================
// Atomic commits
// ============================================================

// write is one mutation inside an atomic commit.
type write struct {
	Update *document `json:"update,omitempty"`
	Delete string    `json:"delete,omitempty"`
}

func updateWrite(name string, fields map[string]value) write {
	return write{Update: &document{Name: name, Fields: fields}}
}

func deleteWrite(name string) write {
	return write{Delete: name}
}

// commit applies all writes atomically: either every one lands or none do.
// With a transaction id the commit also fails if any document read inside
// the transaction changed since it was read (Firestore aborts with 409).
func (c *Client) commit(ctx context.Context, writes []write, txn string) error {
	body := map[string]any{"writes": writes}
	if txn != "" {
		body["transaction"] = txn
	}
	u := fmt.Sprintf("%s/%s/documents:commit", baseURL, c.root())
	return c.doJSON(ctx, http.MethodPost, u, body, nil)
}

// beginTransaction starts a read-write transaction and returns its id.
func (c *Client) beginTransaction(ctx context.Context) (string, error) {
	var resp struct {
		Transaction string `json:"transaction"`
	}
	u := fmt.Sprintf("%s/%s/documents:beginTransaction", baseURL, c.root())
	body := map[string]any{"options": map[string]any{"readWrite": map[string]any{}}}
	if err := c.doJSON(ctx, http.MethodPost, u, body, &resp); err != nil {
		return "", err
	}
	return resp.Transaction, nil
}

// rollback abandons a transaction. Best-effort: a transaction that is never
// committed expires on its own, so failures here are only logged upstream.
func (c *Client) rollback(ctx context.Context, txn string) error {
	u := fmt.Sprintf("%s/%s/documents:rollback", baseURL, c.root())
	return c.doJSON(ctx, http.MethodPost, u, map[string]any{"transaction": txn}, nil)
}
