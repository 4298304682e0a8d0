package capability

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/search"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Namespace is the tool namespace every op is registered under.
const Namespace = "robot"

// ErrNotFound is returned when a name does not resolve to an op.
var ErrNotFound = errors.New("capability not found")

// Summary is a search hit.
type Summary = index.Summary

// Doc is the documentation for one op.
type Doc = tooldoc.ToolDoc

// Catalog is a searchable, documented view of the op set.
// It is built once and read-only afterwards.
type Catalog struct {
	idx  index.Index
	docs tooldoc.Store
}

// NewCatalog registers every op in a BM25-backed index and doc store.
func NewCatalog() (*Catalog, error) {
	idx := index.NewInMemoryIndex(index.IndexOptions{
		Searcher: search.NewBM25Searcher(search.BM25Config{}),
	})
	var docs tooldoc.Store = tooldoc.NewInMemoryStore(tooldoc.StoreOptions{Index: idx})
	mem, ok := docs.(*tooldoc.InMemoryStore)
	if !ok {
		return nil, fmt.Errorf("capability: unexpected doc store %T", docs)
	}

	for _, op := range All() {
		if err := idx.RegisterTool(op.Tool(), model.NewLocalBackend(op.String())); err != nil {
			return nil, fmt.Errorf("capability: register %s: %w", op, err)
		}
		info := ops[op]
		entry := tooldoc.DocEntry{
			Summary: info.summary,
			Notes:   strings.TrimSpace("Returns " + info.returns + ". " + info.notes),
			Examples: []tooldoc.ToolExample{{
				Title:       info.title,
				Description: info.example,
				Args:        map[string]any{},
				ResultHint:  info.returns,
			}},
		}
		if err := mem.RegisterDoc(ToolID(op), entry); err != nil {
			return nil, fmt.Errorf("capability: document %s: %w", op, err)
		}
	}
	return &Catalog{idx: idx, docs: docs}, nil
}

// ToolID returns the canonical "robot:name" ID of op.
func ToolID(op Op) string {
	return Namespace + ":" + op.String()
}

// Tool returns the MCP-shaped tool definition of op.
func (o Op) Tool() model.Tool {
	info := ops[o]
	return model.Tool{
		Tool: mcp.Tool{
			Name:        info.name,
			Title:       info.title,
			Description: info.summary,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				Title:          info.title,
				ReadOnlyHint:   info.kind == Sensor,
				IdempotentHint: info.kind == Sensor,
			},
		},
		Namespace: Namespace,
		Tags:      model.NormalizeTags([]string{"robot", info.kind.String()}),
	}
}

// Search returns up to limit ops matching query, best first.
func (c *Catalog) Search(query string, limit int) ([]Summary, error) {
	return c.idx.Search(query, limit)
}

// Describe returns the documentation of the op named by name, which may be
// a bare name ("is_clear") or a tool ID ("robot:is_clear").
func (c *Catalog) Describe(name string, level tooldoc.DetailLevel) (Doc, error) {
	op, err := resolve(name)
	if err != nil {
		return Doc{}, err
	}
	return c.docs.DescribeTool(ToolID(op), level)
}

// Examples returns up to max usage examples for the named op.
func (c *Catalog) Examples(name string, max int) ([]tooldoc.ToolExample, error) {
	op, err := resolve(name)
	if err != nil {
		return nil, err
	}
	return c.docs.ListExamples(ToolID(op), max)
}

// Names returns every exposed name in declaration order.
func (c *Catalog) Names() []string {
	return Names()
}

func resolve(name string) (Op, error) {
	if strings.Contains(name, ":") {
		ns, tool, err := model.ParseToolID(name)
		if err != nil {
			return OpInvalid, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if ns != Namespace {
			return OpInvalid, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		name = tool
	}
	op, ok := Lookup(name)
	if !ok {
		return OpInvalid, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return op, nil
}
