package categorization

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

// DefaultSearchLimit caps Search when limit <= 0.
const DefaultSearchLimit = 20

// SearchDocument is the indexed view of a transaction.
type SearchDocument struct {
	Identifier    string `json:"identifier"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Counterparty  string `json:"counterparty"`
	PaymentMethod string `json:"payment_method"`
	Year          string `json:"year"`
}

// SearchHit is one ranked result.
type SearchHit struct {
	Identifier string  `json:"identificador"`
	Score      float64 `json:"score"`
}

// SearchIndex is an in-memory full-text index over a store snapshot. It
// tolerates one typo per term, unlike the exact substring filter.
type SearchIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex

	syncMu  sync.Mutex
	synced  bool
	version uint64
}

// VersionedSource hands out record snapshots tagged with a version that
// changes whenever the records do.
type VersionedSource interface {
	Versioned() ([]transactions.Transaction, uint64)
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex() (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &SearchIndex{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("identifier", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	docMapping.AddFieldMappingsAt("counterparty", textFieldMapping)
	docMapping.AddFieldMappingsAt("payment_method", textFieldMapping)
	docMapping.AddFieldMappingsAt("year", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Rebuild drops every document and indexes records in one batch.
func (si *SearchIndex) Rebuild(records []transactions.Transaction) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	batch := fresh.NewBatch()
	for _, r := range records {
		doc := SearchDocument{
			Identifier:    r.Identifier,
			Description:   r.Description,
			Category:      r.Category,
			Counterparty:  r.Counterparty,
			PaymentMethod: r.PaymentMethod,
			Year:          r.Year(),
		}
		if err := batch.Index(r.Identifier, doc); err != nil {
			fresh.Close()
			return fmt.Errorf("failed to index transaction %s: %w", r.Identifier, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("failed to execute batch index: %w", err)
	}

	old := si.index
	si.index = fresh
	if old != nil {
		old.Close()
	}
	return nil
}

// Sync rebuilds the index from src unless it already holds src's current
// version.
func (si *SearchIndex) Sync(src VersionedSource) error {
	si.syncMu.Lock()
	defer si.syncMu.Unlock()

	records, version := src.Versioned()
	if si.synced && version == si.version {
		return nil
	}
	if err := si.Rebuild(records); err != nil {
		return err
	}
	si.synced, si.version = true, version
	return nil
}

// Search runs a fuzzy match query (edit distance 1) and returns hits by
// descending relevance.
func (si *SearchIndex) Search(query string, limit int) ([]SearchHit, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit

	res, err := si.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, SearchHit{Identifier: h.ID, Score: h.Score})
	}
	return hits, nil
}

// DocumentCount returns the number of indexed transactions.
func (si *SearchIndex) DocumentCount() (uint64, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()
	return si.index.DocCount()
}

// Close releases the index.
func (si *SearchIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()
	if si.index != nil {
		return si.index.Close()
	}
	return nil
}
