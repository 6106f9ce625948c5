// Package invindex implements the per-tenant inverted index: token →
// posting-list storage, document add/update/remove/clear, and the hybrid
// token-overlap + edit-distance search ranking.
//
// Locking follows the teacher repo's one-mutex-per-owned-structure
// convention (RLock for reads, Lock for writes); every exported method
// takes the lock for its own duration and releases it before returning, so
// no operation is ever observed mid-mutation by another goroutine.
package invindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"

	"github.com/corewire/ftsearch/internal/apperr"
	"github.com/corewire/ftsearch/internal/editdist"
	"github.com/corewire/ftsearch/internal/lang"
	"github.com/corewire/ftsearch/model"
)

// Index is a single named full-text index: a bijective iid↔_id mapping,
// the verbatim serialized documents, and the token→posting-list inverted
// structure built from them.
type Index struct {
	mu sync.RWMutex

	items     map[uint32]string             // iid -> serialized document
	idMap     map[string]uint32             // external _id -> iid
	postings  map[string][]posting          // token -> posting list
	docTokens map[uint32]map[string]struct{} // iid -> distinct tokens it contributed, for fast purge
	idCounter uint32

	// liveIDs mirrors the keyset of items as a roaring bitmap. It is a
	// reporting/diagnostic structure only: items remains the source of
	// truth and liveIDs is updated alongside it, never read from by any
	// mutation path.
	liveIDs *roaring.Bitmap
}

// New returns an empty index.
func New() *Index {
	return &Index{
		items:     make(map[uint32]string),
		idMap:     make(map[string]uint32),
		postings:  make(map[string][]posting),
		docTokens: make(map[uint32]map[string]struct{}),
		liveIDs:   roaring.New(),
	}
}

// Add inserts a new document, or — if a document with the same "_id" is
// already resident — behaves like Update, reusing its existing iid so the
// _id↔iid bijection (invariant 1) and the "fully present or fully absent"
// invariant (invariant 5) are never violated by a second insert under the
// same external id.
func (idx *Index) Add(doc model.Document, fields []string) error {
	id, ok := doc.ID()
	if !ok {
		return apperr.NewMalformedInputError(0, "document missing non-empty string \"_id\"")
	}

	serialized, err := model.Serialize(doc)
	if err != nil {
		return apperr.NewMalformedInputError(0, "document is not serializable: "+err.Error())
	}
	text := model.ExtractText(doc, fields)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	iid, exists := idx.idMap[id]
	if exists {
		idx.purgeLocked(iid)
	} else {
		iid = idx.idCounter
		idx.idCounter++
		idx.idMap[id] = iid
		idx.liveIDs.Add(iid)
	}

	idx.items[iid] = serialized
	idx.indexTextLocked(iid, text)
	return nil
}

// Update overwrites an existing document identified by doc["_id"],
// re-deriving its postings from scratch and reusing its existing iid. It
// is an error if no document with that _id currently exists.
func (idx *Index) Update(doc model.Document, fields []string) error {
	id, ok := doc.ID()
	if !ok {
		return apperr.NewMalformedInputError(0, "document missing non-empty string \"_id\"")
	}

	serialized, err := model.Serialize(doc)
	if err != nil {
		return apperr.NewMalformedInputError(0, "document is not serializable: "+err.Error())
	}
	text := model.ExtractText(doc, fields)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	iid, exists := idx.idMap[id]
	if !exists {
		return apperr.NewDocumentNotFoundError(id)
	}

	idx.purgeLocked(iid)
	idx.items[iid] = serialized
	idx.indexTextLocked(iid, text)
	return nil
}

// Remove deletes the document identified by _id, returning false if it was
// not present.
func (idx *Index) Remove(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	iid, exists := idx.idMap[id]
	if !exists {
		return false
	}

	idx.purgeLocked(iid)
	delete(idx.items, iid)
	delete(idx.idMap, id)
	idx.liveIDs.Remove(iid)
	return true
}

// Clear empties the index of all documents and postings. idCounter is
// deliberately preserved (not reset) so no future iid can collide with one
// any external caller may have retained a reference to.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.items = make(map[uint32]string)
	idx.idMap = make(map[string]uint32)
	idx.postings = make(map[string][]posting)
	idx.docTokens = make(map[uint32]map[string]struct{})
	idx.liveIDs = roaring.New()
}

// Stats reports the live document and distinct-token counts, backing the
// GET /index/{name} transport response. The document count is read off
// liveIDs rather than len(items) so it is an O(1) cardinality read rather
// than a map-size computation over the same data items already tracks.
func (idx *Index) Stats() (itemsCount, tokensCount int) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return int(idx.liveIDs.GetCardinality()), len(idx.postings)
}

// Search ranks and returns the serialized documents matching rawQuery, per
// spec.md §4.2: an empty (after trimming) query returns every stored
// document in ascending iid (insertion) order; otherwise documents are scored by summed
// posting weight plus a normalized-edit-distance bonus against the raw
// query, and only documents scoring over half of the top score survive.
func (idx *Index) Search(rawQuery string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if strings.TrimSpace(rawQuery) == "" {
		iids := make([]uint32, 0, len(idx.items))
		for iid := range idx.items {
			iids = append(iids, iid)
		}
		sort.Slice(iids, func(i, j int) bool { return iids[i] < iids[j] })
		out := make([]string, 0, len(iids))
		for _, iid := range iids {
			out = append(out, idx.items[iid])
		}
		return out
	}

	tokens := append(lang.Gramify(rawQuery), lang.CleanWords(rawQuery)...)

	scores := make(map[uint32]float64)
	for _, tok := range tokens {
		for _, p := range idx.postings[tok] {
			scores[p.iid] += float64(p.weight)
		}
	}

	type hit struct {
		iid   uint32
		final float64
	}
	hits := make([]hit, 0, len(scores))
	for iid, score := range scores {
		final := score + editdist.NormalizedSimilarity(rawQuery, idx.items[iid])
		hits = append(hits, hit{iid: iid, final: final})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].final != hits[j].final {
			return hits[i].final > hits[j].final
		}
		return hits[i].iid < hits[j].iid
	})

	if len(hits) == 0 {
		return nil
	}
	threshold := hits[0].final / 2

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.final > threshold {
			out = append(out, idx.items[h.iid])
		}
	}
	return out
}

// indexTextLocked derives gram and stemmed-word tokens from text and
// appends postings for iid. Caller must hold mu for writing.
func (idx *Index) indexTextLocked(iid uint32, text string) {
	touched := idx.docTokens[iid]
	if touched == nil {
		touched = make(map[string]struct{})
		idx.docTokens[iid] = touched
	}

	for _, tok := range lang.Gramify(text) {
		idx.postings[tok] = append(idx.postings[tok], posting{iid: iid, weight: weightGram})
		touched[tok] = struct{}{}
	}
	for _, tok := range lang.CleanWords(text) {
		idx.postings[tok] = append(idx.postings[tok], posting{iid: iid, weight: weightWord})
		touched[tok] = struct{}{}
	}
}

// purgeLocked removes every posting referencing iid across the tokens it
// previously contributed to, dropping any token whose list becomes empty.
// Caller must hold mu for writing.
func (idx *Index) purgeLocked(iid uint32) {
	touched, ok := idx.docTokens[iid]
	if !ok {
		return
	}

	for tok := range touched {
		list := idx.postings[tok]
		filtered := list[:0]
		for _, p := range list {
			if p.iid != iid {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(idx.postings, tok)
		} else {
			idx.postings[tok] = filtered
		}
	}

	delete(idx.docTokens, iid)
}
