// Package pipeline implements the post-retrieval search pipeline: filter,
// sort (including the deterministic "$shuffle" directive), and pagination
// over the documents an index's Search returns.
package pipeline

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"sort"

	"github.com/corewire/ftsearch/internal/filter"
	"github.com/corewire/ftsearch/internal/invindex"
	"github.com/corewire/ftsearch/model"
)

const defaultTake = 2_000_000

// Request bundles search_items' parameters (spec.md §4.4). Take is a
// pointer so an absent "take" query parameter (nil, defaults to
// defaultTake) is distinguishable from an explicit take=0 (a deliberate
// zero-size page), mirroring the original implementation's
// take.unwrap_or(defaultTake) over an Option<usize>.
type Request struct {
	Query    string
	Filter   *filter.Tree
	SortBy   string
	SortAsc  bool
	SortType string
	Skip     int
	Take     *int
}

// Result is the pipeline's output: a page of document ids plus the
// counts the transport layer reports alongside them.
type Result struct {
	Items    []string
	MaxItems int
	NumItems int
	NumPages int
}

// Run executes the pipeline against idx. It never touches the registry
// itself — index resolution is the caller's responsibility (spec.md §4.4
// step 1 is performed by the registry lookup that produces idx).
func Run(idx *invindex.Index, req Request) (Result, error) {
	take := defaultTake
	if req.Take != nil {
		take = *req.Take
	}
	if take < 0 {
		take = 0
	}

	raw := idx.Search(req.Query)

	docs := make([]interface{}, 0, len(raw))
	for _, s := range raw {
		v, err := model.Deserialize(s)
		if err != nil {
			continue
		}
		docs = append(docs, v)
	}

	if req.Filter != nil {
		filtered := docs[:0]
		for _, d := range docs {
			if filter.Evaluate(*req.Filter, d) {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}

	maxItems := len(docs)

	if req.SortBy != "" {
		sortDocs(docs, req)
	}

	reverse(docs)

	skip := req.Skip
	if skip < 0 {
		skip = 0
	}
	if skip > len(docs) {
		skip = len(docs)
	}
	docs = docs[skip:]
	if take < len(docs) {
		docs = docs[:take]
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		obj, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := obj["_id"].(string); ok {
			ids = append(ids, id)
		}
	}

	numItems := len(ids)
	numPages := 1
	if numItems >= take && take > 0 {
		numPages = (maxItems + take - 1) / take
	}

	return Result{
		Items:    ids,
		MaxItems: maxItems,
		NumItems: numItems,
		NumPages: numPages,
	}, nil
}

// sortDocs dispatches to the shuffle path or the dot-path comparison sort.
func sortDocs(docs []interface{}, req Request) {
	if req.SortBy == "$shuffle" {
		shuffle(docs, req.SortType)
		return
	}

	sortType := req.SortType
	if sortType == "" {
		sortType = "number"
	}

	less := func(i, j int) bool {
		vi := resolveSortValue(docs[i], req.SortBy, sortType)
		vj := resolveSortValue(docs[j], req.SortBy, sortType)
		switch sortType {
		case "string":
			return vi.(string) < vj.(string)
		default:
			return vi.(float64) < vj.(float64)
		}
	}

	// sort_asc == true sorts descending, sort_asc == false (default)
	// sorts ascending. This mirrors a flipped flag in the system this
	// pipeline was modeled on and is preserved deliberately, not fixed.
	if req.SortAsc {
		sort.SliceStable(docs, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(docs, less)
	}
}

func resolveSortValue(doc interface{}, property, sortType string) interface{} {
	val := lookupDotPath(doc, property)
	switch sortType {
	case "string":
		s, ok := val.(string)
		if !ok {
			return ""
		}
		return s
	default:
		switch n := val.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		default:
			return 0.0
		}
	}
}

func lookupDotPath(doc interface{}, property string) interface{} {
	current := doc
	for _, segment := range splitDot(property) {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[segment]
		if !ok {
			return nil
		}
	}
	return current
}

func splitDot(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// shuffle reorders docs deterministically: the seed is derived from the
// decimal-digit sum of the MD5 hex digest of sortType, so identical
// sort_type values always produce identical orderings.
func shuffle(docs []interface{}, sortType string) {
	if sortType == "" {
		sortType = "default"
	}

	sum := md5.Sum([]byte(sortType))
	hexDigest := hex.EncodeToString(sum[:])

	var seed int64
	for _, c := range hexDigest {
		if c >= '0' && c <= '9' {
			seed += int64(c - '0')
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(docs), func(i, j int) { docs[i], docs[j] = docs[j], docs[i] })
}

func reverse(docs []interface{}) {
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
}
