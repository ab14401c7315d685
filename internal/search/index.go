// Package search keeps an in-memory cosine-similarity index over listing embeddings.
package search

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Entry 索引中的一筆向量
type Entry struct {
	ID        string
	Vector    []float32
	UpdatedAt time.Time
}

// Hit 搜尋結果
type Hit struct {
	ID        string
	Score     float64
	UpdatedAt time.Time
}

type item struct {
	vector    []float32
	norm      float64
	updatedAt time.Time
}

// Index 精確比對（全掃描）的向量索引，可併發使用
type Index struct {
	mu    sync.RWMutex
	items map[string]item
	// gen 每次 Upsert/Remove 遞增；touched 記錄各 ID 最後一次異動的 gen
	gen     uint64
	touched map[string]uint64
}

func NewIndex() *Index {
	return &Index{items: map[string]item{}, touched: map[string]uint64{}}
}

// Upsert 新增或取代；零向量等同移除
func (index *Index) Upsert(id string, vector []float32, updatedAt time.Time) {
	it, ok := newItem(vector, updatedAt)
	index.mu.Lock()
	defer index.mu.Unlock()
	index.touch(id)
	if !ok {
		delete(index.items, id)
		return
	}
	index.items[id] = it
}

func (index *Index) Remove(id string) {
	index.mu.Lock()
	index.touch(id)
	delete(index.items, id)
	index.mu.Unlock()
}

func (index *Index) touch(id string) {
	index.gen++
	index.touched[id] = index.gen
}

// Generation 目前的異動序號；重建前先取得，再交給 Replace
func (index *Index) Generation() uint64 {
	index.mu.RLock()
	defer index.mu.RUnlock()
	return index.gen
}

// Replace 以重建快照整批取代，回傳收錄筆數。
// since 之後被 Upsert/Remove 過的 ID 以索引現況為準，快照內的舊資料不覆蓋。
func (index *Index) Replace(since uint64, entries []Entry) int {
	items := make(map[string]item, len(entries))
	for _, e := range entries {
		if it, ok := newItem(e.Vector, e.UpdatedAt); ok {
			items[e.ID] = it
		}
	}

	index.mu.Lock()
	defer index.mu.Unlock()
	for id, gen := range index.touched {
		if gen <= since {
			delete(index.touched, id)
			continue
		}
		if live, ok := index.items[id]; ok {
			items[id] = live
		} else {
			delete(items, id)
		}
	}
	index.items = items
	return len(items)
}

func (index *Index) Len() int {
	index.mu.RLock()
	defer index.mu.RUnlock()
	return len(index.items)
}

// Search 回傳最多 k 筆；分數高者在前，同分時較新者在前，再以 ID 排序
func (index *Index) Search(query []float32, k int) []Hit {
	if k <= 0 {
		return []Hit{}
	}
	queryNorm := norm(query)
	if queryNorm == 0 {
		return []Hit{}
	}

	index.mu.RLock()
	hits := make([]Hit, 0, len(index.items))
	for id, it := range index.items {
		if len(it.vector) != len(query) {
			continue
		}
		hits = append(hits, Hit{
			ID:        id,
			Score:     dot(query, it.vector) / (queryNorm * it.norm),
			UpdatedAt: it.updatedAt,
		})
	}
	index.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if !hits[i].UpdatedAt.Equal(hits[j].UpdatedAt) {
			return hits[i].UpdatedAt.After(hits[j].UpdatedAt)
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func newItem(vector []float32, updatedAt time.Time) (item, bool) {
	n := norm(vector)
	if n == 0 {
		return item{}, false
	}
	copied := make([]float32, len(vector))
	copy(copied, vector)
	return item{vector: copied, norm: n, updatedAt: updatedAt}, true
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// CosineSimilarity 兩向量的 cosine；長度不同或零向量回傳 0
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}
