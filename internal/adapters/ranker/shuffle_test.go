package ranker

import (
	"fmt"
	"sort"
	"testing"

	"content-dashboard/internal/domain"
)

func items(n int) []domain.ContentItem {
	out := make([]domain.ContentItem, n)
	for i := range out {
		out[i] = domain.ContentItem{ID: fmt.Sprintf("news-%d", i), Type: domain.ContentTypeNews, Title: "t"}
	}
	return out
}

func ids(items []domain.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestDeduplicateByID(t *testing.T) {
	in := []domain.ContentItem{{ID: "news-a", Title: "first"}, {ID: "news-a", Title: "second"}, {ID: "movie-1"}}
	res := DeduplicateByID(in)
	if len(res) != 2 {
		t.Fatalf("ожидали 2 карточки, получили %d", len(res))
	}
	if res[0].Title != "first" {
		t.Fatalf("ожидали, что останется первая карточка")
	}
}

func TestRandomKeepsAllItems(t *testing.T) {
	in := items(20)
	NewRandom().Shuffle(in)
	got := ids(in)
	sort.Strings(got)
	want := ids(items(20))
	sort.Strings(want)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("перемешивание потеряло карточку: %v", got)
		}
	}
}

func TestSeededIsReproducible(t *testing.T) {
	a, b := items(10), items(10)
	NewSeeded(42).Shuffle(a)
	NewSeeded(42).Shuffle(b)
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("ожидали одинаковый порядок при одинаковом seed")
		}
	}
}

func TestRandomIsRoughlyUniform(t *testing.T) {
	const trials = 30000
	s := NewSeeded(7)
	var counts [3]int
	for i := 0; i < trials; i++ {
		in := items(3)
		s.Shuffle(in)
		for pos, it := range in {
			if it.ID == "news-0" {
				counts[pos]++
			}
		}
	}
	for pos, c := range counts {
		share := float64(c) / trials
		if share < 0.30 || share > 0.37 {
			t.Fatalf("позиция %d получила долю %.3f, ожидали около 1/3", pos, share)
		}
	}
}

func TestIdentityAndFunc(t *testing.T) {
	in := items(4)
	Identity{}.Shuffle(in)
	if in[0].ID != "news-0" || in[3].ID != "news-3" {
		t.Fatalf("Identity не должен менять порядок")
	}
	reverse := Func(func(xs []domain.ContentItem) {
		for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
			xs[i], xs[j] = xs[j], xs[i]
		}
	})
	reverse.Shuffle(in)
	if in[0].ID != "news-3" {
		t.Fatalf("ожидали обратный порядок, получили %v", ids(in))
	}
}
