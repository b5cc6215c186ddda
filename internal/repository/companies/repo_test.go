package companies

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/seedscope/ycatlas/internal/db"
	"github.com/seedscope/ycatlas/internal/domain"
	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/domain/search/filters"
	"github.com/seedscope/ycatlas/internal/domain/search/request"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	sqlDB, err := db.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB)
}

func ts(year int) *time.Time {
	v := time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC)
	return &v
}

func teamSize(n int64) *int64 { return &n }

func seedCorpus(t *testing.T, repo *Repository) {
	t.Helper()
	records := []company.Company{
		{
			ID: 1, Name: "Airbyte", Slug: "airbyte", Website: "https://airbyte.com",
			OneLiner: "Open-source data integration", LongDescription: "Moves data between warehouses.",
			Batch: "W20", Stage: "Growth", Industry: "B2B",
			Industries: []string{"B2B", "Engineering"},
			Regions:    []string{"America / Canada"},
			Tags:       []string{"Data Engineering", "Open Source"},
			LaunchedAt: ts(2020), TeamSize: teamSize(200), TopCompany: true,
		},
		{
			ID: 2, Name: "Beacon Health", Slug: "beacon-health",
			OneLiner: "Care coordination for clinics", LongDescription: "Healthcare workflow tooling.",
			Batch: "S21", Stage: "Early", Industry: "Healthcare",
			Industries: []string{"Healthcare"},
			Regions:    []string{"Europe"},
			Tags:       []string{"Digital Health"},
			LaunchedAt: ts(2021), TeamSize: teamSize(12), IsHiring: true,
		},
		{
			ID: 3, Name: "Cobalt AI", Slug: "cobalt-ai", Website: "https://cobalt.example",
			OneLiner: "Agents for support teams", LongDescription: "LLM agents that resolve tickets.",
			Batch: "W21", Stage: "Early", Industry: "B2B",
			Industries: []string{"B2B"},
			Regions:    []string{"America / Canada", "Remote"},
			Tags:       []string{"AI", "Customer Support"},
			LaunchedAt: ts(2021), TeamSize: teamSize(8),
		},
		{
			ID: 4, Name: "Dunes", Slug: "dunes",
			OneLiner: "Nonprofit water access", LongDescription: "Wells for arid regions.",
			Batch: "", Stage: "Early", Industry: "Industrials",
			Nonprofit: true,
		},
	}
	if err := repo.UpsertCompanies(context.Background(), records); err != nil {
		t.Fatal(err)
	}
}

func TestList_TextMatchAndFilters(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	got, err := repo.List(ctx, "data", filters.Set{}, request.SortName, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("query %q: got %+v, want company 1", "data", ids(got))
	}

	// Case-insensitive substring across name and descriptions.
	got, err = repo.List(ctx, "AGENTS", filters.Set{}, request.SortName, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("query %q: got %v, want company 3", "AGENTS", ids(got))
	}

	// Text condition ANDs with the filter predicate.
	got, err = repo.List(ctx, "agents", filters.Set{Regions: []string{"Europe"}}, request.SortName, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want none", ids(got))
	}
}

func TestList_FilterDimensions(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		fs   filters.Set
		want []int64
	}{
		{"empty set matches all", filters.Set{}, []int64{1, 2, 3, 4}},
		{"tags OR within dimension", filters.Set{Tags: []string{"AI", "Digital Health"}}, []int64{2, 3}},
		{"industries primary or list", filters.Set{Industries: []string{"Engineering"}}, []int64{1}},
		{"industries primary field", filters.Set{Industries: []string{"Healthcare"}}, []int64{2}},
		{"stages", filters.Set{Stages: []string{"Growth"}}, []int64{1}},
		{"batches", filters.Set{Batches: []string{"W21", "S21"}}, []int64{2, 3}},
		{"years", filters.Set{Years: []int{2021}}, []int64{2, 3}},
		{"year excludes null launch", filters.Set{Years: []int{2020, 2021}}, []int64{1, 2, 3}},
		{"is_hiring flag", filters.Set{IsHiring: true}, []int64{2}},
		{"nonprofit flag", filters.Set{Nonprofit: true}, []int64{4}},
		{"top_company flag", filters.Set{TopCompany: true}, []int64{1}},
		{"AND across dimensions", filters.Set{Tags: []string{"AI"}, Years: []int{2020}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, "", tt.fs, request.SortName, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			assertIDs(t, got, tt.want)
		})
	}
}

func TestList_SQLAgreesWithMatches(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	all, err := repo.List(ctx, "", filters.Set{}, request.SortName, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	sets := []filters.Set{
		{Tags: []string{"AI"}},
		{Industries: []string{"B2B"}},
		{Regions: []string{"Remote"}},
		{Years: []int{2021}},
		{Batches: []string{"W20"}, TopCompany: true},
		{Stages: []string{"Early"}, IsHiring: true},
	}
	for _, fs := range sets {
		fromSQL, err := repo.List(ctx, "", fs, request.SortName, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		var fromMemory []int64
		for i := range all {
			if fs.Matches(&all[i]) {
				fromMemory = append(fromMemory, all[i].ID)
			}
		}
		sqlIDs := ids(fromSQL)
		if len(sqlIDs) != len(fromMemory) {
			t.Fatalf("filter %+v: SQL %v vs Matches %v", fs, sqlIDs, fromMemory)
		}
		seen := make(map[int64]bool, len(sqlIDs))
		for _, id := range sqlIDs {
			seen[id] = true
		}
		for _, id := range fromMemory {
			if !seen[id] {
				t.Fatalf("filter %+v: SQL %v vs Matches %v", fs, sqlIDs, fromMemory)
			}
		}
	}
}

func TestList_SortModes(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		sort  request.Sort
		want  []int64
	}{
		{"name ascending", "", request.SortName, []int64{1, 2, 3, 4}},
		// 2021 launches before 2020; null launch date last.
		{"newest with nulls last", "", request.SortNewest, []int64{2, 3, 1, 4}},
		// Largest team first, null team size last.
		{"team size with nulls last", "", request.SortTeamSize, []int64{1, 2, 3, 4}},
		// Relevance without query: top companies first, then name.
		{"relevance empty query", "", request.SortRelevance, []int64{1, 2, 3, 4}},
		// Relevance with query: top company, then team size.
		{"relevance with query", "e", request.SortRelevance, []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.query, filters.Set{}, tt.sort, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			assertIDs(t, got, tt.want)
		})
	}
}

func TestList_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	page, err := repo.List(ctx, "", filters.Set{}, request.SortName, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, page, []int64{3, 4})

	total, err := repo.Count(ctx, "", filters.Set{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 {
		t.Errorf("Count = %d, want 4 regardless of pagination", total)
	}
}

func TestCount_MatchesFilteredList(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	fs := filters.Set{Years: []int{2021}}
	n, err := repo.Count(ctx, "", fs)
	if err != nil {
		t.Fatal(err)
	}
	list, err := repo.List(ctx, "", fs, request.SortName, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(list) {
		t.Errorf("Count = %d, List returned %d", n, len(list))
	}
}

func TestByID(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	c, err := repo.ByID(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Cobalt AI" || len(c.Tags) != 2 {
		t.Errorf("got %+v", c)
	}
	if c.LaunchedAt == nil || c.LaunchedAt.Year() != 2021 {
		t.Errorf("LaunchedAt = %v, want 2021", c.LaunchedAt)
	}

	_, err = repo.ByID(ctx, 999)
	if !errors.Is(err, domain.ErrCompanyNotFound) {
		t.Errorf("err = %v, want ErrCompanyNotFound", err)
	}
}

func TestListByIDs(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	got, err := repo.ListByIDs(ctx, []int64{3, 1, 999})
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, []int64{1, 3})

	got, err = repo.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("empty id list: got %v", ids(got))
	}
}

func TestDetail(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	if err := repo.UpsertEmbedding(ctx, 1, []float64{0.1, 0.2, 0.3}, "hash-1", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertPage(ctx, 1, "https://airbyte.com", "# Airbyte\nDocs."); err != nil {
		t.Fatal(err)
	}

	d, err := repo.Detail(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !d.HasEmbedding() || len(d.Vector) != 3 {
		t.Errorf("Vector = %v, want 3 dims", d.Vector)
	}
	if d.Markdown == "" {
		t.Error("Markdown missing")
	}

	// Company without embedding or page still resolves, with empty extras.
	d, err = repo.Detail(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if d.HasEmbedding() || d.Markdown != "" {
		t.Errorf("company 2: Vector=%v Markdown=%q, want empty", d.Vector, d.Markdown)
	}

	_, err = repo.Detail(ctx, 999)
	if !errors.Is(err, domain.ErrCompanyNotFound) {
		t.Errorf("err = %v, want ErrCompanyNotFound", err)
	}
}

func TestListEmbedded(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	now := time.Now()
	if err := repo.UpsertEmbedding(ctx, 1, []float64{1, 0}, "h1", now); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertEmbedding(ctx, 3, []float64{0, 1}, "h3", now); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListEmbedded(ctx, filters.Set{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Company.ID != 1 || got[1].Company.ID != 3 {
		t.Fatalf("got %d rows, want companies 1 and 3 in id order", len(got))
	}

	// Filters narrow the embedded set the same way they narrow listings.
	got, err = repo.ListEmbedded(ctx, filters.Set{Tags: []string{"AI"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Company.ID != 3 {
		t.Fatalf("filtered: got %d rows, want company 3", len(got))
	}
}

func TestListEmbedded_SkipsMalformedVector(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	if err := repo.UpsertEmbedding(ctx, 1, []float64{1, 0}, "h1", time.Now()); err != nil {
		t.Fatal(err)
	}
	// Corrupt a second row directly; the read side must skip it silently.
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO embeddings (company_id, vector, source_hash, updated_at) VALUES (2, 'not json', 'h2', 1)`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListEmbedded(ctx, filters.Set{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Company.ID != 1 {
		t.Fatalf("got %d rows, want only company 1", len(got))
	}
}

func TestFacets(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	f, err := repo.Facets(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if got := facetCount(f.Industries, "B2B"); got != 2 {
		t.Errorf("industries[B2B] = %d, want 2", got)
	}
	if got := facetCount(f.Regions, "America / Canada"); got != 2 {
		t.Errorf("regions[America / Canada] = %d, want 2", got)
	}
	if got := facetCount(f.Stages, "Early"); got != 3 {
		t.Errorf("stages[Early] = %d, want 3", got)
	}
	// Empty batch labels are not a facet value.
	for _, fc := range f.Batches {
		if fc.Value == "" {
			t.Error("batches facet contains an empty value")
		}
	}
	// Count-descending order within a facet.
	for i := 1; i < len(f.Industries); i++ {
		if f.Industries[i].Count > f.Industries[i-1].Count {
			t.Errorf("industries not count-sorted: %+v", f.Industries)
		}
	}
	// Years: 2021 twice, 2020 once; the null launch date does not count.
	if len(f.Years) != 2 {
		t.Fatalf("years = %+v, want two entries", f.Years)
	}
	if f.Years[0].Value != 2021 || f.Years[0].Count != 2 {
		t.Errorf("years[0] = %+v, want {2021 2}", f.Years[0])
	}
}

func TestEmbeddingSignature(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	sig0, err := repo.EmbeddingSignature(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sig0 != "0:0" {
		t.Errorf("empty signature = %q, want 0:0", sig0)
	}

	if err := repo.UpsertEmbedding(ctx, 1, []float64{1}, "h", time.Unix(100, 0)); err != nil {
		t.Fatal(err)
	}
	sig1, err := repo.EmbeddingSignature(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sig1 == sig0 {
		t.Error("signature unchanged after insert")
	}

	// Updating the same row with a later timestamp changes the signature
	// even though the count stays the same.
	if err := repo.UpsertEmbedding(ctx, 1, []float64{2}, "h2", time.Unix(200, 0)); err != nil {
		t.Fatal(err)
	}
	sig2, err := repo.EmbeddingSignature(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sig2 == sig1 {
		t.Error("signature unchanged after update")
	}
}

func TestUpsertCompanies_Overwrites(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	update := []company.Company{{
		ID: 1, Name: "Airbyte", Slug: "airbyte",
		OneLiner: "Data movement platform",
		Batch:    "W20", Stage: "Growth", Industry: "B2B",
		Tags: []string{"Data Engineering"},
	}}
	if err := repo.UpsertCompanies(ctx, update); err != nil {
		t.Fatal(err)
	}

	c, err := repo.ByID(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c.OneLiner != "Data movement platform" {
		t.Errorf("OneLiner = %q, not overwritten", c.OneLiner)
	}

	total, err := repo.Count(ctx, "", filters.Set{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 {
		t.Errorf("Count = %d after upsert, want 4", total)
	}
}

func TestListEmbedCandidates(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	if err := repo.UpsertPage(ctx, 1, "https://airbyte.com", "docs"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertEmbedding(ctx, 2, []float64{1}, "stored-hash", time.Now()); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListEmbedCandidates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d candidates, want 4", len(got))
	}
	if got[0].Markdown != "docs" || got[0].StoredHash != "" {
		t.Errorf("candidate 1 = %+v", got[0])
	}
	if got[1].StoredHash != "stored-hash" {
		t.Errorf("candidate 2 hash = %q", got[1].StoredHash)
	}
}

func TestListScrapeCandidates(t *testing.T) {
	repo := newTestRepo(t)
	seedCorpus(t, repo)
	ctx := context.Background()

	// Companies 1 and 3 have websites; give 1 a freshly stored page.
	if err := repo.UpsertPage(ctx, 1, "https://airbyte.com", "docs"); err != nil {
		t.Fatal(err)
	}

	// A day-old cutoff keeps company 1's fresh page out of the result.
	got, err := repo.ListScrapeCandidates(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, []int64{3})

	// A future cutoff marks every stored page stale.
	got, err = repo.ListScrapeCandidates(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, []int64{1, 3})
}

// --- helpers ---

func ids(list []company.Company) []int64 {
	out := make([]int64, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

func assertIDs(t *testing.T, got []company.Company, want []int64) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("ids = %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("ids = %v, want %v", gotIDs, want)
		}
	}
}

func facetCount(list []company.FacetCount, value string) int {
	for _, fc := range list {
		if fc.Value == value {
			return fc.Count
		}
	}
	return 0
}
