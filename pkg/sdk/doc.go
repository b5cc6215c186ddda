// Package ycatlas provides a Go client for the ycatlas HTTP API: keyword and
// semantic search over the YC company directory, batch analytics, embedding
// maps and retrieval-grounded chat.
//
//	client, _ := ycatlas.New("http://localhost:8092",
//	    ycatlas.WithAPIKey(os.Getenv("YCATLAS_API_KEY")),
//	)
//
//	page, _ := client.Search(ctx, ycatlas.SearchParams{
//	    Query: "payments infrastructure",
//	    Mode:  ycatlas.ModeSemantic,
//	    Filters: ycatlas.Filters{Batches: []string{"W21", "S21"}},
//	})
//	for _, hit := range page.Items {
//	    fmt.Println(hit.Name, hit.OneLiner)
//	}
//
// Errors returned by the service carry a machine-readable code and map onto
// sentinel errors; use errors.Is to branch on them:
//
//	_, err := client.Company(ctx, 404404)
//	if errors.Is(err, ycatlas.ErrCompanyNotFound) { ... }
package ycatlas
