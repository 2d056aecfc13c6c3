// Package anisearch embeds the anime/manga similarity search in a Go program.
//
// A client reads merged catalogue tables and precomputed synopsis embeddings from a
// local directory or an S3-compatible bucket, encodes a free-text description with a
// configured model and ranks catalogue entries by cosine similarity.
//
//	client, _ := anisearch.New(ctx,
//	    anisearch.WithLocalStore("model"),
//	    anisearch.WithDefaultDomains(),
//	    anisearch.WithOpenAIModel("sentence-transformers/all-mpnet-base-v2",
//	        "http://localhost:8080/v1", "", 768),
//	)
//	defer client.Close()
//
//	results, _ := client.Search(ctx, "anime", "sentence-transformers/all-mpnet-base-v2",
//	    "a lonely robot tends a garden after the war")
//	for _, r := range results {
//	    fmt.Println(r.Rank, r.Name, r.Similarity)
//	}
//
// Custom encoders plug in through WithModel and the Embedder interface.
package anisearch
