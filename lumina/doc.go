// Package lumina is a client for Lumina-style REST backends: APIs that
// expose a uniform, tenant-scoped CRUD convention per model
// (/<tenant>/<model>, /<tenant>/<model>/<id>, trashed/restore/force-delete
// variants, audit trails, and atomic multi-operation batches).
//
// Getting a client
//
//	cli, err := lumina.New(lumina.Config{BaseURL: "https://api.example.com"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	posts, err := cli.Model("posts").List(ctx, "acme", lumina.QueryOptions{
//		Filters: []lumina.Filter{{Field: "status", Value: "published"}},
//		Sort:    "-created_at",
//		PerPage: 20,
//	})
//
// Every read accepts QueryOptions describing filters, relationship includes,
// sorting, field projection, search, and pagination. Options are a pure
// description: the same options always render the same URL, and pagination
// metadata travels back exclusively in response headers.
//
// # Batches
//
// Operations returns the results of an ordered operation list submitted as
// one atomic unit. Later operations may reference earlier results with
// $N.field tokens; forward references are rejected locally before anything
// is sent:
//
//	results, err := cli.Operations(ctx, "acme", []lumina.Operation{
//		{Action: lumina.ActionCreate, Model: "blogs", Data: lumina.Record{"title": "B"}},
//		{Action: lumina.ActionCreate, Model: "posts", Data: lumina.Record{"blog_id": "$0.id", "title": "P"}},
//	})
//
// # Errors
//
// Failures surface as typed errors usable with errors.As: ConfigurationError
// for failed local preconditions, InvalidReferenceError for malformed batch
// references, TransportError for backend rejections, and TransactionError
// when a batch could not complete atomically (in which case no operation in
// the batch had any effect).
package lumina
