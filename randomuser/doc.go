// Package randomuser is a client for the random user generator API.
//
// It returns every generated user as its raw JSON object so callers can
// flatten the records with the dataset package:
//
//	client, err := randomuser.New(&randomuser.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	records, err := client.Generate(ctx, 10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ds, err := dataset.FromJSON(records)
package randomuser
