//
// Package oaih implements a client for metadata harvesting. The Open
// Archives Initiative Protocol for Metadata Harvesting (OAI-PMH) is a low-
// barrier mechanism for repository interoperability.
//
// The client covers all six protocol verbs, drives flow control behind lazy
// iterators and maps protocol error conditions onto Go errors, which can be
// inspected with errors.Is and errors.As.
//
//	client := oaih.NewClient("http://export.arxiv.org/oai2")
//	it := client.ListRecords(oaih.Selection{Prefix: "oai_dc"})
//	for it.Next() {
//		fmt.Println(it.Record().Header.Identifier)
//	}
//	if err := it.Err(); err != nil {
//		log.Fatal(err)
//	}
//
// The package comes with command line tools, called `oaih`, `oaih-id` and
// `oaih-sync`.
//
// Basic usage:
//
//	$ oaih http://digitalcommons.unmc.edu/do/oai/ > metadata.xml
package oaih
