package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/miku/oaih"
)

// defaultNamespaces are declared on an artificial root element, so common
// payloads stay well formed XML.
var defaultNamespaces = map[string]string{
	"xsi":    "http://www.w3.org/2001/XMLSchema-instance",
	"dc":     "http://purl.org/dc/elements/1.1/",
	"oai_dc": "http://www.openarchives.org/OAI/2.0/oai_dc/",
}

func main() {
	showAbout := flag.Bool("id", false, "show repository info")
	listSets := flag.Bool("sets", false, "list sets as JSON lines")
	listFormats := flag.Bool("formats", false, "list metadata formats as JSON lines")
	listIdentifiers := flag.Bool("identifiers", false, "harvest headers only, as JSON lines")
	record := flag.String("record", "", "fetch a single record by identifier")
	set := flag.String("set", "", "OAI set")
	prefix := flag.String("prefix", oaih.DefaultFormat, "OAI metadataPrefix")
	from := flag.String("from", "", "OAI from")
	until := flag.String("until", "", "OAI until")
	granularity := flag.String("granularity", "auto", "datestamp layout: auto, day or seconds")
	chunk := flag.String("chunk", "", "split the harvest into windows: monthly or weekly")
	root := flag.String("root", "", "name of artificial root element tag to use")
	usePost := flag.Bool("post", false, "send arguments in a form body")
	maxRequests := flag.Int("max", 0, "maximum number of requests per list, zero means no limit")
	timeout := flag.Duration("timeout", 10*time.Minute, "timeout for -id")
	showVersion := flag.Bool("v", false, "prints current program version")
	verbose := flag.Bool("verbose", false, "more output")

	flag.Parse()

	if *showVersion {
		fmt.Println(oaih.Version)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		log.Fatal("endpoint URL required")
	}

	endpoint := flag.Arg(0)
	oaih.Verbose = *verbose

	if *showAbout {
		about, err := oaih.AboutEndpoint(endpoint, *timeout)
		if err != nil {
			log.Fatal(err)
		}
		b, err := json.Marshal(about)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(b))
		os.Exit(0)
	}

	client := oaih.NewClient(endpoint)
	client.UsePost = *usePost
	client.MaxRequests = *maxRequests
	client.Granularity = oaih.ParseGranularity(*granularity)

	switch {
	case *record != "":
		r, err := client.GetRecord(*record, *prefix)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("<record>%s</record>\n", r.Raw)
	case *listFormats:
		formats, err := client.ListMetadataFormats("")
		if err != nil {
			log.Fatal(err)
		}
		enc := json.NewEncoder(os.Stdout)
		for _, f := range formats {
			if err := enc.Encode(f); err != nil {
				log.Fatal(err)
			}
		}
	case *listSets:
		enc := json.NewEncoder(os.Stdout)
		it := client.ListSets()
		for it.Next() {
			if err := enc.Encode(it.Set()); err != nil {
				log.Fatal(err)
			}
		}
		if err := it.Err(); err != nil {
			log.Fatal(err)
		}
	case *listIdentifiers:
		sels, err := selections(client, *prefix, *set, *from, *until, *chunk)
		if err != nil {
			log.Fatal(err)
		}
		if err := harvestIdentifiers(client, sels); err != nil {
			log.Fatal(err)
		}
	default:
		sels, err := selections(client, *prefix, *set, *from, *until, *chunk)
		if err != nil {
			log.Fatal(err)
		}
		if err := harvestRecords(client, sels, *root); err != nil {
			log.Fatal(err)
		}
	}
}

// selections returns one selection per window, or a single one, when no
// chunking is requested. Without chunking, the given bounds pass to the
// repository verbatim.
func selections(client *oaih.Client, prefix, set, from, until, chunk string) ([]oaih.Selection, error) {
	if chunk == "" {
		sel := oaih.Selection{Prefix: prefix, Set: set}
		if from != "" {
			sel.From = oaih.Verbatim(from)
		}
		if until != "" {
			sel.Until = oaih.Verbatim(until)
		}
		return []oaih.Selection{sel}, nil
	}
	window, err := harvestWindow(client, from, until)
	if err != nil {
		return nil, err
	}
	var windows []oaih.Window
	switch chunk {
	case "monthly":
		windows, err = window.Monthly()
	case "weekly":
		windows, err = window.Weekly()
	default:
		return nil, fmt.Errorf("unsupported chunk: %s", chunk)
	}
	if err != nil {
		return nil, err
	}
	var sels []oaih.Selection
	for _, w := range windows {
		sels = append(sels, w.Selection(prefix, set))
	}
	return sels, nil
}

// harvestWindow resolves missing bounds. Without a from date, the
// repository is asked for its earliest datestamp, with a fixed fallback.
func harvestWindow(client *oaih.Client, from, until string) (oaih.Window, error) {
	var w oaih.Window
	if from == "" {
		id, err := client.Identify()
		if err != nil || id.EarliestDatestamp.Time.IsZero() {
			w.From = oaih.DefaultEarliestDate
		} else {
			w.From = id.EarliestDatestamp.Time
		}
	} else {
		d, err := oaih.ParseDatestamp(from)
		if err != nil {
			return w, err
		}
		w.From = d.Time
	}
	if until == "" {
		w.Until = time.Now()
	} else {
		d, err := oaih.ParseDatestamp(until)
		if err != nil {
			return w, err
		}
		w.Until = d.Time
	}
	return w, nil
}

func harvestRecords(client *oaih.Client, sels []oaih.Selection, rootTag string) error {
	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()
	startDocument(bw, rootTag)
	defer endDocument(bw, rootTag)
	for _, sel := range sels {
		it := client.ListRecords(sel)
		for it.Next() {
			fmt.Fprintf(bw, "<record>%s</record>\n", it.Record().Raw)
		}
		// An empty window is not an error for a harvest.
		if err := it.Err(); err != nil && !errors.Is(err, oaih.ErrNoRecordsMatch) {
			return err
		}
	}
	return nil
}

func harvestIdentifiers(client *oaih.Client, sels []oaih.Selection) error {
	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()
	enc := json.NewEncoder(bw)
	for _, sel := range sels {
		it := client.ListIdentifiers(sel)
		for it.Next() {
			if err := enc.Encode(it.Header()); err != nil {
				return err
			}
		}
		if err := it.Err(); err != nil && !errors.Is(err, oaih.ErrNoRecordsMatch) {
			return err
		}
	}
	return nil
}

func startDocument(w io.Writer, tag string) {
	if tag == "" {
		return
	}
	var nslist []string
	for k, v := range defaultNamespaces {
		nslist = append(nslist, fmt.Sprintf("xmlns:%s=%q", k, v))
	}
	sort.Strings(nslist)
	fmt.Fprintf(w, "<%s %s>", tag, strings.Join(nslist, " "))
}

func endDocument(w io.Writer, tag string) {
	if tag == "" {
		return
	}
	fmt.Fprintf(w, "</%s>", tag)
}
