package main

import (
	"bufio"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/miku/oaih"
)

// job is one endpoint to mirror into a single file.
type job struct {
	URL    string `toml:"url"`
	Prefix string `toml:"prefix"`
	Set    string `toml:"set"`
	From   string `toml:"from"`
	Until  string `toml:"until"`
}

// config mirrors the TOML configuration file. Zero values fall back to the
// corresponding flags.
//
//	dir = "mirror"
//	workers = 4
//	compress = true
//
//	[[endpoint]]
//	url = "https://example.com/oai"
//	set = "physics"
//	from = "2020-01-01"
type config struct {
	Dir       string `toml:"dir"`
	Workers   int    `toml:"workers"`
	Compress  bool   `toml:"compress"`
	Prefix    string `toml:"prefix"`
	Endpoints []job  `toml:"endpoint"`
}

func worker(queue chan job, cfg config, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range queue {
		if err := mirror(j, cfg); err != nil {
			log.Printf("failed %s: %v", j.URL, err)
			continue
		}
		log.Printf("done: %s", j.URL)
	}
}

// mirror harvests one endpoint. The output file appears only after the
// harvest went through, a failed harvest leaves a previous sync untouched.
func mirror(j job, cfg config) error {
	client := oaih.NewClient(j.URL)
	sel := oaih.Selection{Prefix: j.Prefix, Set: j.Set}
	if j.From != "" {
		sel.From = oaih.Verbatim(j.From)
	}
	if j.Until != "" {
		sel.Until = oaih.Verbatim(j.Until)
	}
	file, err := oaih.CreateAtomic(outputPath(cfg.Dir, j, cfg.Compress), cfg.Compress)
	if err != nil {
		return err
	}
	it := client.ListRecords(sel)
	for it.Next() {
		if _, err := fmt.Fprintf(file, "<record>%s</record>\n", it.Record().Raw); err != nil {
			file.Abort()
			return err
		}
	}
	if err := it.Err(); err != nil && !errors.Is(err, oaih.ErrNoRecordsMatch) {
		file.Abort()
		return err
	}
	return file.Close()
}

// outputPath derives a stable filename from endpoint host, full URL and set.
func outputPath(dir string, j job, compress bool) string {
	host := "unknown"
	if u, err := url.Parse(j.URL); err == nil && u.Host != "" {
		host = u.Host
	}
	name := fmt.Sprintf("%s-%s.xml", host, fingerprint(j.URL, j.Set))
	if compress {
		name += ".gz"
	}
	return filepath.Join(dir, name)
}

// fingerprint returns an encoded version of the full endpoint and the set.
func fingerprint(endpoint, set string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf("%s#%s", endpoint, set)))
}

// readEndpoints reads one endpoint URL per line from a file or stdin.
func readEndpoints() (endpoints []string) {
	var reader io.Reader = os.Stdin
	if flag.NArg() > 0 {
		file, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer file.Close()
		reader = file
	}
	rdr := bufio.NewReader(reader)
	for {
		line, err := rdr.ReadString('\n')
		if err != nil && err != io.EOF {
			log.Fatal(err)
		}
		if s := strings.TrimSpace(line); s != "" {
			endpoints = append(endpoints, s)
		}
		if err == io.EOF {
			break
		}
	}
	return endpoints
}

func main() {
	configFile := flag.String("c", "", "TOML configuration with one endpoint block per repository")
	dir := flag.String("d", ".", "output directory")
	workers := flag.Int("w", 8, "requests in parallel")
	compress := flag.Bool("z", false, "gzip output files")
	prefix := flag.String("prefix", oaih.DefaultFormat, "OAI metadataPrefix, if not set per endpoint")
	verbose := flag.Bool("verbose", false, "be verbose")
	showVersion := flag.Bool("v", false, "prints current program version")

	flag.Parse()

	if *showVersion {
		fmt.Println(oaih.Version)
		os.Exit(0)
	}

	oaih.Verbose = *verbose

	var cfg config
	if *configFile != "" {
		if _, err := toml.DecodeFile(*configFile, &cfg); err != nil {
			log.Fatal(err)
		}
	} else {
		for _, endpoint := range readEndpoints() {
			cfg.Endpoints = append(cfg.Endpoints, job{URL: endpoint})
		}
	}
	if cfg.Dir == "" {
		cfg.Dir = *dir
	}
	if cfg.Workers == 0 {
		cfg.Workers = *workers
	}
	if cfg.Prefix == "" {
		cfg.Prefix = *prefix
	}
	if *compress {
		cfg.Compress = true
	}

	queue := make(chan job)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go worker(queue, cfg, &wg)
	}

	for _, j := range cfg.Endpoints {
		if j.URL == "" {
			continue
		}
		if j.Prefix == "" {
			j.Prefix = cfg.Prefix
		}
		queue <- j
	}

	close(queue)
	wg.Wait()
}
