package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/miku/oaih"
)

func worker(queue, out chan string, timeout time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()
	for endpoint := range queue {
		about, err := oaih.AboutEndpoint(endpoint, timeout)
		if err != nil {
			log.Printf("failed %s: %v", endpoint, err)
			continue
		}
		b, err := json.Marshal(about)
		if err != nil {
			log.Fatal(err)
		}
		out <- string(b)
		log.Printf("done: %s", endpoint)
	}
}

func writer(in chan string, done chan bool) {
	for s := range in {
		fmt.Println(s)
	}
	done <- true
}

func main() {
	workers := flag.Int("w", 8, "requests in parallel")
	timeout := flag.Duration("t", 10*time.Minute, "timeout per endpoint")
	verbose := flag.Bool("verbose", false, "be verbose")

	flag.Parse()

	oaih.Verbose = *verbose

	var reader io.Reader
	var err error

	if flag.NArg() == 0 {
		reader = os.Stdin
	} else {
		reader, err = os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
	}

	queue := make(chan string)
	out := make(chan string)
	done := make(chan bool)

	var wg sync.WaitGroup

	go writer(out, done)

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go worker(queue, out, *timeout, &wg)
	}

	rdr := bufio.NewReader(reader)
	for {
		line, err := rdr.ReadString('\n')
		if err != nil && err != io.EOF {
			log.Fatal(err)
		}
		if endpoint := strings.TrimSpace(line); endpoint != "" {
			queue <- endpoint
		}
		if err == io.EOF {
			break
		}
	}

	close(queue)
	wg.Wait()
	close(out)
	<-done
}
