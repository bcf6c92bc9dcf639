// Command benchmark generates a synthetic station;temperature
// measurements file and times the pipeline against it, reporting
// throughput. This is the project's test-fixture generator plus
// timing harness named out of scope by the spec ("measurement-file
// generation... supplied externally") — it exists only to exercise the
// pipeline end-to-end with a realistic file size, the same role the
// teacher's own cmd/benchmark/main.go plays for its indexer (generate a
// synthetic CSV, then run the real engine against it and report MB/s),
// adapted here to the station-aggregation grammar instead of CsvQuery's
// comma-separated rows.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/onebrc/onebrc/internal/pipeline"
)

// stationPool is a small, fixed set of realistic station names so the
// generated file exercises all three aggtable shards (short names,
// medium names, and one long name past 32 bytes).
var stationPool = []string{
	"Hamburg", "Bulawayo", "Palembang", "St. John's", "Cracow",
	"Bridgetown", "Istanbul", "Roseau", "Conakry", "Tegucigalpa",
	"Ouagadougou", "Chittagong", "Antananarivo", "Fianarantsoa",
	"Yellowknife", "Wellington", "Novosibirsk", "San Cristobal de las Casas",
	"Llanfairpwllgwyngyllgogerychwyrndrobwllllantysiliogogogoch",
}

func main() {
	var sizeMB = flag.Int("size-mb", 500, "approximate size of the generated measurements file, in MiB")
	var workers = flag.Int("workers", 0, "override the pipeline's worker-count policy (0 = default)")
	flag.Parse()

	tmpDir, err := os.MkdirTemp("", "onebrc_bench")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "measurements.txt")
	fmt.Printf("Generating ~%d MiB of measurements at %s...\n", *sizeMB, path)

	rows, bytesWritten, err := generate(path, int64(*sizeMB)*1024*1024)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Generated %d rows (%.2f MiB)\n", rows, float64(bytesWritten)/1024/1024)

	fmt.Println("Running pipeline...")
	start := time.Now()
	res, err := pipeline.Run(context.Background(), pipeline.Config{Path: path, Workers: *workers})
	if err != nil {
		panic(err)
	}
	elapsed := time.Since(start)

	mbPerSec := float64(bytesWritten) / 1024 / 1024 / elapsed.Seconds()
	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Workers:    %d (%s)\n", res.NumWorkers, res.Strategy)
	fmt.Printf("Stations:   %d\n", len(res.Global))
	fmt.Printf("Throughput: %.2f MiB/s\n", mbPerSec)
	fmt.Printf("Time:       %v\n", elapsed)
	fmt.Printf("--------------------------------------------------\n")
}

// generate writes station;temperature records until limit bytes have
// been written, always ending on a complete record.
func generate(path string, limit int64) (rows int, bytesWritten int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 256*1024)
	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, 0, 64)

	for bytesWritten < limit {
		rows++
		station := stationPool[rng.Intn(len(stationPool))]
		tenths := rng.Intn(1999) - 999 // [-99.9, 99.9] in tenths

		buf = buf[:0]
		buf = append(buf, station...)
		buf = append(buf, ';')
		buf = appendTenths(buf, int32(tenths))
		buf = append(buf, '\n')

		n, werr := w.Write(buf)
		bytesWritten += int64(n)
		if werr != nil {
			return rows, bytesWritten, werr
		}
	}
	if err := w.Flush(); err != nil {
		return rows, bytesWritten, err
	}
	return rows, bytesWritten, nil
}

func appendTenths(buf []byte, tenths int32) []byte {
	if tenths < 0 {
		buf = append(buf, '-')
		tenths = -tenths
	}
	return fmt.Appendf(buf, "%d.%d", tenths/10, tenths%10)
}
