package paperflix

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/benchmark/parse"
)

// ReadCSV reads a header row followed by data rows. Blank lines and lines
// starting with '#' are ignored, rows the csv reader rejects are skipped.
func ReadCSV(reader io.Reader) (Table, error) {
	r := csv.NewReader(reader)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return Table{}, fmt.Errorf("read header: empty input")
		}

		return Table{}, fmt.Errorf("read header: %w", err)
	}

	table := Table{Columns: trim(header)}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}

			return table, err
		}

		if len(record) != len(table.Columns) {
			continue
		}

		table.Rows = append(table.Rows, trim(record))
	}

	return table, nil
}

func trim(record []string) []string {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	return record
}

// ReadBenchmarks turns `go test -bench` output into a table. Sub-benchmark
// segments of the form key=value become their own columns, so
// BenchmarkInfer/n=20/k=1-12 yields n=20 and k=1.
func ReadBenchmarks(reader io.Reader) (Table, error) {
	var (
		table = Table{Columns: []string{"name", "iterations", "ns_per_op", "ms_per_op", "bytes_per_op", "allocs_per_op"}}
		rows  []map[string]string
	)

	scan := bufio.NewScanner(reader)

	for scan.Scan() {
		line := scan.Text()

		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}

		b, err := parse.ParseLine(line)
		if err != nil {
			continue
		}

		name := b.Name

		if i := strings.LastIndex(name, "-"); i > 0 {
			if _, err := strconv.Atoi(name[i+1:]); err == nil {
				name = name[:i]
			}
		}

		row := map[string]string{
			"name":          name,
			"iterations":    strconv.Itoa(b.N),
			"ns_per_op":     strconv.FormatFloat(b.NsPerOp, 'g', -1, 64),
			"ms_per_op":     strconv.FormatFloat(b.NsPerOp/1e6, 'g', -1, 64),
			"bytes_per_op":  strconv.FormatUint(b.AllocedBytesPerOp, 10),
			"allocs_per_op": strconv.FormatUint(b.AllocsPerOp, 10),
		}

		for _, part := range strings.Split(name, "/")[1:] {
			key, value, ok := strings.Cut(part, "=")
			if !ok {
				continue
			}

			if table.Column(key) < 0 {
				table.Columns = append(table.Columns, key)
			}

			row[key] = value
		}

		rows = append(rows, row)
	}

	if err := scan.Err(); err != nil {
		return table, err
	}

	for _, row := range rows {
		record := make([]string, len(table.Columns))

		for i, c := range table.Columns {
			record[i] = row[c]
		}

		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

var (
	precisionLine = regexp.MustCompile(`(P@\w+)=((?:\s+\d+s:\s+\d+(?:\.\d+)?,?)+)`)
	precisionPair = regexp.MustCompile(`(\d+)s:\s+(\d+(?:\.\d+)?)`)
)

// ReadPrecision reads listings such as
//
//	P@1= 90000s: 0.520, 80000s: 0.520, 70000s: 0.519
//
// into rows of k, budget and precision.
func ReadPrecision(reader io.Reader) (Table, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return Table{}, err
	}

	table := Table{Columns: []string{"k", "budget", "precision"}}

	for _, match := range precisionLine.FindAllStringSubmatch(string(data), -1) {
		for _, pair := range precisionPair.FindAllStringSubmatch(match[2], -1) {
			table.Rows = append(table.Rows, []string{match[1], pair[1], pair[2]})
		}
	}

	return table, nil
}

var ratioLine = regexp.MustCompile(`\[\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\)\s*,\s*([^)]+)\)\s*:[^:]*:\s*(\d+)\s*/\s*(\d+)`)

// ReadRatios reads bucketed hit ratios such as
//
//	(|σ|∈[0, 10), Δ=1): Top-1/total: 141 / 152 ≈ 0.9276315789473685
//
// The ratio is recomputed from the counts, buckets with no samples are dropped.
func ReadRatios(reader io.Reader) (Table, error) {
	table := Table{Columns: []string{"lo", "hi", "group", "hits", "total", "ratio"}}

	scan := bufio.NewScanner(reader)

	for scan.Scan() {
		match := ratioLine.FindStringSubmatch(scan.Text())
		if match == nil {
			continue
		}

		hits, err := strconv.ParseFloat(match[4], 64)
		if err != nil {
			continue
		}

		total, err := strconv.ParseFloat(match[5], 64)
		if err != nil || total == 0 {
			continue
		}

		table.Rows = append(table.Rows, []string{
			match[1],
			match[2],
			strings.TrimSpace(match[3]),
			match[4],
			match[5],
			strconv.FormatFloat(hits/total, 'g', -1, 64),
		})
	}

	return table, scan.Err()
}
