// Package main provides a performance benchmarking tool for the febb CLI.
// It measures `febb process` across a set of jars, once with the invalidation
// record disabled so every run rewrites, and once with the file record so the
// first run is cold and the rest are skipped. Each record-less run starts from
// a pristine copy of the jar. Results are written as CSV.
//
// Prerequisites:
// - febb binary installed and available in PATH
// - A directory of built jars and a manifest naming some of their classes
//
// Usage: go run benchmark/main.go [jar-dir] [manifest]
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-record average, cold run and average of warm runs).
type BenchmarkResult struct {
	Archive      string
	NoRecordTime string
	ColdTime     string
	WarmTime     string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	JarDir       string
	Manifest     string
	Timeout      time.Duration
	NoRecordRuns int
	RecordRuns   int
}

func main() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: %s [jar-dir] [manifest]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		JarDir:       os.Args[1],
		Manifest:     os.Args[2],
		Timeout:      2 * time.Minute,
		NoRecordRuns: 3,
		RecordRuns:   4,
	}

	jars, err := checkPrerequisites(config)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, jars)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the febb binary, the manifest and some jars exist
func checkPrerequisites(config BenchmarkConfig) ([]string, error) {
	if _, err := exec.LookPath("febb"); err != nil {
		return nil, fmt.Errorf("febb binary not found in PATH")
	}
	if _, err := os.Stat(config.Manifest); err != nil {
		return nil, fmt.Errorf("manifest not found at %s", config.Manifest)
	}
	jars, err := filepath.Glob(filepath.Join(config.JarDir, "*.jar"))
	if err != nil {
		return nil, err
	}
	if len(jars) == 0 {
		return nil, fmt.Errorf("no jars found in %s", config.JarDir)
	}
	return jars, nil
}

// runBenchmarks executes the benchmark suite for every jar
func runBenchmarks(config BenchmarkConfig, jars []string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d jars, %v timeout, no-record: %d runs, record: %d runs\n",
		len(jars), config.Timeout, config.NoRecordRuns, config.RecordRuns)

	for _, jar := range jars {
		fmt.Printf("Benchmarking %s\n", filepath.Base(jar))
		results = append(results, runBenchmarkSuite(config, jar))
	}

	return results
}

// runBenchmarkSuite runs both no-record and record benchmarks for a jar
func runBenchmarkSuite(config BenchmarkConfig, jar string) BenchmarkResult {
	runPhase := func(recordBackend string, numRuns int, fresh bool, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, jar, recordBackend, numRuns, fresh)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: every run rewrites a fresh copy
	_, noRecordAvg := runPhase("none", config.NoRecordRuns, true, "No-record")

	// Phase 2: the first run rewrites, the rest are skipped by the record
	coldTime, warmAvg := runPhase("file", config.RecordRuns, false, "Record")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-record average: %s, Cold time: %s, Warm average: %s\n", noRecordAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Archive:      filepath.Base(jar),
		NoRecordTime: noRecordAvg,
		ColdTime:     coldTimeStr,
		WarmTime:     warmAvg,
	}
}

// runBenchmark executes febb process multiple times and returns cold time and warm times.
// Every phase works on its own copy of the jar so the source is never modified.
func runBenchmark(config BenchmarkConfig, jar, recordBackend string, numRuns int, fresh bool) (coldTime float64, warmTimes []float64) {
	workDir, err := os.MkdirTemp("", "febb-bench-*")
	if err != nil {
		fmt.Printf("Warning: failed to create work dir: %v\n", err)
		return 0, nil
	}
	defer func() { _ = os.RemoveAll(workDir) }()
	target := filepath.Join(workDir, filepath.Base(jar))

	var times []float64
	for run := 1; run <= numRuns; run++ {
		if run == 1 || fresh {
			if err := copyFile(jar, target); err != nil {
				fmt.Printf("Warning: failed to copy %s: %v\n", jar, err)
				return 0, nil
			}
		}

		args := []string{"process", target, "--manifest", config.Manifest, "--record-backend", recordBackend, "--color", "no"}
		start := time.Now()
		cmd := exec.Command("febb", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "rewrote") || strings.Contains(outputStr, "manifest unchanged")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("febb_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"archive", "no_record_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Archive, result.NoRecordTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-24s: No-record: %s, Cold: %s, Warm: %s\n", result.Archive, result.NoRecordTime, result.ColdTime, result.WarmTime)
	}
}
