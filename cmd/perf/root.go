package perf

import (
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/dMsg/cmd/util"
	"github.com/ValentinKolb/dMsg/lib/common"
	"github.com/ValentinKolb/dMsg/lib/message"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	clog = logger.GetLogger("cmd")

	// PerfCmd runs the codec and pool benchmarks
	PerfCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for the message codec",
		Long: `Run encode, decode and buffer pool benchmarks against a sample message type.
The configuration can be set via command line flags or environment variables. The format of the environment variables is DMSG_<flag> (e.g. DMSG_THREADS=4)`,
		PreRunE: processPerfConfig,
		RunE:    run,
	}
	perfNumThreads  = 10
	perfPayloadSize = 1024
	perfSkip        = make([]string, 0)
)

func init() {
	util.SetupCodecFlags(PerfCmd)

	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. encode,pool)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "payload-size"
	PerfCmd.Flags().Int(key, 1024, util.WrapString("Size of the byte sequence payload of the sample message (in bytes)"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	PerfCmd.Flags().Bool(key, false, util.WrapString("Print the buffer pool metrics in Prometheus text format after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	perfNumThreads = viper.GetInt("threads")
	perfPayloadSize = viper.GetInt("payload-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfNumThreads <= 0 {
		return fmt.Errorf("threads must be positive, got %d", perfNumThreads)
	}
	if perfPayloadSize < 0 {
		return fmt.Errorf("payload size must not be negative, got %d", perfPayloadSize)
	}
	return nil
}

// benchmark is one named benchmark of the perf run
type benchmark struct {
	name string
	fn   func(b *testing.B)
}

func run(cmd *cobra.Command, _ []string) error {
	config := util.GetCodecConfig()
	codec, err := util.NewCodec(config)
	if err != nil {
		return err
	}

	header, sample := util.SampleSchemas()
	msg, err := util.SampleMessage(header, sample, perfPayloadSize)
	if err != nil {
		return err
	}
	encoded := codec.Encode(msg)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Performance testing tool for the message codec")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, config.String())
	fmt.Fprintf(out, "Threads: %d\n", perfNumThreads)
	fmt.Fprintf(out, "Encoded message size: %d bytes\n", len(encoded))
	fmt.Fprintln(out)

	clog.Infof("starting benchmarks")

	benchmarks := []benchmark{
		{"encode", func(b *testing.B) {
			b.RunParallel(func(pb *testing.PB) {
				// messages are single owner, every goroutine gets its own
				local, _ := util.SampleMessage(header, sample, perfPayloadSize)
				for pb.Next() {
					_ = codec.Encode(local)
				}
			})
		}},
		{"decode", func(b *testing.B) {
			b.RunParallel(func(pb *testing.PB) {
				local := message.NewFields(sample)
				for pb.Next() {
					if err := codec.Decode(encoded, local); err != nil {
						clog.Errorf("(decode) - error decoding message: %v", err)
					}
				}
			})
		}},
		{"round-trip", func(b *testing.B) {
			b.RunParallel(func(pb *testing.PB) {
				local, _ := util.SampleMessage(header, sample, perfPayloadSize)
				decoded := message.NewFields(sample)
				for pb.Next() {
					if err := codec.Decode(codec.Encode(local), decoded); err != nil {
						clog.Errorf("(round-trip) - error decoding message: %v", err)
					}
				}
			})
		}},
		{"pool", func(b *testing.B) {
			pool := codec.Pool()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					buf := pool.Acquire()
					buf.WriteBytes(encoded)
					pool.Release(buf)
				}
			})
		}},
	}

	results := make(map[string]testing.BenchmarkResult)
	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			results[bm.name] = testing.BenchmarkResult{}
			printResult(cmd, bm.name, results[bm.name])
			continue
		}

		result := testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)
			b.SetBytes(int64(len(encoded)))
			b.ResetTimer()
			bm.fn(b)
		})
		results[bm.name] = result
		printResult(cmd, bm.name, result)
	}

	if viper.GetBool("metrics") {
		fmt.Fprintln(out)
		codec.Pool().Metrics().WritePrometheus(out)

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Released buffer capacities:")
		boundaries, percentages := codec.Pool().CapacityHistogram().Distribution()
		for i, pct := range percentages {
			label := fmt.Sprintf("> %d", boundaries[len(boundaries)-1])
			if i < len(boundaries) {
				label = fmt.Sprintf("<= %d", boundaries[i])
			}
			fmt.Fprintf(out, "  %-12s%6.2f%%\n", label, pct)
		}
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Fprintf(out, "\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, config, len(encoded)); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Fprintln(out, "Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(cmd *cobra.Command, test string, result testing.BenchmarkResult) {
	out := cmd.OutOrStdout()
	if result.N == 0 {
		fmt.Fprintf(out, "%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Fprintf(out, "%-20s%.0fns/op (%s/op)\t%.0f ops/sec\t%d allocs/op\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, result.AllocsPerOp())
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config common.CodecConfig, messageSize int) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "AllocsPerOp", "Skipped",
		"PoolReuse", "PoolInitialCapacity", "PoolMaxIdle", "PoolMaxRetainedCapacity", "CopyOnDecode",
		"Threads", "PayloadSize", "MessageSize",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, test := range names {
		result := results[test]

		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.N > 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			strconv.FormatInt(result.AllocsPerOp(), 10),
			skipped,
			strconv.FormatBool(config.Pool.Reuse),
			strconv.Itoa(config.Pool.InitialCapacity),
			strconv.Itoa(config.Pool.MaxIdle),
			strconv.Itoa(config.Pool.MaxRetainedCapacity),
			strconv.FormatBool(config.CopyOnDecode),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfPayloadSize),
			strconv.Itoa(messageSize),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
