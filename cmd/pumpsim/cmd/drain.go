package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timzifer/halcore/cyclic"
	"github.com/timzifer/halcore/pump"
	"github.com/timzifer/halcore/stream/streamtest"
)

var (
	drainElements int
	drainRetries  int
	drainWindows  []int
	drainRest     int
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Replay one drain run against a scripted sink",
	Long: `drain fills a buffer with numbered elements and drains it once into a sink
that accepts a fixed number of elements per attempt. Use it to see how the
retry budget and a slow device interact.

Example:
  pumpsim drain --elements 4 --retries 1 --windows 2,1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := replayDrain(drainSetup{
			elementSize: cfg.Buffer.ElementSize,
			capacity:    cfg.Buffer.Capacity,
			elements:    drainElements,
			retries:     drainRetries,
			windows:     drainWindows,
			rest:        drainRest,
		}, logger)
		if err != nil {
			return err
		}
		if outputFormat == "yaml" {
			return outputYAML(rep)
		}
		printDrainReport(os.Stdout, rep)
		return nil
	},
}

func init() {
	drainCmd.Flags().IntVarP(&drainElements, "elements", "n", 4, "Elements to buffer before draining")
	drainCmd.Flags().IntVarP(&drainRetries, "retries", "r", pump.DefaultRetries, "Retry budget of the run")
	drainCmd.Flags().IntSliceVarP(&drainWindows, "windows", "w", nil, "Elements the sink accepts in each attempt")
	drainCmd.Flags().IntVar(&drainRest, "rest", streamtest.Unlimited, "Elements accepted per attempt after --windows (-1 is unlimited)")
	rootCmd.AddCommand(drainCmd)
}

type drainSetup struct {
	elementSize int
	capacity    int
	elements    int
	retries     int
	windows     []int
	rest        int
}

type drainReport struct {
	Outcome   string `yaml:"outcome"`
	Attempts  int    `yaml:"attempts"`
	Moved     int    `yaml:"moved"`
	Remaining int    `yaml:"remaining"`
	Delivered []int  `yaml:"delivered"`
	Refusals  int    `yaml:"refusals"`
}

func replayDrain(s drainSetup, logger *zap.Logger) (*drainReport, error) {
	if s.elements < 0 || s.elements > s.capacity {
		return nil, fmt.Errorf("elements must be between 0 and the buffer capacity %d", s.capacity)
	}
	if s.retries < 0 {
		return nil, fmt.Errorf("retries must not be negative")
	}

	buf := cyclic.New(s.elementSize, s.capacity)
	elem := make([]byte, s.elementSize)
	for i := 0; i < s.elements; i++ {
		for j := range elem {
			elem[j] = byte(i)
		}
		buf.Push(elem)
	}

	quotas := make([]int, len(s.windows))
	for i, w := range s.windows {
		quotas[i] = windowBytes(w, s.elementSize)
	}
	sink := streamtest.NewScriptedSink(windowBytes(s.rest, s.elementSize), quotas...)

	res := pump.Drain(buf, sink, s.retries)
	logger.Debug("drain replayed",
		zap.Stringer("outcome", res.Outcome),
		zap.Int("attempts", res.Attempts),
		zap.Int("remaining", res.Remaining),
	)

	rep := &drainReport{
		Outcome:   res.Outcome.String(),
		Attempts:  res.Attempts,
		Moved:     res.Moved,
		Remaining: res.Remaining,
		Delivered: []int{},
		Refusals:  sink.Refusals(),
	}
	data := sink.Data()
	for off := 0; off+s.elementSize <= len(data); off += s.elementSize {
		rep.Delivered = append(rep.Delivered, int(data[off]))
	}
	return rep, nil
}

// windowBytes converts an element quota into the byte quota of the sink.
func windowBytes(elements, elementSize int) int {
	if elements == streamtest.Unlimited {
		return streamtest.Unlimited
	}
	return elements * elementSize
}

func printDrainReport(w io.Writer, rep *drainReport) {
	fmt.Fprintf(w, "outcome:   %s\n", rep.Outcome)
	fmt.Fprintf(w, "attempts:  %d\n", rep.Attempts)
	fmt.Fprintf(w, "moved:     %d\n", rep.Moved)
	fmt.Fprintf(w, "remaining: %d\n", rep.Remaining)
	fmt.Fprintf(w, "delivered: %v\n", rep.Delivered)
	fmt.Fprintf(w, "refusals:  %d\n", rep.Refusals)
}
